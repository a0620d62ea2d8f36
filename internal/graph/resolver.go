// Copyright 2025 6flow Studio
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package graph discovers which ancestor nodes can supply data to a preview
// target, and what shape that data has, by walking edges backward.
package graph

import (
	"strconv"
	"strings"

	"github.com/6flow-studio/6flow-convergence-sub000/pkg/workflow"
)

// ResolveUpstream walks the edge list backward from the target node,
// breadth-first, and returns the discovered ancestors closest-first.
//
// Passthrough kinds (if, filter, merge) are traversed but never reported:
// they reshape or route data without declaring fields of their own, so
// their ancestors surface instead. Each node is visited at most once;
// when two paths converge on the same ancestor, the shortest-hop discovery
// wins. Dangling edges are skipped. The traversal executes nothing and
// never fails; a disconnected target yields an empty list.
func ResolveUpstream(targetID string, nodes []*workflow.Node, edges []workflow.Edge) []workflow.Ancestor {
	byID := make(map[string]*workflow.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	incoming := make(map[string][]workflow.Edge)
	for _, e := range edges {
		incoming[e.Target] = append(incoming[e.Target], e)
	}

	// Visited set is local to this call: graphs are edited between
	// previews, so nothing here may be cached across calls.
	visited := map[string]bool{targetID: true}
	queue := []string{targetID}
	var ancestors []workflow.Ancestor

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range incoming[current] {
			source, ok := byID[edge.Source]
			if !ok || visited[source.ID] {
				continue
			}
			visited[source.ID] = true
			queue = append(queue, source.ID)

			if source.Kind.IsPassthrough() {
				continue
			}

			mode := ModeOf(source.Kind)
			ancestors = append(ancestors, workflow.Ancestor{
				NodeID:     source.ID,
				Label:      source.Data.Label,
				Kind:       source.Kind,
				Handle:     edge.SourceHandle,
				Fields:     FieldsOf(source),
				SchemaMode: mode,
			})
		}
	}

	return ancestors
}

// ModeOf returns the schema mode for a node kind. The switch is exhaustive
// over workflow.AllKinds; TestModeOfCoversAllKinds enforces it.
func ModeOf(k workflow.Kind) workflow.SchemaMode {
	switch k {
	case workflow.KindIf, workflow.KindFilter, workflow.KindMerge:
		return workflow.SchemaPassthrough
	case workflow.KindHTTPTrigger, workflow.KindCodeNode, workflow.KindJSONParse:
		return workflow.SchemaDynamic
	case workflow.KindEVMRead, workflow.KindABIDecode, workflow.KindEVMLogTrigger:
		return workflow.SchemaConfigDerived
	case workflow.KindCronTrigger, workflow.KindHTTPRequest, workflow.KindEVMWrite,
		workflow.KindGetSecret, workflow.KindABIEncode, workflow.KindAI,
		workflow.KindReturn, workflow.KindLog, workflow.KindError,
		workflow.KindMintToken, workflow.KindBurnToken, workflow.KindTransferToken,
		workflow.KindCheckKYC, workflow.KindCheckBalance:
		return workflow.SchemaStatic
	}
	return workflow.SchemaDynamic
}

// staticFields fixes the known output fields of kinds whose shape does not
// depend on configuration. Field names match the deployed runtime's output
// records so editor hints and real executions agree.
var staticFields = map[workflow.Kind][]workflow.FieldInfo{
	workflow.KindCronTrigger: {
		{Name: "timestamp", Type: "number", Description: "Unix timestamp of the tick"},
	},
	workflow.KindHTTPRequest: {
		{Name: "statusCode", Type: "number", Description: "HTTP response status"},
		{Name: "body", Type: "unknown", Description: "Parsed response body"},
		{Name: "headers", Type: "object", Description: "Response headers"},
	},
	workflow.KindEVMWrite: {
		{Name: "txHash", Type: "string", Description: "Transaction hash"},
		{Name: "status", Type: "string", Description: "Receipt status"},
	},
	workflow.KindGetSecret: {
		{Name: "value", Type: "string", Description: "Secret value"},
	},
	workflow.KindABIEncode: {
		{Name: "encoded", Type: "string", Description: "Hex-encoded calldata"},
	},
	workflow.KindAI: {
		{Name: "response", Type: "string", Description: "Model response text"},
	},
	workflow.KindLog: {
		{Name: "level", Type: "string"},
		{Name: "message", Type: "string"},
	},
	workflow.KindMintToken: {
		{Name: "txHash", Type: "string"},
		{Name: "status", Type: "string"},
	},
	workflow.KindBurnToken: {
		{Name: "txHash", Type: "string"},
		{Name: "status", Type: "string"},
	},
	workflow.KindTransferToken: {
		{Name: "txHash", Type: "string"},
		{Name: "status", Type: "string"},
	},
	workflow.KindCheckKYC: {
		{Name: "passed", Type: "boolean", Description: "Whether the wallet passed verification"},
	},
	workflow.KindCheckBalance: {
		{Name: "balance", Type: "string", Description: "Token balance as a decimal string"},
	},
	// Terminal kinds produce no referenceable output.
	workflow.KindReturn: {},
	workflow.KindError:  {},
}

// FieldsOf resolves a node's output field list according to its schema
// mode. Dynamic and passthrough kinds yield an empty list.
func FieldsOf(node *workflow.Node) []workflow.FieldInfo {
	switch ModeOf(node.Kind) {
	case workflow.SchemaStatic:
		return staticFields[node.Kind]
	case workflow.SchemaConfigDerived:
		return configDerivedFields(node)
	default:
		return nil
	}
}

// configDerivedFields inspects a node's own configuration for declared
// output names, e.g. the outputs of a declared ABI.
func configDerivedFields(node *workflow.Node) []workflow.FieldInfo {
	switch cfg := node.Data.Config.(type) {
	case *workflow.EVMReadConfig:
		return abiOutputFields(cfg.ABI.Outputs)
	case *workflow.ABIDecodeConfig:
		fields := make([]workflow.FieldInfo, 0, len(cfg.OutputNames))
		for i, name := range cfg.OutputNames {
			coarse := "unknown"
			if i < len(cfg.ABIParams) {
				coarse = abiCoarseType(cfg.ABIParams[i].Type)
			}
			fields = append(fields, workflow.FieldInfo{Name: name, Type: coarse})
		}
		return fields
	case *workflow.EVMLogTriggerConfig:
		fields := make([]workflow.FieldInfo, 0, len(cfg.EventABI.Inputs))
		for _, input := range cfg.EventABI.Inputs {
			if input.Name == "" {
				continue
			}
			fields = append(fields, workflow.FieldInfo{
				Name: input.Name,
				Type: abiCoarseType(input.Type),
			})
		}
		return fields
	}
	return nil
}

// abiOutputFields names declared ABI outputs the way the read executor
// normalizes them: a single anonymous output is keyed "value"; unnamed
// outputs in a multi-output list fall back to positional names.
func abiOutputFields(outputs []workflow.ABIParameter) []workflow.FieldInfo {
	if len(outputs) == 1 && outputs[0].Name == "" {
		return []workflow.FieldInfo{{Name: "value", Type: abiCoarseType(outputs[0].Type)}}
	}
	fields := make([]workflow.FieldInfo, 0, len(outputs))
	for i, out := range outputs {
		name := out.Name
		if name == "" {
			name = positionalName(i)
		}
		fields = append(fields, workflow.FieldInfo{Name: name, Type: abiCoarseType(out.Type)})
	}
	return fields
}

// positionalName names the i-th anonymous output: value, value1, value2...
func positionalName(i int) string {
	if i == 0 {
		return "value"
	}
	return "value" + strconv.Itoa(i)
}

// abiCoarseType maps an ABI type string to the editor's coarse field type.
// Integers are strings in normalized output to avoid precision loss.
func abiCoarseType(abiType string) string {
	switch {
	case strings.HasSuffix(abiType, "[]"):
		return "array"
	case abiType == "tuple":
		return "object"
	case abiType == "bool":
		return "boolean"
	case abiType == "string", abiType == "address",
		strings.HasPrefix(abiType, "bytes"),
		strings.HasPrefix(abiType, "uint"),
		strings.HasPrefix(abiType, "int"):
		return "string"
	default:
		return "unknown"
	}
}
