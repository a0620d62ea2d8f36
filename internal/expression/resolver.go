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

// Package expression evaluates {{root.path}} reference expressions embedded
// in node configuration strings.
//
// The grammar has two productions. A configuration string that is exactly
// one reference resolves to the referenced value at its own type, which may
// be structured. Free text with embedded references resolves each reference
// left to right and substitutes its text representation in place, so an
// embedded reference can only ever contribute text.
//
// Roots: "trigger" (always a typed error; trigger data does not exist
// during isolated-node preview), "config" (walks the global configuration
// record), or a node id (walks that node's memoized normalized result).
// Resolution never mutates state and is idempotent.
package expression

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/6flow-studio/6flow-convergence-sub000/pkg/errors"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/workflow"
)

// Resolver evaluates reference expressions against one workflow snapshot.
type Resolver struct {
	wf *workflow.Workflow
}

// NewResolver creates a resolver over the given workflow document.
func NewResolver(wf *workflow.Workflow) *Resolver {
	return &Resolver{wf: wf}
}

// Resolve evaluates a configuration string. A pure reference yields the
// referenced value at its own type; anything else yields a string with
// each embedded reference substituted.
func (r *Resolver) Resolve(s string) (any, error) {
	trimmed := strings.TrimSpace(s)
	if isPureReference(trimmed) {
		return r.resolveReference(trimmed[2 : len(trimmed)-2])
	}
	return r.interpolate(s)
}

// ResolveString evaluates a configuration string to text. Pure references
// are resolved then stringified.
func (r *Resolver) ResolveString(s string) (string, error) {
	value, err := r.Resolve(s)
	if err != nil {
		return "", err
	}
	return stringify(value), nil
}

// ResolveStringMap resolves every value of a configuration string map.
func (r *Resolver) ResolveStringMap(in map[string]string) (map[string]string, error) {
	if in == nil {
		return nil, nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		resolved, err := r.ResolveString(v)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %q", k)
		}
		out[k] = resolved
	}
	return out, nil
}

// isPureReference reports whether the trimmed string is exactly one
// {{...}} reference with no surrounding text. The first closing
// delimiter must also end the string: "{{a}}}" is mixed text, not a
// reference named "a}".
func isPureReference(s string) bool {
	if !strings.HasPrefix(s, "{{") || strings.Count(s, "{{") != 1 {
		return false
	}
	return strings.Index(s, "}}") == len(s)-2
}

// interpolate substitutes each embedded reference, left to right. An
// opening delimiter with no closing one is kept as literal text, matching
// the editor's behavior.
func (r *Resolver) interpolate(s string) (string, error) {
	var b strings.Builder
	remaining := s
	for {
		start := strings.Index(remaining, "{{")
		if start < 0 {
			b.WriteString(remaining)
			return b.String(), nil
		}
		b.WriteString(remaining[:start])

		rest := remaining[start+2:]
		end := strings.Index(rest, "}}")
		if end < 0 {
			b.WriteString(remaining[start:])
			return b.String(), nil
		}

		value, err := r.resolveReference(rest[:end])
		if err != nil {
			return "", err
		}
		b.WriteString(stringify(value))
		remaining = rest[end+2:]
	}
}

// resolveReference evaluates the inside of one {{...}} reference.
func (r *Resolver) resolveReference(inner string) (any, error) {
	ref := strings.TrimSpace(inner)
	if ref == "" {
		return nil, errors.New(errors.CodeReferenceResolutionFailed, "empty reference")
	}

	root, path := splitRef(ref)
	switch root {
	case "trigger":
		return nil, errors.New(errors.CodeReferenceResolutionFailed,
			"trigger data is not available during node preview")
	case "config":
		return r.resolveConfig(path)
	default:
		return r.resolveNode(root, path, ref)
	}
}

// splitRef separates the root from the remaining dot path.
func splitRef(ref string) (root, path string) {
	if i := strings.IndexByte(ref, '.'); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return ref, ""
}

// resolveConfig walks the global configuration record. An empty path
// returns the whole record.
func (r *Resolver) resolveConfig(path string) (any, error) {
	record, err := toRecord(r.wf.GlobalConfig)
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeReferenceResolutionFailed, "reading global config")
	}
	if path == "" {
		return record, nil
	}
	return walkPath(record, path, "config")
}

// resolveNode walks a node's memoized normalized result.
func (r *Resolver) resolveNode(nodeID, path, ref string) (any, error) {
	node := r.wf.Node(nodeID)
	if node == nil {
		return nil, errors.Newf(errors.CodeReferenceResolutionFailed,
			"reference {{%s}} names unknown node %q", ref, nodeID)
	}
	if node.LastExecution == nil {
		return nil, errors.Newf(errors.CodeReferenceResolutionFailed,
			"node %q has no execution data; run it once to make its output referenceable", nodeID)
	}
	if path == "" {
		return node.LastExecution.NormalizedResult, nil
	}
	return walkPath(node.LastExecution.NormalizedResult, path, nodeID)
}

// walkPath descends a dot path segment by segment. Only field containers
// are traversable; arrays are not indexable by this grammar.
func walkPath(value any, path, root string) (any, error) {
	current := value
	walked := root
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return nil, errors.Newf(errors.CodeReferenceResolutionFailed,
				"empty path segment after %q", walked)
		}
		record, ok := asRecord(current)
		if !ok {
			return nil, errors.Newf(errors.CodeReferenceResolutionFailed,
				"cannot descend into %q: value at %q is not an object", segment, walked)
		}
		next, ok := record[segment]
		if !ok {
			return nil, errors.Newf(errors.CodeReferenceResolutionFailed,
				"path segment %q not found under %q", segment, walked)
		}
		current = next
		walked = walked + "." + segment
	}
	return current, nil
}

// asRecord views a value as a string-keyed record. Struct values (the
// global config and executor results before sanitization) are normalized
// through JSON.
func asRecord(v any) (map[string]any, bool) {
	switch val := v.(type) {
	case map[string]any:
		return val, true
	case nil, string, bool, float64, int, int64, []any:
		return nil, false
	default:
		record, err := toRecord(val)
		if err != nil {
			return nil, false
		}
		return record, true
	}
}

// toRecord converts a struct value to a map through its JSON form.
func toRecord(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("value is not an object")
	}
	return record, nil
}

// stringify renders a resolved value as substitution text: null becomes
// empty, primitives their literal text, structured values compact JSON.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}
