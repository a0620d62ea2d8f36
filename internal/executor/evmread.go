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

package executor

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/6flow-studio/6flow-convergence-sub000/internal/abicodec"
	"github.com/6flow-studio/6flow-convergence-sub000/internal/chains"
	"github.com/6flow-studio/6flow-convergence-sub000/internal/expression"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/errors"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/workflow"
)

// execEVMRead performs one eth_call against the node's declared function.
func execEVMRead(ctx context.Context, e *Executor, wf *workflow.Workflow, node *workflow.Node) (*Result, error) {
	cfg, ok := node.Data.Config.(*workflow.EVMReadConfig)
	if !ok {
		return nil, configError(node, "configuration is not an evmRead configuration")
	}
	if strings.TrimSpace(cfg.ContractAddress) == "" {
		return nil, configError(node, "contractAddress is required")
	}
	if strings.TrimSpace(cfg.FunctionName) == "" {
		return nil, configError(node, "functionName is required")
	}
	if len(cfg.Args) != len(cfg.ABI.Inputs) {
		return nil, configError(node, "abi declares %d inputs but %d args are mapped",
			len(cfg.ABI.Inputs), len(cfg.Args))
	}

	parsedABI, err := abicodec.ParseFunction(cfg.ABI)
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeInvalidConfiguration,
			"node "+node.ID+": invalid abi")
	}

	values, err := resolveArgs(wf, node, cfg.Args, cfg.ABI.Inputs)
	if err != nil {
		return nil, err
	}

	calldata, err := parsedABI.Pack(cfg.FunctionName, values...)
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeInvalidEVMArgument,
			"node "+node.ID+": packing call arguments")
	}

	rpcURL, err := chains.ResolveRPCURL(wf.GlobalConfig, cfg.ChainSelectorName)
	if err != nil {
		return nil, err
	}
	client, err := e.dial(ctx, rpcURL)
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeExecutionFailed,
			"node "+node.ID+": connecting to rpc for chain "+cfg.ChainSelectorName)
	}
	defer client.Close()

	to := common.HexToAddress(cfg.ContractAddress)
	msg := ethereum.CallMsg{To: &to, Data: calldata}
	if cfg.FromAddress != "" {
		msg.From = common.HexToAddress(cfg.FromAddress)
	}

	blockNumber, err := parseBlockNumber(node, cfg.BlockNumber)
	if err != nil {
		return nil, err
	}

	ret, err := client.CallContract(ctx, msg, blockNumber)
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeExecutionFailed,
			"node "+node.ID+": contract call reverted or failed")
	}

	decoded, err := parsedABI.Unpack(cfg.FunctionName, ret)
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeExecutionFailed,
			"node "+node.ID+": decoding return data")
	}

	return &Result{
		Raw: map[string]any{
			"to":         to.Hex(),
			"calldata":   hexutil.Encode(calldata),
			"returnData": hexutil.Encode(ret),
		},
		Normalized: abicodec.NormalizeOutputs(cfg.ABI.Outputs, decoded),
	}, nil
}

// resolveArgs resolves each mapped argument expression and coerces it to
// the declared ABI input type.
func resolveArgs(wf *workflow.Workflow, node *workflow.Node, args []workflow.EVMArgDef, inputs []workflow.ABIParameter) ([]any, error) {
	resolver := expression.NewResolver(wf)
	values := make([]any, len(args))
	for i, arg := range args {
		resolved, err := resolver.Resolve(arg.Value)
		if err != nil {
			return nil, err
		}
		coerced, err := abicodec.Coerce(resolved, inputs[i])
		if err != nil {
			return nil, err
		}
		values[i] = coerced
	}
	return values, nil
}

// parseBlockNumber interprets an optional block pin. Empty and "latest"
// both mean the head block.
func parseBlockNumber(node *workflow.Node, s string) (*big.Int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.EqualFold(trimmed, "latest") {
		return nil, nil
	}
	n, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, configError(node, "blockNumber %q is not a decimal block height", s)
	}
	return n, nil
}
