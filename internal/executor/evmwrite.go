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
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/6flow-studio/6flow-convergence-sub000/internal/abicodec"
	"github.com/6flow-studio/6flow-convergence-sub000/internal/chains"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/errors"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/workflow"
)

// Simulation statuses for an evmWrite preview.
const (
	simPrepared       = "prepared"
	simEstimated      = "estimated"
	simEstimateFailed = "estimateFailed"
)

// execEVMWrite prepares and simulates a state-changing call. It never
// signs and never broadcasts; the strongest thing it does against the
// chain is eth_estimateGas. The normalized result carries broadcast=false
// and no transaction hash so downstream consumers cannot mistake a
// preview for a send.
func execEVMWrite(ctx context.Context, e *Executor, wf *workflow.Workflow, node *workflow.Node) (*Result, error) {
	cfg, ok := node.Data.Config.(*workflow.EVMWriteConfig)
	if !ok {
		return nil, configError(node, "configuration is not an evmWrite configuration")
	}
	if strings.TrimSpace(cfg.ReceiverAddress) == "" {
		return nil, configError(node, "receiverAddress is required")
	}
	if len(cfg.ABIParams) == 0 {
		return nil, configError(node, "at least one abiParam is required")
	}
	if len(cfg.DataMapping) != len(cfg.ABIParams) {
		return nil, configError(node, "%d abiParams declared but %d values mapped",
			len(cfg.ABIParams), len(cfg.DataMapping))
	}

	values, err := resolveArgs(wf, node, cfg.DataMapping, cfg.ABIParams)
	if err != nil {
		return nil, err
	}
	calldata, err := abicodec.PackArguments(cfg.ABIParams, values)
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeInvalidEVMArgument,
			"node "+node.ID+": packing calldata")
	}

	valueWei, err := parseWeiValue(node, cfg.Value)
	if err != nil {
		return nil, err
	}
	gasLimit, err := parseGasLimit(node, cfg.GasLimit)
	if err != nil {
		return nil, err
	}

	rpcURL, err := chains.ResolveRPCURL(wf.GlobalConfig, cfg.ChainSelectorName)
	if err != nil {
		return nil, err
	}

	to := common.HexToAddress(cfg.ReceiverAddress)
	msg := ethereum.CallMsg{To: &to, Data: calldata, Value: valueWei}

	status := simPrepared
	var warnings []string
	var gasEstimate *uint64
	var chainID *big.Int

	client, err := e.dial(ctx, rpcURL)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf(
			"rpc for chain %q unreachable; gas estimation skipped", cfg.ChainSelectorName))
	} else {
		defer client.Close()

		if gas, err := client.EstimateGas(ctx, msg); err != nil {
			status = simEstimateFailed
			warnings = append(warnings, fmt.Sprintf("gas estimation failed: %v", err))
		} else {
			status = simEstimated
			gasEstimate = &gas
			if gasLimit != nil && gas > *gasLimit {
				warnings = append(warnings, fmt.Sprintf(
					"gas estimate %d exceeds configured gasLimit %d", gas, *gasLimit))
			}
		}

		if id, err := client.ChainID(ctx); err != nil {
			warnings = append(warnings, "chain id lookup failed")
		} else {
			chainID = id
		}
	}

	normalized := map[string]any{
		"simulationStatus": status,
		"broadcast":        false,
		"to":               to.Hex(),
		"calldata":         hexutil.Encode(calldata),
	}
	if gasEstimate != nil {
		normalized["gasEstimate"] = fmt.Sprintf("%d", *gasEstimate)
	}
	if chainID != nil {
		normalized["chainId"] = chainID.String()
	}
	if valueWei != nil {
		normalized["valueWei"] = valueWei.String()
	}

	raw := map[string]any{
		"to":       to.Hex(),
		"calldata": hexutil.Encode(calldata),
	}
	if valueWei != nil {
		raw["value"] = valueWei.String()
	}
	if gasLimit != nil {
		raw["gasLimit"] = fmt.Sprintf("%d", *gasLimit)
	}

	return &Result{Raw: raw, Normalized: normalized, Warnings: warnings}, nil
}

func parseWeiValue(node *workflow.Node, s string) (*big.Int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, nil
	}
	n, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || n.Sign() < 0 {
		return nil, configError(node, "value %q is not a non-negative wei amount", s)
	}
	return n, nil
}

func parseGasLimit(node *workflow.Node, s string) (*uint64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, nil
	}
	n, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || n.Sign() < 0 || !n.IsUint64() {
		return nil, configError(node, "gasLimit %q is not a non-negative integer", s)
	}
	limit := n.Uint64()
	return &limit, nil
}
