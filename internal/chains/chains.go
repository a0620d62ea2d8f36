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

// Package chains maps chain selector names to RPC endpoints. A workflow's
// global config may override any entry; absent an override, the static
// default table of public endpoints applies.
package chains

import (
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/errors"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/workflow"
)

// Chain describes one supported chain.
type Chain struct {
	Name          string
	ChainName     string
	IsTestnet     bool
	DefaultRPCURL string
}

var supported = []Chain{
	{Name: "Ethereum Mainnet", ChainName: "ethereum-mainnet", IsTestnet: false, DefaultRPCURL: "https://eth.llamarpc.com"},
	{Name: "Ethereum Sepolia", ChainName: "ethereum-testnet-sepolia", IsTestnet: true, DefaultRPCURL: "https://rpc.sepolia.org"},
	{Name: "Polygon Mainnet", ChainName: "polygon-mainnet", IsTestnet: false, DefaultRPCURL: "https://rpc.ankr.com/polygon"},
	{Name: "Polygon Amoy", ChainName: "polygon-testnet-amoy", IsTestnet: true, DefaultRPCURL: "https://rpc-amoy.polygon.technology"},
	{Name: "Arbitrum One", ChainName: "ethereum-mainnet-arbitrum-1", IsTestnet: false, DefaultRPCURL: "https://arb1.arbitrum.io/rpc"},
	{Name: "Arbitrum Sepolia", ChainName: "ethereum-testnet-sepolia-arbitrum-1", IsTestnet: true, DefaultRPCURL: "https://sepolia-rollup.arbitrum.io/rpc"},
	{Name: "OP Mainnet", ChainName: "ethereum-mainnet-optimism-1", IsTestnet: false, DefaultRPCURL: "https://mainnet.optimism.io"},
	{Name: "OP Sepolia", ChainName: "ethereum-testnet-sepolia-optimism-1", IsTestnet: true, DefaultRPCURL: "https://sepolia.optimism.io"},
	{Name: "Avalanche Mainnet", ChainName: "avalanche-mainnet", IsTestnet: false, DefaultRPCURL: "https://api.avax.network/ext/bc/C/rpc"},
	{Name: "Avalanche Fuji", ChainName: "avalanche-testnet-fuji", IsTestnet: true, DefaultRPCURL: "https://api.avax-test.network/ext/bc/C/rpc"},
	{Name: "Base Mainnet", ChainName: "ethereum-mainnet-base-1", IsTestnet: false, DefaultRPCURL: "https://base.llamarpc.com"},
	{Name: "Base Sepolia", ChainName: "ethereum-testnet-sepolia-base-1", IsTestnet: true, DefaultRPCURL: "https://sepolia.base.org"},
	{Name: "BNB Chain Mainnet", ChainName: "binance_smart_chain-mainnet", IsTestnet: false, DefaultRPCURL: "https://binance.llamarpc.com"},
	{Name: "BNB Chain Testnet", ChainName: "binance_smart_chain-testnet", IsTestnet: true, DefaultRPCURL: "https://data-seed-prebsc-1-s1.binance.org:8545"},
}

// Supported returns the chains available for the given network target.
func Supported(isTestnet bool) []Chain {
	out := make([]Chain, 0, len(supported))
	for _, c := range supported {
		if c.IsTestnet == isTestnet {
			out = append(out, c)
		}
	}
	return out
}

// Lookup returns the chain with the given selector name.
func Lookup(chainName string) (Chain, bool) {
	for _, c := range supported {
		if c.ChainName == chainName {
			return c, true
		}
	}
	return Chain{}, false
}

// ResolveRPCURL returns the RPC URL for a chain: the global-config override
// when present, otherwise the default public endpoint. A chain with neither
// is a typed rpc_not_configured error.
func ResolveRPCURL(cfg workflow.GlobalConfig, chainName string) (string, error) {
	if chainName == "" {
		return "", errors.New(errors.CodeRPCNotConfigured, "no chain selected")
	}
	if url, ok := cfg.RPCOverride(chainName); ok {
		return url, nil
	}
	if c, ok := Lookup(chainName); ok {
		return c.DefaultRPCURL, nil
	}
	return "", errors.Newf(errors.CodeRPCNotConfigured, "no RPC URL configured for chain %q", chainName)
}
