// Package workflow defines the node-graph document model shared with the
// visual editor: typed nodes, directed edges, and global configuration.
//
// Documents arrive as JSON (the editor wire format) or YAML files. This
// package is passive data from the preview core's point of view: the only
// field the core ever writes is a node's LastExecution slot, overwritten by
// each successful preview of that node.
package workflow

import (
	"fmt"
)

// Workflow is a complete workflow document: the unit of input to the
// preview core.
type Workflow struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Version     string       `json:"version"`
	Nodes       []*Node      `json:"nodes"`
	Edges       []Edge       `json:"edges"`
	GlobalConfig GlobalConfig `json:"globalConfig"`
	CreatedAt   string       `json:"createdAt,omitempty"`
	UpdatedAt   string       `json:"updatedAt,omitempty"`
}

// Edge connects a source node's output handle to a target node's input
// handle. Handles disambiguate multi-output nodes (an if node's true/false
// branches) and multi-input nodes (a merge node's numbered inputs).
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// GlobalConfig is workflow-wide configuration: the network flag, declared
// secret mappings, and per-chain RPC URL overrides. Read-only input to the
// preview core.
type GlobalConfig struct {
	IsTestnet bool              `json:"isTestnet"`
	Secrets   []SecretReference `json:"secrets"`
	RPCs      []RPCEntry        `json:"rpcs"`
}

// SecretReference declares a logical secret name and the environment
// variable holding its value. The preview core never handles the literal
// value except at the moment of outbound use.
type SecretReference struct {
	Name        string `json:"name"`
	EnvVariable string `json:"envVariable"`
}

// Validate checks the declaration invariants: both names non-empty and
// distinct from each other.
func (s SecretReference) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("secret declaration missing name")
	}
	if s.EnvVariable == "" {
		return fmt.Errorf("secret %q missing environment variable name", s.Name)
	}
	if s.Name == s.EnvVariable {
		return fmt.Errorf("secret %q must not use its own name as environment variable", s.Name)
	}
	return nil
}

// RPCEntry overrides the default RPC endpoint for one chain.
type RPCEntry struct {
	ChainName string `json:"chainName"`
	URL       string `json:"url"`
}

// RPCOverride returns the configured RPC URL for a chain, if any.
func (g GlobalConfig) RPCOverride(chainName string) (string, bool) {
	for _, rpc := range g.RPCs {
		if rpc.ChainName == chainName && rpc.URL != "" {
			return rpc.URL, true
		}
	}
	return "", false
}

// SecretEnvVariable returns the environment variable declared for a logical
// secret name, if any.
func (g GlobalConfig) SecretEnvVariable(name string) (string, bool) {
	for _, s := range g.Secrets {
		if s.Name == name {
			return s.EnvVariable, true
		}
	}
	return "", false
}

// Node returns the node with the given id, or nil.
func (w *Workflow) Node(id string) *Node {
	for _, n := range w.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Validate checks document-level invariants: unique node ids and valid
// secret declarations. Dangling edges are deliberately not an error; the
// upstream resolver skips them.
func (w *Workflow) Validate() error {
	seen := make(map[string]bool, len(w.Nodes))
	for _, n := range w.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node with empty id")
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
	}
	for _, s := range w.GlobalConfig.Secrets {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
