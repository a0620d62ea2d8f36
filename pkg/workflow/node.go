package workflow

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind discriminates node types. The set is closed; documents referencing
// an unknown kind fail to parse.
type Kind string

// The full node kind vocabulary of the editor.
const (
	// Triggers
	KindCronTrigger   Kind = "cronTrigger"
	KindHTTPTrigger   Kind = "httpTrigger"
	KindEVMLogTrigger Kind = "evmLogTrigger"

	// Actions
	KindHTTPRequest Kind = "httpRequest"
	KindEVMRead     Kind = "evmRead"
	KindEVMWrite    Kind = "evmWrite"
	KindGetSecret   Kind = "getSecret"

	// Transforms
	KindCodeNode  Kind = "codeNode"
	KindJSONParse Kind = "jsonParse"
	KindABIEncode Kind = "abiEncode"
	KindABIDecode Kind = "abiDecode"
	KindMerge     Kind = "merge"

	// Control flow
	KindFilter Kind = "filter"
	KindIf     Kind = "if"

	// AI
	KindAI Kind = "ai"

	// Output
	KindReturn Kind = "return"
	KindLog    Kind = "log"
	KindError  Kind = "error"

	// Tokenization
	KindMintToken     Kind = "mintToken"
	KindBurnToken     Kind = "burnToken"
	KindTransferToken Kind = "transferToken"

	// Regulation
	KindCheckKYC     Kind = "checkKyc"
	KindCheckBalance Kind = "checkBalance"
)

// AllKinds lists every node kind. Tests assert the per-kind tables in this
// package and in the schema resolver cover all of them.
var AllKinds = []Kind{
	KindCronTrigger, KindHTTPTrigger, KindEVMLogTrigger,
	KindHTTPRequest, KindEVMRead, KindEVMWrite, KindGetSecret,
	KindCodeNode, KindJSONParse, KindABIEncode, KindABIDecode, KindMerge,
	KindFilter, KindIf,
	KindAI,
	KindReturn, KindLog, KindError,
	KindMintToken, KindBurnToken, KindTransferToken,
	KindCheckKYC, KindCheckBalance,
}

// IsTrigger reports whether the kind is a workflow entry point.
func (k Kind) IsTrigger() bool {
	switch k {
	case KindCronTrigger, KindHTTPTrigger, KindEVMLogTrigger:
		return true
	}
	return false
}

// IsPassthrough reports whether the kind reshapes or routes data without
// declaring new named fields. Passthrough nodes are transparent to upstream
// schema discovery.
func (k Kind) IsPassthrough() bool {
	switch k {
	case KindIf, KindFilter, KindMerge:
		return true
	}
	return false
}

// Position is the node's location on the editor canvas. Carried through
// unchanged; the preview core never reads it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeSettings are editor-level execution hints. The preview core parses
// and preserves them but never acts on them: previews are single attempts
// and never retry.
type NodeSettings struct {
	RetryOnFail *RetryConfig `json:"retryOnFail,omitempty"`
	OnError     string       `json:"onError,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	ExecuteOnce *bool        `json:"executeOnce,omitempty"`
}

// RetryConfig configures deployed-workflow retry behavior.
type RetryConfig struct {
	Enabled          bool `json:"enabled"`
	MaxTries         int  `json:"maxTries"`
	WaitBetweenTries int  `json:"waitBetweenTries"`
}

// NodeData carries the label and the kind-specific configuration record.
type NodeData struct {
	Label  string     `json:"label"`
	Config NodeConfig `json:"config"`
}

// Node is one typed step in the graph.
type Node struct {
	ID       string        `json:"id"`
	Kind     Kind          `json:"type"`
	Position Position      `json:"position"`
	Data     NodeData      `json:"data"`
	Settings *NodeSettings `json:"settings,omitempty"`

	// LastExecution memoizes the most recent successful preview of this
	// node. It is the only mutable state a node holds: overwritten, never
	// appended, by each subsequent preview. If two previews of the same
	// node race, last writer wins.
	LastExecution *NodeExecution `json:"lastExecution,omitempty"`
}

// NodeExecution is a memoized preview result.
type NodeExecution struct {
	// RawResult is the protocol-level artifact (HTTP status/headers/body,
	// chain call raw return), bounded by the sanitizer.
	RawResult any `json:"rawResult"`

	// NormalizedResult is the value reference expressions see.
	NormalizedResult any `json:"normalizedResult"`

	// Warnings are non-fatal caveats attached to the execution.
	Warnings []string `json:"warnings,omitempty"`

	// OutputSchema is the structural schema inferred from NormalizedResult.
	OutputSchema *DataSchema `json:"outputSchema,omitempty"`

	// ExecutedAt is when the preview completed.
	ExecutedAt time.Time `json:"executedAt"`
}

// nodeEnvelope is the wire shape of a node before the kind-specific config
// is decoded.
type nodeEnvelope struct {
	ID       string        `json:"id"`
	Kind     Kind          `json:"type"`
	Position Position      `json:"position"`
	Data     struct {
		Label  string          `json:"label"`
		Config json.RawMessage `json:"config"`
	} `json:"data"`
	Settings      *NodeSettings  `json:"settings,omitempty"`
	LastExecution *NodeExecution `json:"lastExecution,omitempty"`
}

// UnmarshalJSON decodes the envelope, then the config record at its
// declared kind. Unknown kinds are a parse error, not a silent fallthrough.
func (n *Node) UnmarshalJSON(data []byte) error {
	var env nodeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	cfg := newConfig(env.Kind)
	if cfg == nil {
		return fmt.Errorf("node %q: unknown node kind %q", env.ID, env.Kind)
	}
	if len(env.Data.Config) > 0 {
		if err := json.Unmarshal(env.Data.Config, cfg); err != nil {
			return fmt.Errorf("node %q: decoding %s config: %w", env.ID, env.Kind, err)
		}
	}

	n.ID = env.ID
	n.Kind = env.Kind
	n.Position = env.Position
	n.Data = NodeData{Label: env.Data.Label, Config: cfg}
	n.Settings = env.Settings
	n.LastExecution = env.LastExecution
	return nil
}

// NodeConfig is implemented by every kind-specific configuration record.
type NodeConfig interface {
	kind() Kind
}

// newConfig returns a zero config record for the kind. The switch is the
// single place a new kind must be registered; TestNewConfigCoversAllKinds
// fails when a kind is missing.
func newConfig(k Kind) NodeConfig {
	switch k {
	case KindCronTrigger:
		return &CronTriggerConfig{}
	case KindHTTPTrigger:
		return &HTTPTriggerConfig{}
	case KindEVMLogTrigger:
		return &EVMLogTriggerConfig{}
	case KindHTTPRequest:
		return &HTTPRequestConfig{}
	case KindEVMRead:
		return &EVMReadConfig{}
	case KindEVMWrite:
		return &EVMWriteConfig{}
	case KindGetSecret:
		return &GetSecretConfig{}
	case KindCodeNode:
		return &CodeNodeConfig{}
	case KindJSONParse:
		return &JSONParseConfig{}
	case KindABIEncode:
		return &ABIEncodeConfig{}
	case KindABIDecode:
		return &ABIDecodeConfig{}
	case KindMerge:
		return &MergeConfig{}
	case KindFilter:
		return &FilterConfig{}
	case KindIf:
		return &IfConfig{}
	case KindAI:
		return &AIConfig{}
	case KindReturn:
		return &ReturnConfig{}
	case KindLog:
		return &LogConfig{}
	case KindError:
		return &ErrorConfig{}
	case KindMintToken:
		return &MintTokenConfig{}
	case KindBurnToken:
		return &BurnTokenConfig{}
	case KindTransferToken:
		return &TransferTokenConfig{}
	case KindCheckKYC:
		return &CheckKYCConfig{}
	case KindCheckBalance:
		return &CheckBalanceConfig{}
	}
	return nil
}
