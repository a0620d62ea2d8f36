package workflow

// ABIParameter describes one input or output of a contract function or
// event, recursively for tuple components.
type ABIParameter struct {
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Indexed    *bool          `json:"indexed,omitempty"`
	Components []ABIParameter `json:"components,omitempty"`
}

// ABIFunction is the typed signature of a contract function.
type ABIFunction struct {
	Type            string         `json:"type"`
	Name            string         `json:"name"`
	Inputs          []ABIParameter `json:"inputs"`
	Outputs         []ABIParameter `json:"outputs"`
	StateMutability string         `json:"stateMutability"`
}

// ABIEvent is the typed signature of a contract event.
type ABIEvent struct {
	Type   string         `json:"type"`
	Name   string         `json:"name"`
	Inputs []ABIParameter `json:"inputs"`
}

// EVMArgDef binds one call argument: a source expression (which may embed
// {{...}} references) and the ABI type it must coerce to.
type EVMArgDef struct {
	Type    string `json:"type"`
	Value   string `json:"value"`
	ABIType string `json:"abiType"`
}
