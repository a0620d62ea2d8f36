package workflow

// SchemaMode is the strategy by which a node kind's output fields are known
// ahead of execution.
type SchemaMode string

const (
	// SchemaStatic means the fields are fixed by the node kind alone.
	SchemaStatic SchemaMode = "static"
	// SchemaConfigDerived means the fields are computed by inspecting the
	// node's own configuration, e.g. a declared ABI.
	SchemaConfigDerived SchemaMode = "configDerived"
	// SchemaDynamic means no fields are known ahead of execution.
	SchemaDynamic SchemaMode = "dynamic"
	// SchemaPassthrough means the node relays its ancestors' data and
	// contributes no named fields of its own.
	SchemaPassthrough SchemaMode = "passthrough"
)

// FieldInfo describes one known output field of a node.
type FieldInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Ancestor describes one upstream node discovered by backward traversal
// from a preview target, annotated with its best-known output schema.
type Ancestor struct {
	NodeID     string      `json:"nodeId"`
	Label      string      `json:"label"`
	Kind       Kind        `json:"kind"`
	Handle     string      `json:"handle,omitempty"`
	Fields     []FieldInfo `json:"fields"`
	SchemaMode SchemaMode  `json:"schemaMode"`
}

// DataType tags one node of an inferred data schema.
type DataType string

const (
	DataString  DataType = "string"
	DataNumber  DataType = "number"
	DataBoolean DataType = "boolean"
	DataNull    DataType = "null"
	DataObject  DataType = "object"
	DataArray   DataType = "array"
	DataUnknown DataType = "unknown"
)

// DataSchema is a structural schema inferred from an executed value.
type DataSchema struct {
	// Type is the coarse type tag.
	Type DataType `json:"type"`

	// Path locates this schema node within the root value, e.g.
	// "$.items[].name".
	Path string `json:"path"`

	// Fields describes object members, in stable key order.
	Fields []DataField `json:"fields,omitempty"`

	// Items is the merged schema of array elements.
	Items *DataSchema `json:"items,omitempty"`
}

// DataField describes one object member.
type DataField struct {
	Key      string      `json:"key"`
	Path     string      `json:"path"`
	Schema   *DataSchema `json:"schema"`
	Optional bool        `json:"optional,omitempty"`
}
