package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes a workflow document from its JSON wire format and
// validates document-level invariants.
func Parse(data []byte) (*Workflow, error) {
	var w Workflow
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parsing workflow document: %w", err)
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workflow document: %w", err)
	}
	return &w, nil
}

// LoadFile reads a workflow document from a JSON or YAML file, selected by
// extension. YAML documents are normalized through JSON so both formats
// share one decode path.
func LoadFile(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflow file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		jsonData, err := yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("converting %s: %w", filepath.Base(path), err)
		}
		return Parse(jsonData)
	default:
		return Parse(data)
	}
}

// yamlToJSON converts a YAML document to JSON bytes. yaml.v3 decodes
// mappings as map[string]interface{}, which marshals directly.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(normalizeYAML(doc))
}

// normalizeYAML rewrites map[any]any keys (produced for non-string YAML
// keys) into strings so the value is JSON-marshalable.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeYAML(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeYAML(item)
		}
		return out
	default:
		return v
	}
}
