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

package secrets

import (
	"fmt"
	"strings"

	"github.com/6flow-studio/6flow-convergence-sub000/pkg/workflow"
)

// Masker replaces known secret values in preview output. Targets that
// echo request headers back (debug endpoints, proxies) would otherwise
// surface a resolved bearer token in the raw result.
type Masker struct {
	// secrets is a set of literal values to mask
	secrets map[string]bool
}

// NewMasker creates an empty masker.
func NewMasker() *Masker {
	return &Masker{secrets: make(map[string]bool)}
}

// AddSecret registers a value to be masked.
func (m *Masker) AddSecret(value string) {
	if value != "" {
		m.secrets[value] = true
	}
}

// Empty reports whether the masker has no values to mask.
func (m *Masker) Empty() bool {
	return len(m.secrets) == 0
}

// Mask replaces all known secret values in a string with "***".
func (m *Masker) Mask(s string) string {
	result := s
	for secret := range m.secrets {
		if strings.Contains(result, secret) {
			result = strings.ReplaceAll(result, secret, "***")
		}
	}
	return result
}

// MaskValue recursively masks secrets in a decoded JSON structure.
// Maps and slices come back as new values; scalars other than strings
// pass through unchanged.
func (m *Masker) MaskValue(v any) any {
	if m.Empty() {
		return v
	}
	switch val := v.(type) {
	case string:
		return m.Mask(val)
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, item := range val {
			result[k] = m.MaskValue(item)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = m.MaskValue(item)
		}
		return result
	case bool, nil, int, int64, float64:
		return val
	default:
		return m.Mask(fmt.Sprintf("%v", val))
	}
}

// MaskerFor builds a masker holding the values of every secret the
// workflow declares and the environment currently provides. Unset
// variables are skipped silently; resolution errors stay with Resolve.
func (r *Resolver) MaskerFor(cfg workflow.GlobalConfig) *Masker {
	m := NewMasker()
	for _, ref := range cfg.Secrets {
		if ref.EnvVariable == "" {
			continue
		}
		if value, ok := r.lookup(ref.EnvVariable); ok {
			m.AddSecret(value)
		}
	}
	return m
}
