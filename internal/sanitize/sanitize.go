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

// Package sanitize bounds execution artifacts before they are stored or
// returned. Bounding is deterministic: the same value always produces the
// same output, and no operation here performs I/O.
//
// Values whose keys look credential-bearing are redacted wherever they
// appear, so a memoized preview never carries a secret even when the
// backend echoed one.
package sanitize

import (
	"regexp"
	"sort"
)

// Limits are the structural ceilings applied to a value.
type Limits struct {
	// MaxDepth is how many levels of nesting survive; deeper values are
	// replaced by a placeholder string.
	MaxDepth int

	// MaxArrayItems is how many array elements survive per array.
	MaxArrayItems int

	// MaxObjectKeys is how many keys survive per object, in sorted order.
	MaxObjectKeys int

	// MaxStringLen is how many runes of a string survive.
	MaxStringLen int
}

// DefaultLimits returns the ceilings applied to preview artifacts.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:      6,
		MaxArrayItems: 20,
		MaxObjectKeys: 50,
		MaxStringLen:  2000,
	}
}

const (
	depthPlaceholder = "[max depth exceeded]"
	redacted         = "[REDACTED]"
	ellipsis         = "…"
)

// sensitiveKey matches object keys whose values must never survive
// sanitization, regardless of nesting depth.
var sensitiveKey = regexp.MustCompile(`(?i)secret|token|api[-_]?key|authorization|password|signature`)

// Bound applies DefaultLimits to a value. The returned bool reports
// whether anything was cut or redacted anywhere in the tree.
func Bound(v any) (any, bool) {
	return BoundWithLimits(v, DefaultLimits())
}

// BoundWithLimits applies explicit ceilings.
func BoundWithLimits(v any, limits Limits) (any, bool) {
	return bound(v, 0, limits)
}

func bound(v any, depth int, limits Limits) (any, bool) {
	switch val := v.(type) {
	case map[string]any:
		if depth >= limits.MaxDepth {
			return depthPlaceholder, true
		}

		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		truncated := false
		if len(keys) > limits.MaxObjectKeys {
			keys = keys[:limits.MaxObjectKeys]
			truncated = true
		}

		out := make(map[string]any, len(keys))
		for _, k := range keys {
			if sensitiveKey.MatchString(k) {
				out[k] = redacted
				truncated = true
				continue
			}
			item, cut := bound(val[k], depth+1, limits)
			out[k] = item
			truncated = truncated || cut
		}
		return out, truncated

	case []any:
		if depth >= limits.MaxDepth {
			return depthPlaceholder, true
		}

		truncated := false
		items := val
		if len(items) > limits.MaxArrayItems {
			items = items[:limits.MaxArrayItems]
			truncated = true
		}

		out := make([]any, len(items))
		for i, item := range items {
			bounded, cut := bound(item, depth+1, limits)
			out[i] = bounded
			truncated = truncated || cut
		}
		return out, truncated

	case string:
		runes := []rune(val)
		if len(runes) > limits.MaxStringLen {
			return string(runes[:limits.MaxStringLen]) + ellipsis, true
		}
		return val, false

	default:
		return v, false
	}
}
