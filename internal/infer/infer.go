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

// Package infer derives a structural schema from an executed value, so the
// editor can offer fields of a node that has actually run instead of
// guessing from configuration.
package infer

import (
	"sort"

	"github.com/6flow-studio/6flow-convergence-sub000/pkg/workflow"
)

// maxDepth mirrors the sanitizer's nesting ceiling; a schema never
// describes structure deeper than what survives sanitization.
const maxDepth = 6

// maxArraySample is how many array elements contribute to the merged item
// schema.
const maxArraySample = 20

// Schema infers a structural schema for a value. Objects record their
// fields in sorted key order; arrays carry the merged schema of a sample
// of their elements.
func Schema(v any) *workflow.DataSchema {
	return infer(v, "$", 0)
}

func infer(v any, path string, depth int) *workflow.DataSchema {
	switch val := v.(type) {
	case nil:
		return &workflow.DataSchema{Type: workflow.DataNull, Path: path}
	case string:
		return &workflow.DataSchema{Type: workflow.DataString, Path: path}
	case bool:
		return &workflow.DataSchema{Type: workflow.DataBoolean, Path: path}
	case float64, float32, int, int64, int32:
		return &workflow.DataSchema{Type: workflow.DataNumber, Path: path}

	case map[string]any:
		schema := &workflow.DataSchema{Type: workflow.DataObject, Path: path}
		if depth >= maxDepth {
			return schema
		}

		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			fieldPath := path + "." + k
			schema.Fields = append(schema.Fields, workflow.DataField{
				Key:    k,
				Path:   fieldPath,
				Schema: infer(val[k], fieldPath, depth+1),
			})
		}
		return schema

	case []any:
		schema := &workflow.DataSchema{Type: workflow.DataArray, Path: path}
		if depth >= maxDepth || len(val) == 0 {
			return schema
		}

		sample := val
		if len(sample) > maxArraySample {
			sample = sample[:maxArraySample]
		}

		itemPath := path + "[]"
		merged := infer(sample[0], itemPath, depth+1)
		for _, item := range sample[1:] {
			merged = merge(merged, infer(item, itemPath, depth+1))
		}
		schema.Items = merged
		return schema

	default:
		return &workflow.DataSchema{Type: workflow.DataUnknown, Path: path}
	}
}

// merge folds two schemas inferred at the same path. Type disagreement
// collapses to unknown; objects union their fields, marking the ones not
// present on both sides optional.
func merge(a, b *workflow.DataSchema) *workflow.DataSchema {
	if a.Type != b.Type {
		return &workflow.DataSchema{Type: workflow.DataUnknown, Path: a.Path}
	}

	switch a.Type {
	case workflow.DataObject:
		return mergeObjects(a, b)
	case workflow.DataArray:
		out := &workflow.DataSchema{Type: workflow.DataArray, Path: a.Path}
		switch {
		case a.Items == nil:
			out.Items = b.Items
		case b.Items == nil:
			out.Items = a.Items
		default:
			out.Items = merge(a.Items, b.Items)
		}
		return out
	default:
		return a
	}
}

func mergeObjects(a, b *workflow.DataSchema) *workflow.DataSchema {
	out := &workflow.DataSchema{Type: workflow.DataObject, Path: a.Path}

	bFields := make(map[string]workflow.DataField, len(b.Fields))
	for _, f := range b.Fields {
		bFields[f.Key] = f
	}

	seen := make(map[string]bool, len(a.Fields))
	for _, f := range a.Fields {
		seen[f.Key] = true
		other, ok := bFields[f.Key]
		if !ok {
			f.Optional = true
			out.Fields = append(out.Fields, f)
			continue
		}
		merged := workflow.DataField{
			Key:      f.Key,
			Path:     f.Path,
			Schema:   merge(f.Schema, other.Schema),
			Optional: f.Optional || other.Optional,
		}
		out.Fields = append(out.Fields, merged)
	}

	for _, f := range b.Fields {
		if seen[f.Key] {
			continue
		}
		f.Optional = true
		out.Fields = append(out.Fields, f)
	}

	sort.Slice(out.Fields, func(i, j int) bool { return out.Fields[i].Key < out.Fields[j].Key })
	return out
}
