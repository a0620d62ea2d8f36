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

// Package abicodec coerces untyped resolved values into the exact Go
// representations go-ethereum's ABI packing requires: *big.Int (or the
// sized machine integer for small widths), common.Address, byte arrays,
// typed slices, and tuple structs, recursively.
//
// The codec is pure: it performs no I/O and never silently zeroes a value
// that fails to parse. Chain integers are arbitrary precision throughout;
// nothing here ever narrows a uint256 through a float.
package abicodec

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/6flow-studio/6flow-convergence-sub000/pkg/errors"
	"github.com/6flow-studio/6flow-convergence-sub000/pkg/workflow"
)

// Coerce converts a resolved value into the representation required by the
// declared ABI parameter, recursively for arrays and tuple components.
// Failures are typed invalid_evm_argument errors naming the offending
// parameter.
func Coerce(value any, param workflow.ABIParameter) (any, error) {
	t, err := abiType(param)
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeInvalidEVMArgument,
			fmt.Sprintf("invalid ABI type %q", param.Type))
	}
	out, err := coerceTyped(value, t)
	if err != nil {
		return nil, errors.WrapCode(err, errors.CodeInvalidEVMArgument,
			fmt.Sprintf("coercing parameter %q as %s", param.Name, param.Type))
	}
	return out, nil
}

// abiType builds the go-ethereum type descriptor for a declared parameter.
func abiType(param workflow.ABIParameter) (abi.Type, error) {
	return abi.NewType(param.Type, "", marshalComponents(param.Components))
}

func marshalComponents(components []workflow.ABIParameter) []abi.ArgumentMarshaling {
	if len(components) == 0 {
		return nil
	}
	out := make([]abi.ArgumentMarshaling, len(components))
	for i, c := range components {
		out[i] = abi.ArgumentMarshaling{
			Name:       c.Name,
			Type:       c.Type,
			Components: marshalComponents(c.Components),
		}
	}
	return out
}

func coerceTyped(value any, t abi.Type) (any, error) {
	switch t.T {
	case abi.UintTy, abi.IntTy:
		return coerceInteger(value, t)
	case abi.BoolTy:
		return coerceBool(value), nil
	case abi.AddressTy:
		// No checksum validation here; address validity is an external
		// concern.
		return common.HexToAddress(text(value)), nil
	case abi.StringTy:
		return text(value), nil
	case abi.BytesTy:
		return coerceBytes(value), nil
	case abi.FixedBytesTy:
		return coerceFixedBytes(value, t)
	case abi.SliceTy, abi.ArrayTy:
		return coerceArray(value, t)
	case abi.TupleTy:
		return coerceTuple(value, t)
	default:
		return nil, fmt.Errorf("unsupported ABI type family %v", t.T)
	}
}

// coerceInteger produces the machine representation go-ethereum packs for
// the declared width: a sized integer up to 64 bits, *big.Int beyond.
// Integers pass through, floats truncate toward zero, and anything else is
// parsed from its trimmed text representation in base 10.
func coerceInteger(value any, t abi.Type) (any, error) {
	n, err := toBigInt(value)
	if err != nil {
		return nil, err
	}
	if t.Size > 64 {
		return n, nil
	}

	out := reflect.New(t.GetType()).Elem()
	if t.T == abi.UintTy {
		if n.Sign() < 0 || !n.IsUint64() || out.OverflowUint(n.Uint64()) {
			return nil, fmt.Errorf("value %s out of range for %s", n, t)
		}
		out.SetUint(n.Uint64())
	} else {
		if !n.IsInt64() || out.OverflowInt(n.Int64()) {
			return nil, fmt.Errorf("value %s out of range for %s", n, t)
		}
		out.SetInt(n.Int64())
	}
	return out.Interface(), nil
}

func toBigInt(value any) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return v, nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case float64:
		// Truncation toward zero; big.Float keeps magnitudes beyond
		// int64 intact.
		n, _ := big.NewFloat(v).Int(nil)
		return n, nil
	case json.Number:
		return parseBigInt(v.String())
	default:
		return parseBigInt(text(value))
	}
}

func parseBigInt(s string) (*big.Int, error) {
	trimmed := strings.TrimSpace(s)
	n, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("cannot parse %q as integer", trimmed)
	}
	return n, nil
}

// coerceBool accepts booleans as-is; anything else compares its trimmed
// lowercase text representation to "true".
func coerceBool(value any) bool {
	if b, ok := value.(bool); ok {
		return b
	}
	return strings.EqualFold(strings.TrimSpace(text(value)), "true")
}

// coerceBytes decodes hex-prefixed text and encodes anything else as its
// UTF-8 bytes.
func coerceBytes(value any) []byte {
	s := text(value)
	if strings.HasPrefix(s, "0x") {
		if decoded, err := hexutil.Decode(s); err == nil {
			return decoded
		}
	}
	return []byte(s)
}

func coerceFixedBytes(value any, t abi.Type) (any, error) {
	raw := coerceBytes(value)
	if len(raw) > t.Size {
		return nil, fmt.Errorf("%d bytes exceed bytes%d", len(raw), t.Size)
	}
	out := reflect.New(t.GetType()).Elem()
	for i, b := range raw {
		out.Index(i).Set(reflect.ValueOf(b))
	}
	return out.Interface(), nil
}

// coerceArray builds the typed slice or array go-ethereum expects, with
// each element recursively coerced at the element type. The value must be
// an array, or a string that parses as a JSON array.
func coerceArray(value any, t abi.Type) (any, error) {
	items, err := asArray(value)
	if err != nil {
		return nil, err
	}
	if t.T == abi.ArrayTy && len(items) != t.Size {
		return nil, fmt.Errorf("expected %d elements, got %d", t.Size, len(items))
	}

	var out reflect.Value
	if t.T == abi.SliceTy {
		out = reflect.MakeSlice(t.GetType(), len(items), len(items))
	} else {
		out = reflect.New(t.GetType()).Elem()
	}
	for i, item := range items {
		elem, err := coerceTyped(item, *t.Elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(reflect.ValueOf(elem))
	}
	return out.Interface(), nil
}

func asArray(value any) ([]any, error) {
	switch v := value.(type) {
	case []any:
		return v, nil
	case string:
		var items []any
		if err := json.Unmarshal([]byte(strings.TrimSpace(v)), &items); err != nil {
			return nil, fmt.Errorf("value %q is not an array", v)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("value of type %T is not an array", value)
	}
}

// coerceTuple builds the tuple struct go-ethereum packs. The value may be
// a positional array, a record keyed by component name, or a JSON string
// of either.
func coerceTuple(value any, t abi.Type) (any, error) {
	if s, ok := value.(string); ok {
		var parsed any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &parsed); err != nil {
			return nil, fmt.Errorf("value %q is not a tuple", s)
		}
		value = parsed
	}

	out := reflect.New(t.GetType()).Elem()
	switch v := value.(type) {
	case []any:
		if len(v) != len(t.TupleElems) {
			return nil, fmt.Errorf("tuple expects %d components, got %d", len(t.TupleElems), len(v))
		}
		for i, item := range v {
			elem, err := coerceTyped(item, *t.TupleElems[i])
			if err != nil {
				return nil, fmt.Errorf("component %q: %w", t.TupleRawNames[i], err)
			}
			out.Field(i).Set(reflect.ValueOf(elem))
		}
	case map[string]any:
		for i, name := range t.TupleRawNames {
			item, ok := v[name]
			if !ok {
				return nil, fmt.Errorf("tuple value missing component %q", name)
			}
			elem, err := coerceTyped(item, *t.TupleElems[i])
			if err != nil {
				return nil, fmt.Errorf("component %q: %w", name, err)
			}
			out.Field(i).Set(reflect.ValueOf(elem))
		}
	default:
		return nil, fmt.Errorf("value of type %T is not a tuple", value)
	}
	return out.Interface(), nil
}

// text renders a value the way the expression resolver stringifies it:
// null empty, primitives literal, structured compact JSON.
func text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case *big.Int:
		return val.String()
	case json.Number:
		return val.String()
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}
