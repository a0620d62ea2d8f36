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

package abicodec

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/6flow-studio/6flow-convergence-sub000/pkg/workflow"
)

// ParseFunction builds a go-ethereum ABI containing the single declared
// function, via the standard ABI JSON form.
func ParseFunction(fn workflow.ABIFunction) (abi.ABI, error) {
	decl := fn
	if decl.Type == "" {
		decl.Type = "function"
	}
	if decl.StateMutability == "" {
		decl.StateMutability = "view"
	}
	data, err := json.Marshal([]workflow.ABIFunction{decl})
	if err != nil {
		return abi.ABI{}, err
	}
	parsed, err := abi.JSON(strings.NewReader(string(data)))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parsing ABI for %q: %w", fn.Name, err)
	}
	return parsed, nil
}

// PackArguments ABI-encodes values against declared parameters, without a
// function selector. This is the calldata shape the write path uses.
func PackArguments(params []workflow.ABIParameter, values []any) ([]byte, error) {
	args := make(abi.Arguments, len(params))
	for i, p := range params {
		t, err := abiType(p)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		args[i] = abi.Argument{Name: p.Name, Type: t}
	}
	return args.Pack(values...)
}

// NormalizeValue converts a go-ethereum decoded value into the JSON-safe
// shape reference expressions see: big integers as decimal strings,
// addresses and byte strings as hex text, tuples as records, recursively.
// Chain integers stay arbitrary precision end to end; they are never
// rendered through a float.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case *big.Int:
		return val.String()
	case common.Address:
		return val.Hex()
	case common.Hash:
		return val.Hex()
	case []byte:
		return hexutil.Encode(val)
	case bool, string:
		return val
	case uint8, uint16, uint32, uint64, int8, int16, int32, int64, int:
		return fmt.Sprintf("%d", val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			raw := make([]byte, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				raw[i] = byte(rv.Index(i).Uint())
			}
			return hexutil.Encode(raw)
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = NormalizeValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Struct:
		// Tuples unpack as anonymous structs; field names are the
		// capitalized component names.
		out := make(map[string]any, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			key := lowerFirst(rv.Type().Field(i).Name)
			out[key] = NormalizeValue(rv.Field(i).Interface())
		}
		return out
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return NormalizeValue(rv.Elem().Interface())
	default:
		return fmt.Sprintf("%v", v)
	}
}

// NormalizeOutputs pairs decoded return values with the ABI's declared
// output names: a single anonymous output is keyed "value"; unnamed
// outputs in a multi-output list get positional names.
func NormalizeOutputs(outputs []workflow.ABIParameter, values []any) map[string]any {
	record := make(map[string]any, len(values))
	for i, v := range values {
		name := ""
		if i < len(outputs) {
			name = outputs[i].Name
		}
		if name == "" {
			if i == 0 {
				name = "value"
			} else {
				name = fmt.Sprintf("value%d", i)
			}
		}
		record[name] = NormalizeValue(v)
	}
	return record
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
