// Package jq evaluates jq selection expressions against preview results,
// with timeout and input-size protection.
package jq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/itchyny/gojq"
)

const (
	// DefaultTimeout bounds one expression evaluation.
	DefaultTimeout = 1 * time.Second

	// DefaultMaxInputSize bounds the JSON size of the input value (10MB).
	DefaultMaxInputSize = 10 * 1024 * 1024
)

// Executor evaluates jq expressions.
type Executor struct {
	timeout      time.Duration
	maxInputSize int64
}

// NewExecutor creates an Executor; zero arguments select the defaults.
func NewExecutor(timeout time.Duration, maxInputSize int64) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxInputSize <= 0 {
		maxInputSize = DefaultMaxInputSize
	}
	return &Executor{timeout: timeout, maxInputSize: maxInputSize}
}

// Execute runs an expression against a value. An empty expression is the
// identity. A query producing one value returns it directly; multiple
// values come back as an array.
func (e *Executor) Execute(ctx context.Context, expression string, data any) (any, error) {
	if expression == "" {
		return data, nil
	}

	if err := e.validateInputSize(data); err != nil {
		return nil, err
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compile error: %w", err)
	}

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var results []any
	iter := code.RunWithContext(execCtx, data)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			if execCtx.Err() != nil {
				return nil, fmt.Errorf("execution timeout after %v", e.timeout)
			}
			return nil, err
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// Validate compiles an expression without running it, to catch syntax
// errors early.
func (e *Executor) Validate(expression string) error {
	if expression == "" {
		return nil
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return fmt.Errorf("invalid jq expression: %w", err)
	}
	if _, err := gojq.Compile(query); err != nil {
		return fmt.Errorf("jq compilation failed: %w", err)
	}
	return nil
}

func (e *Executor) validateInputSize(data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	if int64(len(jsonData)) > e.maxInputSize {
		return fmt.Errorf("data size (%d bytes) exceeds maximum (%d bytes)",
			len(jsonData), e.maxInputSize)
	}
	return nil
}
