package jq

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestExecutor_Execute(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		data       any
		want       any
		wantErr    bool
	}{
		{
			name:       "empty expression returns data as-is",
			expression: "",
			data:       map[string]any{"foo": "bar"},
			want:       map[string]any{"foo": "bar"},
		},
		{
			name:       "simple field extraction",
			expression: ".body.name",
			data:       map[string]any{"body": map[string]any{"name": "alice"}},
			want:       "alice",
		},
		{
			name:       "array map",
			expression: "map(.x)",
			data:       []any{map[string]any{"x": 1}, map[string]any{"x": 2}},
			want:       []any{1, 2},
		},
		{
			name:       "multiple outputs become an array",
			expression: ".[] | .x",
			data:       []any{map[string]any{"x": 1}, map[string]any{"x": 2}},
			want:       []any{1, 2},
		},
		{
			name:       "missing field yields nil",
			expression: ".nope",
			data:       map[string]any{"foo": "bar"},
			want:       nil,
		},
		{
			name:       "syntax error",
			expression: ".foo |",
			data:       map[string]any{"foo": "bar"},
			wantErr:    true,
		},
		{
			name:       "runtime error",
			expression: ".foo + 1",
			data:       map[string]any{"foo": "bar"},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExecutor(0, 0)
			got, err := e.Execute(context.Background(), tt.expression, tt.data)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !equalJSONish(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExecutor_InputSizeLimit(t *testing.T) {
	e := NewExecutor(time.Second, 16)
	_, err := e.Execute(context.Background(), ".", map[string]any{
		"payload": strings.Repeat("x", 100),
	})
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Fatalf("expected size limit error, got %v", err)
	}
}

func TestExecutor_Validate(t *testing.T) {
	e := NewExecutor(0, 0)

	if err := e.Validate(""); err != nil {
		t.Errorf("empty expression should validate: %v", err)
	}
	if err := e.Validate(".foo.bar"); err != nil {
		t.Errorf("valid expression rejected: %v", err)
	}
	if err := e.Validate(".foo |"); err == nil {
		t.Error("expected error for malformed expression")
	}
}

// equalJSONish compares values loosely across int/float representations.
func equalJSONish(a, b any) bool {
	switch av := a.(type) {
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalJSONish(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k := range av {
			if !equalJSONish(av[k], bv[k]) {
				return false
			}
		}
		return true
	case int:
		switch bv := b.(type) {
		case int:
			return av == bv
		case float64:
			return float64(av) == bv
		}
		return false
	case float64:
		switch bv := b.(type) {
		case int:
			return av == float64(bv)
		case float64:
			return av == bv
		}
		return false
	default:
		return a == b
	}
}
