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

package shared

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitErrorMessage(t *testing.T) {
	err := NewInvalidWorkflowError("failed to load doc.yaml", fmt.Errorf("no such file"))
	want := "failed to load doc.yaml: no such file"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	bare := NewInvalidUsageError("--file is required")
	if bare.Error() != "--file is required" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestExitErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewPreviewFailedError("preview of node \"fetch\" failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}

	var exitErr *ExitError
	wrapped := fmt.Errorf("run: %w", err)
	if !errors.As(wrapped, &exitErr) {
		t.Fatal("expected errors.As to find the ExitError")
	}
	if exitErr.Code != ExitPreviewFailed {
		t.Errorf("code = %d, want %d", exitErr.Code, ExitPreviewFailed)
	}
}
