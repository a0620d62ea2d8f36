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
	"os"
)

// Exit codes for flowpreview run
const (
	ExitSuccess         = 0
	ExitPreviewFailed   = 1
	ExitInvalidWorkflow = 2
	ExitInvalidUsage    = 3
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewPreviewFailedError creates an error for preview execution failures
func NewPreviewFailedError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitPreviewFailed,
		Message: msg,
		Cause:   cause,
	}
}

// NewInvalidWorkflowError creates an error for invalid workflow documents
func NewInvalidWorkflowError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitInvalidWorkflow,
		Message: msg,
		Cause:   cause,
	}
}

// NewInvalidUsageError creates an error for bad flag combinations
func NewInvalidUsageError(msg string) *ExitError {
	return &ExitError{
		Code:    ExitInvalidUsage,
		Message: msg,
	}
}

// HandleExitError checks if an error is an ExitError and exits with the appropriate code
func HandleExitError(err error) {
	if err == nil {
		return
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", exitErr.Error())
		os.Exit(exitErr.Code)
	}

	// Default to preview failed
	fmt.Fprintln(os.Stderr, "Error:", err.Error())
	os.Exit(ExitPreviewFailed)
}
