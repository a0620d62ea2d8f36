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

// Package errors defines the closed error taxonomy for node preview
// execution. Every failure that crosses the preview service boundary is a
// *PreviewError carrying a stable machine-readable code, a human-readable
// message, and an HTTP-style status classification the caller can map to
// its own transport.
package errors

import (
	"fmt"
)

// Code is a stable machine-readable error code. The set is closed: callers
// may switch exhaustively over these values.
type Code string

const (
	// CodeNodeNotFound indicates the target node id does not exist in the
	// supplied workflow document.
	CodeNodeNotFound Code = "node_not_found"

	// CodeUnsupportedNodeKind indicates the target node's kind is not in
	// the preview allow-list (HTTP request, EVM read, EVM write).
	CodeUnsupportedNodeKind Code = "unsupported_node_kind"

	// CodeInvalidConfiguration indicates a precondition failure in the
	// node's own configuration: a missing required field or mismatched
	// argument/parameter counts.
	CodeInvalidConfiguration Code = "invalid_configuration"

	// CodeReferenceResolutionFailed wraps any expression resolver failure:
	// unknown node, unexecuted node, missing path segment, or a trigger
	// reference during isolated-node preview.
	CodeReferenceResolutionFailed Code = "reference_resolution_failed"

	// CodeSecretNotDeclared indicates a referenced secret has no entry in
	// the workflow's logical-name to environment-variable mapping.
	CodeSecretNotDeclared Code = "secret_not_declared"

	// CodeSecretEnvironmentUnavailable indicates a declared secret's
	// environment variable is not set in the live environment.
	CodeSecretEnvironmentUnavailable Code = "secret_environment_unavailable"

	// CodeRPCNotConfigured indicates no RPC URL could be resolved for the
	// requested chain, neither from global config nor the default table.
	CodeRPCNotConfigured Code = "rpc_not_configured"

	// CodeInvalidJSONResponse indicates a response declared as JSON failed
	// to parse.
	CodeInvalidJSONResponse Code = "invalid_json_response"

	// CodeUnexpectedHTTPStatus indicates the response status code was not
	// in the configured allow-list.
	CodeUnexpectedHTTPStatus Code = "unexpected_http_status"

	// CodeInvalidEVMArgument indicates ABI value coercion failed.
	CodeInvalidEVMArgument Code = "invalid_evm_argument"

	// CodeExecutionTimeout indicates the single outbound call exceeded its
	// timeout. Never folded into CodeExecutionFailed so callers can offer
	// a retry affordance for transient stalls.
	CodeExecutionTimeout Code = "execution_timeout"

	// CodeExecutionFailed is the catch-all for anything unexpected.
	CodeExecutionFailed Code = "execution_failed"
)

// Status is an HTTP-style classification of an error code, independent of
// the transport the caller actually uses.
type Status int

const (
	// StatusNotFound maps to HTTP 404.
	StatusNotFound Status = 404
	// StatusBadRequest maps to HTTP 400.
	StatusBadRequest Status = 400
	// StatusTimeout maps to HTTP 408.
	StatusTimeout Status = 408
	// StatusServerError maps to HTTP 500.
	StatusServerError Status = 500
)

// statusOf fixes the classification per code. Codes outside the closed set
// classify as server errors.
func statusOf(code Code) Status {
	switch code {
	case CodeNodeNotFound:
		return StatusNotFound
	case CodeUnsupportedNodeKind, CodeInvalidConfiguration,
		CodeReferenceResolutionFailed, CodeSecretNotDeclared,
		CodeRPCNotConfigured, CodeInvalidEVMArgument:
		return StatusBadRequest
	case CodeExecutionTimeout:
		return StatusTimeout
	default:
		return StatusServerError
	}
}

// PreviewError is the single failure value returned by the preview service.
type PreviewError struct {
	// Code identifies the failure class. Stable across releases.
	Code Code

	// Message is the human-readable description. Never contains secret
	// values.
	Message string

	// Status is the HTTP-style classification derived from Code.
	Status Status

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *PreviewError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *PreviewError) Unwrap() error {
	return e.Cause
}

// New creates a PreviewError with the given code and message.
func New(code Code, message string) *PreviewError {
	return &PreviewError{Code: code, Message: message, Status: statusOf(code)}
}

// Newf creates a PreviewError with a formatted message.
func Newf(code Code, format string, args ...any) *PreviewError {
	return New(code, fmt.Sprintf(format, args...))
}

// WrapCode attaches a code and message to an underlying error. If err is
// already a *PreviewError its code is preserved and only context is added,
// so the first classification wins as the error propagates outward.
func WrapCode(err error, code Code, message string) *PreviewError {
	if err == nil {
		return New(code, message)
	}
	if pe, ok := AsPreview(err); ok {
		return &PreviewError{
			Code:    pe.Code,
			Message: message + ": " + pe.Message,
			Status:  pe.Status,
			Cause:   pe,
		}
	}
	return &PreviewError{
		Code:    code,
		Message: fmt.Sprintf("%s: %v", message, err),
		Status:  statusOf(code),
		Cause:   err,
	}
}

// AsPreview extracts a *PreviewError from err's chain.
func AsPreview(err error) (*PreviewError, bool) {
	var pe *PreviewError
	if As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsCode reports whether err carries the given preview error code.
func IsCode(err error, code Code) bool {
	pe, ok := AsPreview(err)
	return ok && pe.Code == code
}
