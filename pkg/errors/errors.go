// Copyright (c) 2026, vmic authors.  All rights reserved.
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

package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode classifies a data-source failure.
type ErrorCode string

const (
	// ErrCodeNotFound indicates the requested resource does not exist
	// (missing file, absent binary, unknown unit).
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodePermissionDenied indicates the resource exists but the
	// current user may not read it.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	// ErrCodeTimeout indicates the query exceeded its time limit.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeUnavailable indicates the backing service is not reachable
	// (daemon socket refused, D-Bus not running).
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE"
	// ErrCodeMalformed indicates the resource was read but could not be parsed.
	ErrCodeMalformed ErrorCode = "MALFORMED"
	// ErrCodeInvalidConfig indicates invalid user configuration. It is the
	// only fatal code: it aborts the run before any collector starts.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// StructuredError provides structured error information for better observability.
// It includes an error code for programmatic handling, a human-readable message,
// the underlying cause, and optional context for debugging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// CodeOf extracts the ErrorCode from err if it is (or wraps) a
// StructuredError. Unknown errors report as UNAVAILABLE, the most
// conservative classification for an unexplained failure.
func CodeOf(err error) ErrorCode {
	var structured *StructuredError
	if stderrors.As(err, &structured) {
		return structured.Code
	}
	return ErrCodeUnavailable
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var structured *StructuredError
	if stderrors.As(err, &structured) {
		return structured.Code == code
	}
	return false
}

// IsFatal reports whether err must abort the run before collection starts.
func IsFatal(err error) bool {
	return IsCode(err, ErrCodeInvalidConfig)
}
