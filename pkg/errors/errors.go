// Package errors provides structured error types for polarcoaster.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the player and the HTTP server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_* / MALFORMED_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// A malformed trace is always fatal: nothing downstream of decoding (layout,
// animation, rendering) runs once one has been reported.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedTrace, "node %d jumps from depth %d to %d", i, prev, d)
//	if errors.Is(err, errors.ErrCodeMalformedTrace) {
//	    // abort before layout
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidTrace, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeMalformedTrace  Code = "MALFORMED_TRACE"
	ErrCodeInvalidTrace    Code = "INVALID_TRACE"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidVizType  Code = "INVALID_VIZ_TYPE"
	ErrCodeInvalidViewport Code = "INVALID_VIEWPORT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Capacity errors
	ErrCodeSessionLimit Code = "SESSION_LIMIT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Kind groups codes by who has to act on them. The HTTP server derives a
// status from it and the command line an exit status.
type Kind int

const (
	KindInternal Kind = iota
	KindInput
	KindNotFound
	KindCapacity
	KindUnsupported
)

// Kind classifies the code. Unknown codes are internal.
func (c Code) Kind() Kind {
	switch c {
	case ErrCodeInvalidInput, ErrCodeMalformedTrace, ErrCodeInvalidTrace, ErrCodeInvalidFormat,
		ErrCodeInvalidVizType, ErrCodeInvalidViewport, ErrCodeInvalidConfig:
		return KindInput
	case ErrCodeNotFound, ErrCodeFileNotFound, ErrCodeSessionNotFound:
		return KindNotFound
	case ErrCodeSessionLimit:
		return KindCapacity
	case ErrCodeUnsupported:
		return KindUnsupported
	default:
		return KindInternal
	}
}

// KindOf returns the kind of err's code. Errors without a code are internal.
func KindOf(err error) Kind {
	return GetCode(err).Kind()
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
