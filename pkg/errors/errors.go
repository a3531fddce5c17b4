// Package errors provides structured error types for mavenclosure.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP service
//   - Machine-readable error codes for programmatic handling
//   - A clear split between "bad request" and "repository problem"
//
// # Error Codes
//
// Resolution distinguishes four kinds of failure:
//   - MALFORMED_COORDINATE: the caller supplied an unparsable coordinate or pattern
//   - NOT_FOUND: the repository has no descriptor for a requested coordinate
//   - NETWORK_ERROR: the repository could not be reached
//   - MALFORMED_DESCRIPTOR: a descriptor (or one of its parents) could not be parsed
//
// The first is a request error; the other three are repository errors and abort
// the resolution of the affected root.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedCoordinate, "missing version in %q", s)
//	if errors.Is(err, errors.ErrCodeMalformedCoordinate) {
//	    // report and continue with the next root
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Request errors
	ErrCodeMalformedCoordinate Code = "MALFORMED_COORDINATE"
	ErrCodeInvalidInput        Code = "INVALID_INPUT"
	ErrCodeInvalidConfig       Code = "INVALID_CONFIG"

	// Repository errors
	ErrCodeNotFound            Code = "NOT_FOUND"
	ErrCodeNetwork             Code = "NETWORK_ERROR"
	ErrCodeMalformedDescriptor Code = "MALFORMED_DESCRIPTOR"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

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
// It looks at the outermost *Error in the chain, so a MALFORMED_DESCRIPTOR
// wrapping a NOT_FOUND parent failure reports MALFORMED_DESCRIPTOR.
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

// IsRequestError reports whether err was caused by bad caller input rather
// than by the repository.
func IsRequestError(err error) bool {
	switch GetCode(err) {
	case ErrCodeMalformedCoordinate, ErrCodeInvalidInput, ErrCodeInvalidConfig:
		return true
	}
	return false
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message (and cause) without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
