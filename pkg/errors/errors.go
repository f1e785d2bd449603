// Package errors provides structured error types for the topdag tool.
//
// Error codes give the CLI and the HTTP API a machine-readable way to
// classify failures without string matching:
//   - INVALID_*: malformed input (XML, archives, trees)
//   - NOT_FOUND_*: missing files
//   - INVARIANT_VIOLATION: a compression invariant broke; always a bug
//   - IO_ERROR / INTERNAL_ERROR: everything else
//
// Expected navigation outcomes (no parent, no next sibling, leaf reached)
// are deliberately not errors anywhere in this module; the navigator
// reports them as booleans.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidXML, "unbalanced end tag </%s>", name)
//	if errors.Is(err, errors.ErrCodeInvalidXML) {
//	    // reject the input
//	}
//
//	// Wrap underlying causes
//	err := errors.Wrap(errors.ErrCodeIO, cause, "write archive %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different failure categories.
const (
	// Malformed input
	ErrCodeInvalidXML     Code = "INVALID_XML"
	ErrCodeInvalidTree    Code = "INVALID_TREE"
	ErrCodeInvalidArchive Code = "INVALID_ARCHIVE"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"

	// Missing resources
	ErrCodeFileNotFound Code = "NOT_FOUND_FILE"

	// Broken internal invariants; these indicate bugs, not bad input
	ErrCodeInvariant Code = "INVARIANT_VIOLATION"

	// Environment failures
	ErrCodeIO       Code = "IO_ERROR"
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

// Is reports whether the first *Error in err's chain carries the given
// error code. Codes of *Error values wrapped deeper are not compared.
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
