// Package errors provides structured error types for the layout engine.
//
// Every failure the engine can surface belongs to one of a small set of
// machine-readable codes, so callers (CLI, HTTP service, embedding tools) can
// react without matching on message text.
//
// # Error Codes
//
// The layout core distinguishes three situations:
//   - CONFIGURATION: contradictory or out-of-range options, detected before
//     any layout work starts. The whole run is aborted.
//   - INTERNAL_CONSISTENCY: an invariant between two phases was violated.
//     This always points at a defect in an earlier phase and is never patched
//     up silently.
//   - Reaching an iteration budget is not an error at all; see
//     [ErrConvergenceLimit].
//
// The remaining codes cover input handling (INVALID_*), cancellation and the
// outer surfaces (CLI, HTTP).
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfiguration, "spacing.nodeNode must be >= 0, got %v", v)
//	if errors.Is(err, errors.ErrCodeConfiguration) {
//	    // report to the caller, do not retry
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidGraph, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Layout errors
	ErrCodeConfiguration       Code = "CONFIGURATION"
	ErrCodeInternalConsistency Code = "INTERNAL_CONSISTENCY"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidGraph  Code = "INVALID_GRAPH"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Execution errors
	ErrCodeCanceled    Code = "CANCELED"
	ErrCodeUnsupported Code = "UNSUPPORTED"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
)

// ErrConvergenceLimit marks a heuristic that stopped because its iteration
// budget ran out. It is reported through statistics and logs, never returned
// as the error of a layout run.
var ErrConvergenceLimit = errors.New("convergence limit reached")

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

// Configuration is shorthand for New(ErrCodeConfiguration, ...).
func Configuration(format string, args ...any) *Error {
	return New(ErrCodeConfiguration, format, args...)
}

// Inconsistent is shorthand for New(ErrCodeInternalConsistency, ...).
func Inconsistent(format string, args ...any) *Error {
	return New(ErrCodeInternalConsistency, format, args...)
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

// Fatal reports whether err must abort a layout run without any attempt to
// salvage partial output.
func Fatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeConfiguration, ErrCodeInternalConsistency, ErrCodeInvalidGraph:
		return true
	}
	return false
}
