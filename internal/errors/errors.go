// Package errors provides standardized domain errors with codes for leaflog.
//
// Usage:
//
//	// In services - return typed errors
//	if form.Title == "" {
//	    return errors.Validation("title is required")
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrNotReady) {
//	    // stores are still hydrating
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound   Code = "NOT_FOUND"
	CodeValidation Code = "VALIDATION"
	CodeNotReady   Code = "NOT_READY"
	CodeCorrupt    Code = "CORRUPT"
	CodeInternal   Code = "INTERNAL"
)

// Error is a domain error with a code, message, and optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match any error of the same code, so sentinel
// comparisons work against wrapped instances.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// Sentinel errors for Is comparisons.
var (
	ErrNotFound = &Error{Code: CodeNotFound, Message: "resource not found"}
	ErrNotReady = &Error{Code: CodeNotReady, Message: "store has not hydrated"}
	ErrCorrupt  = &Error{Code: CodeCorrupt, Message: "persisted data is corrupt"}
)

// NotFound creates a not-found error with a custom message.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error with a custom message.
func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Corrupt wraps a deserialization failure detected at the load boundary.
// These fail fast and surface to the caller; they are never swallowed.
func Corrupt(msg string, err error) *Error {
	return &Error{Code: CodeCorrupt, Message: msg, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(msg string, err error) *Error {
	return &Error{Code: CodeInternal, Message: msg, Err: err}
}
