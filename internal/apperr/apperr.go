// Package apperr defines the error codes surfaced by the store, version and
// service layers.
package apperr

import (
	"errors"
	"fmt"
)

// Code identifies the kind of failure.
type Code string

const (
	ErrInternal           Code = "INTERNAL_ERROR"
	ErrInvalid            Code = "INVALID_INPUT"
	ErrValidation         Code = "VALIDATION_ERROR"
	ErrNotFound           Code = "NOT_FOUND"
	ErrDuplicateKey       Code = "DUPLICATE_KEY"
	ErrStorageUnavailable Code = "STORAGE_UNAVAILABLE"
)

// Error carries a code, a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a code.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Is reports whether any error in err's chain is an *Error with the given code.
func Is(err error, code Code) bool {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return false
	}
	if appErr.Code == code {
		return true
	}
	// A coded error may wrap another coded error.
	return appErr.Err != nil && Is(appErr.Err, code)
}

// CodeOf returns the code of the first *Error in err's chain, or ErrInternal.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}
