// Package errors provides the error taxonomy of ripe-addrlist.
//
// Every failure surfaced by the pipeline carries an ErrorCode, so callers can tell
// recoverable per-entry problems from fatal run-level failures without inspecting
// message text.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeParse indicates a registry entry that could not be parsed. It is recoverable:
	// the entry is dropped and processing continues.
	ErrCodeParse ErrorCode = "PARSE_ERROR"

	// ErrCodeConnection indicates the remote device could not be reached or the session
	// could not be established.
	ErrCodeConnection ErrorCode = "CONNECTION_ERROR"

	// ErrCodeRemoteCommand indicates the remote device rejected a command.
	ErrCodeRemoteCommand ErrorCode = "REMOTE_COMMAND_ERROR"

	// ErrCodeRegistry indicates the resource registry query failed.
	ErrCodeRegistry ErrorCode = "REGISTRY_ERROR"

	// ErrCodeConfig indicates a configuration-related error.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeValidation indicates a validation error.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error represents a domain-specific error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Recoverable reports whether processing may continue after this error.
func (e *Error) Recoverable() bool {
	return e.Code == ErrCodeParse
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or ErrCodeInternal
// for foreign errors. It returns an empty code for a nil error.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// IsRecoverable reports whether err is a per-entry error that must not abort a run.
func IsRecoverable(err error) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Recoverable()
	}
	return false
}

// NewParseError creates a new per-entry parse error.
func NewParseError(message string, cause error) *Error {
	return Wrap(ErrCodeParse, message, cause)
}

// NewConnectionError creates a new remote connection error.
func NewConnectionError(message string, cause error) *Error {
	return Wrap(ErrCodeConnection, message, cause)
}

// NewRemoteCommandError creates a new remote command error.
func NewRemoteCommandError(message string, cause error) *Error {
	return Wrap(ErrCodeRemoteCommand, message, cause)
}

// NewRegistryError creates a new registry query error.
func NewRegistryError(message string, cause error) *Error {
	return Wrap(ErrCodeRegistry, message, cause)
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, cause error) *Error {
	return Wrap(ErrCodeValidation, message, cause)
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCodeInternal, message, cause)
}

// HasCode reports whether any *Error in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
