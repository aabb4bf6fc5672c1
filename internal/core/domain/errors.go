package domain

import (
	"errors"
	"fmt"
)

// Kind sentinels, matched with errors.Is against any *Error of that kind
var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("resource not found")
	ErrConstraint    = errors.New("constraint violation")
	ErrAuthorization = errors.New("not authorized")
	ErrUnexpected    = errors.New("unexpected error")
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenRevoked       = errors.New("token revoked")
)

// FieldError describes one invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the error type returned by the service layer.
// Cause is kept for server-side logs and never sent to clients.
type Error struct {
	Kind    error
	Message string
	Fields  []FieldError
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Is reports kind equality so errors.Is(err, ErrNotFound) works
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Validation creates a validation error with optional field details
func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: ErrValidation, Message: message, Fields: fields}
}

// NotFound creates a not found error for a named resource
func NotFound(resource string) *Error {
	return &Error{Kind: ErrNotFound, Message: resource + " not found"}
}

// Constraint creates an invariant violation error
func Constraint(message string) *Error {
	return &Error{Kind: ErrConstraint, Message: message}
}

// Forbidden creates an authorization error
func Forbidden(message string) *Error {
	return &Error{Kind: ErrAuthorization, Message: message}
}

// Unexpected wraps a failure the caller cannot act on
func Unexpected(cause error) *Error {
	return &Error{Kind: ErrUnexpected, Message: "an unexpected error occurred", Cause: cause}
}

// AsError extracts the *Error from err's chain, or nil
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
