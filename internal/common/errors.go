package common

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationAbsent means no principal could be resolved for the request.
	ErrAuthenticationAbsent = errors.New("authentication required")
	// ErrAuthorizationDenied means the principal lacks access to the requested scope.
	ErrAuthorizationDenied = errors.New("not authorized")
	ErrValidation          = errors.New("validation failed")
	// ErrStaleReference means a hint, invite or record no longer validates.
	ErrStaleReference = errors.New("reference is no longer valid")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("already exists")
)

// ValidationError names the offending field of a rejected input.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// PartialFailureError reports a backend failure after part of an action already took effect.
// Message is shown to the caller as is.
type PartialFailureError struct {
	Message string
	Err     error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}
