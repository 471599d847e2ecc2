// Package actions routes named operations with parameter maps to typed
// handlers executing against the store or external integrations.
package actions

import (
	"errors"
	"fmt"
)

// ValidationError indicates a missing or malformed parameter, or an
// unknown action name. Surfaced to clients as a 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError indicates a referenced record does not exist
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// UpstreamError indicates a third-party API responded with a
// non-success status. It carries the upstream status and body so
// clients can diagnose the failure.
type UpstreamError struct {
	Service string
	Status  int
	Body    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Service, e.Status, e.Body)
}

// IsClientError reports whether err belongs to the client-error class
// (validation, not-found or upstream failure) rather than an internal
// server error.
func IsClientError(err error) bool {
	var ve *ValidationError
	var nfe *NotFoundError
	var ue *UpstreamError
	return errors.As(err, &ve) || errors.As(err, &nfe) || errors.As(err, &ue)
}
