package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy recovered at the HTTP boundary. Handlers convert these
// into redirect-with-message or inline form errors; none escapes as a
// raw 500.
var (
	// ErrUnauthorized: request carries no usable session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidSession: session exists but no tenant could be resolved.
	ErrInvalidSession = errors.New("invalid session")
	// ErrNotFound covers both absent entities and entities owned by a
	// different tenant. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials: stored hash does not verify.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateEntity: uniqueness constraint violation.
	ErrDuplicateEntity = errors.New("duplicate entity")
)

// ValidationError carries field-level registration errors.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
