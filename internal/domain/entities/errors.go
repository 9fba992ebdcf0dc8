package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for malformed or unknown identifiers.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when editing a deleted entity or relationship.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned when another writer advanced the master revision first.
	ErrConflict = errors.New("concurrent modification")
	// ErrValidation is returned for payloads that fail validation.
	ErrValidation = errors.New("validation failed")
)

// ValidationError describes one invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
