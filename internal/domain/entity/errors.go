package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")

	// ErrBackendUnavailable indicates that a storage backend could not be reached.
	// Callers use this to distinguish an unreachable backend from a plain miss.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrCorruptPayload indicates that a stored payload could not be deserialized.
	// The corrupt entry is purged by the reader; callers treat this as a miss.
	ErrCorruptPayload = errors.New("corrupt payload")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
