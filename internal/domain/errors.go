// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Every specific validation error below wraps it.
	ErrValidation = errors.New("validation failed")

	ErrEmptyName         = fmt.Errorf("%w: name cannot be empty", ErrValidation)
	ErrNameTooLong       = fmt.Errorf("%w: name must be at most %d characters long", ErrValidation, MaxNameLength)
	ErrNegativePrice     = fmt.Errorf("%w: price cannot be negative", ErrValidation)
	ErrPriceTooLarge     = fmt.Errorf("%w: price exceeds the supported range", ErrValidation)
	ErrMissingStoreID    = fmt.Errorf("%w: store_id is required", ErrValidation)
	ErrEmptyUsername     = fmt.Errorf("%w: username cannot be empty", ErrValidation)
	ErrUsernameTooLong   = fmt.Errorf("%w: username must be at most %d characters long", ErrValidation, MaxNameLength)
	ErrEmptyPassword     = fmt.Errorf("%w: password cannot be empty", ErrValidation)
	ErrPasswordTooLong   = fmt.Errorf("%w: password must be at most %d bytes long", ErrValidation, MaxPasswordBytes)
)

// MaxNameLength matches the VARCHAR(80) columns for names and usernames.
const MaxNameLength = 80

// validateName applies the shared name rules for stores, items and tags.
func validateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if len([]rune(name)) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// ValidationError describes a single invalid field and wraps the sentinel
// error it represents.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
