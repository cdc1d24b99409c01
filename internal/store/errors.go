package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// Entity-specific not found errors wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a store with the same name).
	ErrDuplicate = errors.New("entity already exists")

	// ErrConflict is returned when an operation is refused because of the
	// current state of related entities.
	ErrConflict = errors.New("conflicting state")

	// ErrInvalidEntity is returned when an entity fails validation or
	// references an entity that does not exist.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific "not found" errors

	ErrUserNotFound  = fmt.Errorf("%w: user", ErrNotFound)
	ErrStoreNotFound = fmt.Errorf("%w: store", ErrNotFound)
	ErrItemNotFound  = fmt.Errorf("%w: item", ErrNotFound)
	ErrTagNotFound   = fmt.Errorf("%w: tag", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrUsernameExists indicates that a user with the given username already exists.
	ErrUsernameExists = fmt.Errorf("%w: username", ErrDuplicate)

	// ErrStoreNameExists indicates that a store with the given name already exists.
	ErrStoreNameExists = fmt.Errorf("%w: store name", ErrDuplicate)

	// ErrTagInUse is returned when deleting a tag that is still associated with items.
	ErrTagInUse = fmt.Errorf("%w: tag is associated with items", ErrConflict)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "item", "tag")
	Operation string // The operation that failed (e.g., "create", "link")
	Message   string
	Err       error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
