// Package store persists composition state: resource trees and deployment
// descriptors as files in the target directory, and an optional SQLite
// journal of every apply.
package store

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrNotFound is returned when an entry is not found.
	ErrNotFound = errors.New("entry not found")

	// ErrReadFailed is returned when a state file cannot be read.
	ErrReadFailed = errors.New("read failed")

	// ErrWriteFailed is returned when a state file cannot be written.
	ErrWriteFailed = errors.New("write failed")

	// ErrInvalidData is returned when serialization/deserialization fails.
	ErrInvalidData = errors.New("invalid data format")

	// ErrConnectionFailed is returned when database connection fails.
	ErrConnectionFailed = errors.New("database connection failed")

	// ErrMigrationFailed is returned when database migration fails.
	ErrMigrationFailed = errors.New("database migration failed")
)

// StoreError wraps errors with additional context.
type StoreError struct {
	Op      string // Operation that failed (e.g., "ReadDeployment")
	Entity  string // Entity type (e.g., "resources", "deployment")
	ID      string // File path or entry ID if applicable
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %s", e.Op, e.Entity, e.ID, e.Message)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Entity, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, entity, id, message string, err error) *StoreError {
	return &StoreError{
		Op:      op,
		Entity:  entity,
		ID:      id,
		Message: message,
		Err:     err,
	}
}
