package validation

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// Property errors
	ErrInvalidType = errors.New("invalid property type")
	ErrNotInEnum   = errors.New("value not allowed")
	ErrUnknownEnum = errors.New("unknown enumeration")

	// Structural errors
	ErrRuntimeConflict = errors.New("incompatible runtime")
	ErrFolderModeMix   = errors.New("can't mix generators in the root folder and in sub folders")
	ErrInvalidFolder   = errors.New("invalid sub folder")
)

// ValidationError reports a property whose value violates its definition.
type ValidationError struct {
	Property string // dotted path, e.g. "runtime.name"
	Value    any
	Expected string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("property %q: %v (got %v, expected %s)", e.Property, e.Err, e.Value, e.Expected)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError.
func NewValidationError(property string, value any, expected string, err error) *ValidationError {
	return &ValidationError{
		Property: property,
		Value:    value,
		Expected: expected,
		Err:      err,
	}
}

// ConflictError reports a change that would leave the deployment inconsistent.
type ConflictError struct {
	Application string
	Message     string
	Err         error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("application %q: %s", e.Application, e.Message)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// NewConflictError creates a new ConflictError.
func NewConflictError(application, message string, err error) *ConflictError {
	return &ConflictError{
		Application: application,
		Message:     message,
		Err:         err,
	}
}
