package catalog

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrUnknownModule is returned for a generator name nobody registered.
	ErrUnknownModule = errors.New("generator not registered")

	// ErrMissingCatalog is returned for a registered generator without a catalog entry.
	ErrMissingCatalog = errors.New("generator has no catalog entry")

	// ErrInvalidInfoDef is returned when info.yaml cannot be parsed.
	ErrInvalidInfoDef = errors.New("invalid generator info")

	// ErrInvalidEnums is returned when enums.yaml cannot be parsed.
	ErrInvalidEnums = errors.New("invalid enum catalog")
)

// LookupError identifies the generator a catalog lookup failed for.
type LookupError struct {
	Name    string
	Message string
	Err     error
}

func (e *LookupError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("generator %q: %s", e.Name, e.Message)
	}
	return fmt.Sprintf("generator %q: %v", e.Name, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// NewLookupError creates a new LookupError.
func NewLookupError(name, message string, err error) *LookupError {
	return &LookupError{
		Name:    name,
		Message: message,
		Err:     err,
	}
}
