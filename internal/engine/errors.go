package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

// ErrGeneratorApply is returned when a generator's Apply fails.
var ErrGeneratorApply = errors.New("generator apply failed")

// ApplyError wraps a generator failure with the target it was applied to.
// Files the generator wrote before failing are left in place.
type ApplyError struct {
	Module      string
	Application string
	SubFolder   string
	Err         error
}

func (e *ApplyError) Error() string {
	if e.SubFolder != "" {
		return fmt.Sprintf("apply %s to %s/%s: %v", e.Module, e.Application, e.SubFolder, e.Err)
	}
	return fmt.Sprintf("apply %s to %s: %v", e.Module, e.Application, e.Err)
}

// Unwrap exposes both ErrGeneratorApply and the generator's own error.
func (e *ApplyError) Unwrap() []error {
	return []error{ErrGeneratorApply, e.Err}
}

// NewApplyError creates a new ApplyError.
func NewApplyError(module, application, subFolder string, err error) *ApplyError {
	return &ApplyError{
		Module:      module,
		Application: application,
		SubFolder:   subFolder,
		Err:         err,
	}
}

// PostApplyFailure records a generator whose PostApply failed. These never
// abort an apply.
type PostApplyFailure struct {
	Module    string
	SubFolder string
	Err       error
}

func (f PostApplyFailure) String() string {
	if f.SubFolder != "" {
		return fmt.Sprintf("%s (%s): %v", f.Module, f.SubFolder, f.Err)
	}
	return fmt.Sprintf("%s: %v", f.Module, f.Err)
}
