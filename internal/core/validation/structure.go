package validation

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/artpar/stackgen/internal/core/descriptor"
	"github.com/artpar/stackgen/internal/core/props"
)

// =============================================================================
// Structural Validation Functions
// =============================================================================

// ValidateAddGenerator checks that a generator with properties p can be added
// to d without breaking its invariants. p carries the reserved application and
// (optional) subFolderName keys.
//
// Two rules apply to an existing application:
//   - the part being extended must not already record a different runtime.name
//   - the new part must agree with the application's existing parts on being
//     in the root folder or in a subfolder
func ValidateAddGenerator(d *descriptor.Deployment, p *props.Properties) error {
	name := p.String(descriptor.KeyApplication)
	app := d.FindApplication(name)
	if app == nil {
		return nil
	}

	sub := descriptor.SubFolder(p.String(descriptor.KeySubFolderName))
	if part := app.FindPart(sub); part != nil {
		have := part.RuntimeName()
		want := p.String(descriptor.KeyRuntimeName)
		if have != "" && want != "" && have != want {
			return NewConflictError(name,
				fmt.Sprintf("trying to add generator with incompatible runtime (is %q, should be %q)", want, have),
				ErrRuntimeConflict)
		}
	}

	if len(app.Parts) > 0 && app.Parts[0].InRoot() != (sub == nil) {
		return NewConflictError(name, ErrFolderModeMix.Error(), ErrFolderModeMix)
	}
	return nil
}

// NormalizeSubFolder returns the canonical form of a sub folder name, so that
// "backend", "backend/" and "./backend" select the same part. An empty name
// is the application root. Names that resolve to the root itself, are
// absolute or leave the target directory are rejected.
func NormalizeSubFolder(sub string) (string, error) {
	if sub == "" {
		return "", nil
	}
	invalid := func() error {
		return NewValidationError(descriptor.KeySubFolderName, sub, "a relative path inside the target", ErrInvalidFolder)
	}
	if filepath.IsAbs(sub) || path.IsAbs(filepath.ToSlash(sub)) {
		return "", invalid()
	}
	clean := path.Clean(filepath.ToSlash(sub))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", invalid()
	}
	return clean, nil
}
