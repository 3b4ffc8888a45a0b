// Package validation provides the checks that run before a generator is
// applied.
//
// This package contains functional core logic only. All functions are pure
// (no I/O, no side effects) and return typed errors so callers can tell a bad
// property value apart from a structural conflict.
//
// # Functions
//
//   - Validate: check property values against their definitions (type, enum)
//   - ValidateAddGenerator: check that applying a generator keeps the
//     deployment consistent (runtime per part, folder mode per application)
//
// # Usage
//
// The composition engine runs both checks, in this order, before any
// generator code executes:
//
//	if err := validation.Validate(def.Props, snap.Enums(), p); err != nil {
//	    return err // *ValidationError
//	}
//	if err := validation.ValidateAddGenerator(deployment, p); err != nil {
//	    return err // *ConflictError
//	}
package validation
