package validation

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/artpar/stackgen/internal/core/catalog"
	"github.com/artpar/stackgen/internal/core/props"
)

// =============================================================================
// Property Validation Functions
// =============================================================================

// Validate checks every supplied property that has a definition in defs.
// Keys without a definition pass through unchecked, as do nil values.
// Object properties are checked recursively against their nested definitions.
//
// Enum values are checked against inline Values when present, otherwise
// against the enum catalog entry named by EnumRef (or, for type "enum"
// without a reference, the property's dotted path).
//
// Example:
//
//	p := props.New().SetPath("runtime.name", "quarkus")
//	if err := Validate(def.Props, enums, p); err != nil {
//	    var ve *ValidationError
//	    errors.As(err, &ve) // ve.Property == "runtime.name"
//	}
func Validate(defs []catalog.PropertyDef, enums catalog.Enums, p *props.Properties) error {
	return validateLevel(defs, enums, p, "")
}

func validateLevel(defs []catalog.PropertyDef, enums catalog.Enums, p *props.Properties, prefix string) error {
	for _, key := range p.Keys() {
		def, ok := catalog.FindPropDef(defs, key)
		if !ok {
			continue
		}
		v, _ := p.Get(key)
		if err := validateValue(def, enums, v, prefix+key); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(def catalog.PropertyDef, enums catalog.Enums, v any, path string) error {
	if v == nil {
		return nil
	}

	switch def.Type {
	case catalog.TypeString:
		if _, ok := v.(string); !ok {
			return NewValidationError(path, v, "string", ErrInvalidType)
		}
	case catalog.TypeBoolean:
		if _, ok := v.(bool); !ok {
			return NewValidationError(path, v, "boolean", ErrInvalidType)
		}
	case catalog.TypeInteger:
		if !isInteger(v) {
			return NewValidationError(path, v, "integer", ErrInvalidType)
		}
	case catalog.TypeNumber:
		if !isNumber(v) {
			return NewValidationError(path, v, "number", ErrInvalidType)
		}
	case catalog.TypeObject:
		nested, ok := v.(*props.Properties)
		if !ok {
			return NewValidationError(path, v, "object", ErrInvalidType)
		}
		return validateLevel(def.Props, enums, nested, path+".")
	}

	if def.IsEnum() {
		return validateEnum(def, enums, v, path)
	}
	return nil
}

func validateEnum(def catalog.PropertyDef, enums catalog.Enums, v any, path string) error {
	s, ok := v.(string)
	if !ok {
		return NewValidationError(path, v, "enumeration value", ErrInvalidType)
	}

	allowed := def.Values
	if len(allowed) == 0 {
		ref := def.EnumRef
		if ref == "" {
			ref = path
		}
		if _, ok := enums.Lookup(ref); !ok {
			return NewValidationError(path, v, fmt.Sprintf("a value of enumeration %q", ref), ErrUnknownEnum)
		}
		allowed = enums.IDs(ref)
	}

	if !slices.Contains(allowed, s) {
		return NewValidationError(path, v, "one of "+strings.Join(allowed, ", "), ErrNotInEnum)
	}
	return nil
}

func isInteger(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return n == math.Trunc(n)
	}
	return false
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}
