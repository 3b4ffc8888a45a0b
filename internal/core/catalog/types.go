package catalog

import (
	"slices"

	"github.com/artpar/stackgen/internal/core/props"
)

// =============================================================================
// Property Types
// =============================================================================

// Property types understood by the validator.
const (
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeObject  = "object"
	TypeEnum    = "enum"
)

// SupportCategory is dropped from category aggregation when other
// categories are present.
const SupportCategory = "support"

// PropertyDef declares one property a generator accepts.
type PropertyDef struct {
	ID          string        `yaml:"id" json:"id"`
	Name        string        `yaml:"name,omitempty" json:"name,omitempty"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Type        string        `yaml:"type,omitempty" json:"type,omitempty"`
	Required    bool          `yaml:"required,omitempty" json:"required,omitempty"`
	Shared      bool          `yaml:"shared,omitempty" json:"shared,omitempty"`
	Default     any           `yaml:"default,omitempty" json:"default,omitempty"`
	EnumRef     string        `yaml:"enumRef,omitempty" json:"enumRef,omitempty"`
	Values      []string      `yaml:"values,omitempty" json:"values,omitempty"`
	Props       []PropertyDef `yaml:"props,omitempty" json:"props,omitempty"`
}

// IsEnum reports whether the property is constrained to a value list.
func (d PropertyDef) IsEnum() bool {
	return d.Type == TypeEnum || d.EnumRef != "" || len(d.Values) > 0
}

// FindPropDef returns the definition with the given id.
func FindPropDef(defs []PropertyDef, id string) (PropertyDef, bool) {
	for _, d := range defs {
		if d.ID == id {
			return d, true
		}
	}
	return PropertyDef{}, false
}

// =============================================================================
// Generator Metadata
// =============================================================================

// Metadata carries presentation and behavior hints for a generator.
type Metadata struct {
	Category  string            `yaml:"category,omitempty" json:"category,omitempty"`
	Icon      string            `yaml:"icon,omitempty" json:"icon,omitempty"`
	Transform []string          `yaml:"transform,omitempty" json:"transform,omitempty"`
	Extra     *props.Properties `yaml:"extra,omitempty" json:"extra,omitempty"`
}

// ModuleInfoDef is the catalog entry of one generator.
type ModuleInfoDef struct {
	Module      string        `yaml:"-" json:"module"`
	Type        string        `yaml:"type,omitempty" json:"type,omitempty"`
	Name        string        `yaml:"name,omitempty" json:"name,omitempty"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Props       []PropertyDef `yaml:"props,omitempty" json:"props,omitempty"`
	Metadata    Metadata      `yaml:"metadata,omitempty" json:"metadata"`
}

// Category returns the generator's category, or "".
func (d *ModuleInfoDef) Category() string {
	if d == nil {
		return ""
	}
	return d.Metadata.Category
}

// PropDef returns the top-level property definition with the given id.
func (d *ModuleInfoDef) PropDef(id string) (PropertyDef, bool) {
	if d == nil {
		return PropertyDef{}, false
	}
	return FindPropDef(d.Props, id)
}

// Declares reports whether the generator declares a top-level property id.
func (d *ModuleInfoDef) Declares(id string) bool {
	_, ok := d.PropDef(id)
	return ok
}

// IsShared reports whether id is declared as a shared property.
func (d *ModuleInfoDef) IsShared(id string) bool {
	pd, ok := d.PropDef(id)
	return ok && pd.Shared
}

// =============================================================================
// Enumerations
// =============================================================================

// Enumeration is one allowed value of an enum.
type Enumeration struct {
	ID          string            `yaml:"id" json:"id"`
	Name        string            `yaml:"name,omitempty" json:"name,omitempty"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Icon        string            `yaml:"icon,omitempty" json:"icon,omitempty"`
	Metadata    *props.Properties `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Enums maps an enum id (e.g. "runtime.name") to its ordered values.
type Enums map[string][]Enumeration

// Lookup returns the values of an enum.
func (e Enums) Lookup(id string) ([]Enumeration, bool) {
	vals, ok := e[id]
	return vals, ok
}

// IDs returns the value ids of an enum in catalog order.
func (e Enums) IDs(id string) []string {
	vals := e[id]
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, v.ID)
	}
	return out
}

// Contains reports whether value is one of the enum's ids.
func (e Enums) Contains(id, value string) bool {
	return slices.Contains(e.IDs(id), value)
}
