// Package props provides Properties, the ordered string-keyed bag used for
// generator properties, shared part state and free-form extras.
//
// Keys keep their insertion order through YAML and JSON round trips so that
// persisted descriptors stay stable and diffable. Nested maps are stored as
// *Properties, lists as []any.
//
// # Functions
//
//   - New, FromMap: construct a bag
//   - Get, Set, Delete, Keys, Len: flat access
//   - GetPath, SetPath, String, Bool: dotted path access ("runtime.name")
//   - Merge, Clone, Filter, ToMap: combination and conversion
//
// # Usage
//
//	p := props.New().Set("application", "shop")
//	p.SetPath("runtime.name", "quarkus")
//	name := p.String("runtime.name") // "quarkus"
//
// All functions are pure. A nil *Properties reads as empty.
package props
