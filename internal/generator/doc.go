// Package generator defines the contract every generator implements and the
// registry that maps generator names to implementations and catalog entries.
//
// A generator is looked up by name, instantiated bound to a working
// directory, and asked to Apply itself to the resource tree of that
// directory. After every successful apply, each generator recorded in the
// deployment also gets a PostApply call to react to the new state.
//
// # Registry
//
// The registry keeps insertion order. Catalog entries (info.yaml per
// generator, one enums.yaml) are read from a Source lazily, once, and cached.
// Snapshot loads everything up front and returns an immutable
// catalog.Snapshot for the composition engine.
//
// # Usage
//
//	reg := generator.NewRegistry(source, generators.NewSimple).
//	    Add("rest-quarkus", nil).
//	    Add("capability-rest", generators.NewCapabilityRest)
//
//	snap, err := reg.Snapshot()
//	gen, err := reg.New("capability-rest", generator.Context{TargetDir: dir, RootDir: dir})
package generator
