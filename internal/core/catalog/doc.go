// Package catalog holds the read-only metadata describing generators and the
// enumerations their properties may reference.
//
// This is part of the Functional Core: parsing works on bytes, and the
// Snapshot type is an immutable view produced once by the generator registry
// and handed to the composition engine.
//
// # Functions
//
//   - ParseInfoDef: parse a generator's info.yaml
//   - ParseEnums: parse the enums.yaml catalog
//   - NewSnapshot: freeze loaded definitions for the engine
//
// # Usage
//
//	def, err := catalog.ParseInfoDef("rest-quarkus", data)
//	if err != nil {
//	    return err
//	}
//	if pd, ok := def.PropDef("runtime"); ok && pd.Shared {
//	    // runtime is recorded on the part, not the generator
//	}
package catalog
