// Package descriptor models the persisted composition state of a target
// directory: a Deployment holds Applications, an Application holds Parts and
// a Part records the Generators applied to it, in application order.
//
// This is part of the Functional Core. The fold functions here mutate the
// in-memory model only; persistence lives in internal/shell/store.
//
// # Functions
//
//   - New: empty deployment
//   - FindApplication, FindPart: lookups by name and subfolder
//   - NewGeneratorState: partition applied properties into shared and own
//   - AddGenerator: find-or-create application and part, append, merge shared
//   - OverallCategory: derive a part's category from its generators
//
// # Invariants
//
//   - Within an application all parts are either in the root (nil subfolder)
//     or all in subfolders.
//   - A part's Generators list is append-only.
//   - Part.Extra["category"] is derived and recomputed after every addition.
package descriptor
