// Package generators holds the built-in generator catalog and the generator
// implementations that need more than copying files and rendering resources.
//
// # Functions
//
//   - Catalog: The embedded catalog tree (info.yaml, files/, resources.yaml)
//   - DefaultRegistry: Registry with every built-in generator
//   - NewSimple: Factory for catalog-only generators
//   - Layered: Factory for generators applying other generators first
//
// # Usage
//
//	reg := generators.DefaultRegistry(catalogfs.New(generators.Catalog()), logger)
//	snap, err := reg.Snapshot()
package generators
