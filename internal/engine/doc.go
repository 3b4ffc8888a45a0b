// Package engine applies generators to a target directory and folds their
// results into the persisted deployment descriptor.
//
// A Composer owns one frozen catalog snapshot and a generator registry. Each
// Apply call loads the descriptor and resource tree, validates the request,
// runs the generator, records the generator in the descriptor, notifies every
// generator of the first application through PostApply, and writes the state
// back. Nothing is persisted when validation or the generator fails.
//
// # Functions
//
//   - New: Create a Composer from a Config
//   - Composer.Apply: Apply one generator to an application part
//   - Composer.ApplyDeployment: Re-apply every generator recorded in a descriptor
//
// # Usage
//
//	c, err := engine.New(engine.Config{
//		Registry:  generators.DefaultRegistry(source, logger),
//		Workspace: store.NewFileStore(),
//		Logger:    logger,
//	})
//	result, err := c.Apply(ctx, engine.Request{
//		TargetDir:   "/tmp/app",
//		Module:      "capability-rest",
//		Application: "myapp",
//		SubFolder:   "backend",
//		Props:       props.New().SetPath("runtime.name", "quarkus"),
//	})
package engine
