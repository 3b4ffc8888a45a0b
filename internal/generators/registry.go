package generators

import (
	"embed"
	"io/fs"
	"log/slog"

	"github.com/artpar/stackgen/internal/generator"
)

//go:embed all:catalog
var catalogFS embed.FS

// Catalog returns the embedded generator catalog.
func Catalog() fs.FS {
	sub, err := fs.Sub(catalogFS, "catalog")
	if err != nil {
		panic(err)
	}
	return sub
}

// Runtimes supported by the built-in catalog.
var Runtimes = []string{"quarkus", "springboot", "wildfly", "nodejs"}

// DefaultRegistry returns a registry holding every built-in generator, reading
// catalog data from source.
func DefaultRegistry(source generator.Source, logger *slog.Logger) *generator.Registry {
	reg := generator.NewRegistry(source, NewSimple).WithLogger(logger)

	reg.Add("capability-component", NewCapabilityComponent).
		Add("capability-database", NewCapabilityDatabase).
		Add("capability-import", NewCapabilityImport).
		Add("capability-rest", NewCapabilityRest).
		Add("capability-welcome", NewCapabilityWelcome).
		Add("compose-support", NewComposeSupport).
		Add("database-mysql", nil).
		Add("database-postgresql", nil).
		Add("database-secret", nil).
		Add("import-codebase", NewImportCodebase).
		Add("language-java", nil).
		Add("language-nodejs", nil).
		Add("runtime-base-support", NewRuntimeBaseSupport).
		Add("welcome-app", NewWelcomeApp)

	for _, rt := range Runtimes {
		reg.Add("runtime-"+rt, Layered("runtime-base-support")).
			Add("rest-"+rt, Layered("runtime-"+rt)).
			Add("database-crud-"+rt, Layered("runtime-"+rt))
	}
	return reg
}
