package generators

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/artpar/stackgen/internal/core/descriptor"
	"github.com/artpar/stackgen/internal/core/naming"
	"github.com/artpar/stackgen/internal/core/props"
	"github.com/artpar/stackgen/internal/core/resource"
	"github.com/artpar/stackgen/internal/generator"
)

// Capability property keys.
const (
	KeyRuntime      = "runtime"
	KeyDatabaseType = "databaseType"
	KeyGenerator    = "generator"
	KeyDeployment   = "deployment"
)

// defaultDatabaseName is the database created for every capability-database.
const defaultDatabaseName = "my_data"

// ErrMissingProperty is returned when a generator needs a property the caller
// did not supply.
var ErrMissingProperty = errors.New("missing required property")

func missing(key string) error {
	return fmt.Errorf("%w: %s", ErrMissingProperty, key)
}

// baseProps returns the application, subfolder and derived names every
// delegated generator receives.
func baseProps(p *props.Properties) *props.Properties {
	app := p.String(descriptor.KeyApplication)
	sub := p.String(descriptor.KeySubFolderName)
	name := naming.Name(app, sub)

	out := props.New().Set(descriptor.KeyApplication, app)
	if sub != "" {
		out.Set(descriptor.KeySubFolderName, sub)
	}
	return out.Set(KeyServiceName, name).Set(KeyRouteName, name)
}

// copyKeys copies the given keys from src into dst when present.
func copyKeys(dst, src *props.Properties, keys ...string) *props.Properties {
	for _, k := range keys {
		if v, ok := src.Get(k); ok {
			dst.Set(k, v)
		}
	}
	return dst
}

// =============================================================================
// capability-rest
// =============================================================================

// CapabilityRest applies the REST generator of the part's runtime.
type CapabilityRest struct {
	generator.Base
}

// NewCapabilityRest is the factory of capability-rest.
func NewCapabilityRest(info *generator.Info, gctx generator.Context) generator.Generator {
	return &CapabilityRest{Base: generator.NewBase(info, gctx)}
}

func (g *CapabilityRest) Apply(ctx context.Context, res *resource.Resources, p, extra *props.Properties) (*resource.Resources, error) {
	rt := p.String(descriptor.KeyRuntimeName)
	if rt == "" {
		return nil, missing(descriptor.KeyRuntimeName)
	}
	rp := copyKeys(baseProps(p), p, KeyRuntime)
	return g.ApplyGenerator(ctx, "rest-"+rt, res, rp, extra)
}

// =============================================================================
// capability-database
// =============================================================================

// CapabilityDatabase adds a database with its secret, and the CRUD endpoints
// of the part's runtime.
type CapabilityDatabase struct {
	generator.Base
}

// NewCapabilityDatabase is the factory of capability-database.
func NewCapabilityDatabase(info *generator.Info, gctx generator.Context) generator.Generator {
	return &CapabilityDatabase{Base: generator.NewBase(info, gctx)}
}

func (g *CapabilityDatabase) Apply(ctx context.Context, res *resource.Resources, p, extra *props.Properties) (*resource.Resources, error) {
	dbType := p.String(KeyDatabaseType)
	if dbType == "" {
		return nil, missing(KeyDatabaseType)
	}
	rt := p.String(descriptor.KeyRuntimeName)
	if rt == "" {
		return nil, missing(descriptor.KeyRuntimeName)
	}
	app := p.String(descriptor.KeyApplication)
	sub := p.String(descriptor.KeySubFolderName)
	secretName := naming.DatabaseSecretName(app, sub)
	dbService := naming.DatabaseServiceName(app, sub)

	dbProps := baseProps(p).
		Set(KeyServiceName, dbService).
		Set("databaseUri", dbService).
		Set("databaseName", defaultDatabaseName).
		Set("secretName", secretName)
	dbProps.Delete(KeyRouteName)

	rtProps := copyKeys(baseProps(p), p, KeyRuntime, KeyDatabaseType).
		Set("secretName", secretName)

	var err error
	for _, name := range []string{"database-secret", "database-" + dbType} {
		if res, err = g.ApplyGenerator(ctx, name, res, dbProps, extra); err != nil {
			return nil, err
		}
	}
	return g.ApplyGenerator(ctx, "database-crud-"+rt, res, rtProps, extra)
}

// =============================================================================
// capability-import
// =============================================================================

// importKeys are the properties capability-import hands to import-codebase.
var importKeys = []string{
	"gitImportUrl", "gitImportBranch", "builderImage", "builderLanguage",
	"overlayOnly", "keepGitFolder",
}

// CapabilityImport imports an existing code base.
type CapabilityImport struct {
	generator.Base
}

// NewCapabilityImport is the factory of capability-import.
func NewCapabilityImport(info *generator.Info, gctx generator.Context) generator.Generator {
	return &CapabilityImport{Base: generator.NewBase(info, gctx)}
}

func (g *CapabilityImport) Apply(ctx context.Context, res *resource.Resources, p, extra *props.Properties) (*resource.Resources, error) {
	ip := copyKeys(baseProps(p), p, importKeys...)
	return g.ApplyGenerator(ctx, "import-codebase", res, ip, extra)
}

// =============================================================================
// capability-component
// =============================================================================

// CapabilityComponent applies the generator named by its "generator"
// property, with the part's derived service and route names.
type CapabilityComponent struct {
	generator.Base
}

// NewCapabilityComponent is the factory of capability-component.
func NewCapabilityComponent(info *generator.Info, gctx generator.Context) generator.Generator {
	return &CapabilityComponent{Base: generator.NewBase(info, gctx)}
}

func (g *CapabilityComponent) Apply(ctx context.Context, res *resource.Resources, p, extra *props.Properties) (*resource.Resources, error) {
	name := p.String(KeyGenerator)
	if name == "" {
		return nil, missing(KeyGenerator)
	}
	if strings.HasPrefix(name, generator.CapabilityPrefix) {
		return nil, fmt.Errorf("capability-component cannot apply capability %q", name)
	}
	gp := p.Clone().Merge(baseProps(p))
	gp.Delete(KeyGenerator)
	return g.ApplyGenerator(ctx, name, res, gp, extra)
}

// =============================================================================
// capability-welcome
// =============================================================================

// CapabilityWelcome keeps the welcome application in step with the
// deployment. It does nothing when applied; every post-apply refreshes the
// welcome service.
type CapabilityWelcome struct {
	generator.Base
}

// NewCapabilityWelcome is the factory of capability-welcome.
func NewCapabilityWelcome(info *generator.Info, gctx generator.Context) generator.Generator {
	return &CapabilityWelcome{Base: generator.NewBase(info, gctx)}
}

func (g *CapabilityWelcome) Apply(_ context.Context, res *resource.Resources, _, _ *props.Properties) (*resource.Resources, error) {
	return res, nil
}

func (g *CapabilityWelcome) PostApply(ctx context.Context, res *resource.Resources, p *props.Properties, d *descriptor.Deployment) (*resource.Resources, error) {
	wp := baseProps(p).
		Set(KeyRouteName, "welcome").
		Set(KeyDeployment, d)
	return g.ApplyGenerator(ctx, "welcome-app", res, wp, props.New())
}
