package generators

import (
	"context"

	"github.com/artpar/stackgen/internal/core/descriptor"
	"github.com/artpar/stackgen/internal/core/naming"
	"github.com/artpar/stackgen/internal/core/props"
	"github.com/artpar/stackgen/internal/core/resource"
	"github.com/artpar/stackgen/internal/generator"
)

// Derived property keys.
const (
	KeyServiceName = "serviceName"
	KeyRouteName   = "routeName"
)

// =============================================================================
// Simple
// =============================================================================

// Simple copies the generator's catalog files into the working directory and
// adds its rendered resources.yaml to the resource tree.
type Simple struct {
	generator.Base
}

// NewSimple is the factory of catalog-only generators.
func NewSimple(info *generator.Info, gctx generator.Context) generator.Generator {
	return &Simple{Base: generator.NewBase(info, gctx)}
}

// Apply copies files and adds resources.
func (g *Simple) Apply(_ context.Context, res *resource.Resources, p, _ *props.Properties) (*resource.Resources, error) {
	rp := renderProps(p)
	if _, err := g.CopyFiles(rp); err != nil {
		return nil, err
	}
	fragment, err := g.LoadResources(rp)
	if err != nil {
		return nil, err
	}
	return res.Add(fragment), nil
}

// renderProps returns a copy of p with the service and route names filled in
// from the application and subfolder when missing.
func renderProps(p *props.Properties) *props.Properties {
	rp := p.Clone()
	name := naming.ServiceName(p.String(descriptor.KeyApplication), p.String(descriptor.KeySubFolderName))
	if rp.String(KeyServiceName) == "" {
		rp.Set(KeyServiceName, name)
	}
	if rp.String(KeyRouteName) == "" {
		rp.Set(KeyRouteName, rp.String(KeyServiceName))
	}
	return rp
}

// =============================================================================
// Layered
// =============================================================================

// layered applies its base generators, in order, before doing what Simple
// does.
type layered struct {
	Simple
	bases []string
}

// Layered returns a factory for generators that build on others, e.g. a REST
// endpoint on top of its runtime.
func Layered(bases ...string) generator.Factory {
	return func(info *generator.Info, gctx generator.Context) generator.Generator {
		return &layered{Simple: Simple{Base: generator.NewBase(info, gctx)}, bases: bases}
	}
}

func (g *layered) Apply(ctx context.Context, res *resource.Resources, p, extra *props.Properties) (*resource.Resources, error) {
	var err error
	for _, base := range g.bases {
		if res, err = g.ApplyGenerator(ctx, base, res, p, extra); err != nil {
			return nil, err
		}
	}
	return g.Simple.Apply(ctx, res, p, extra)
}
