package generator

import (
	"context"
	"io/fs"
	"log/slog"

	"github.com/artpar/stackgen/internal/core/catalog"
	"github.com/artpar/stackgen/internal/core/descriptor"
	"github.com/artpar/stackgen/internal/core/props"
	"github.com/artpar/stackgen/internal/core/resource"
)

// =============================================================================
// Generator Contract
// =============================================================================

// Generator is one reusable building block.
type Generator interface {
	// Apply updates res for props and may write files under the working
	// directory. Apply may put a "shared" bag into extra to promote values
	// onto the part.
	Apply(ctx context.Context, res *resource.Resources, p *props.Properties, extra *props.Properties) (*resource.Resources, error)

	// PostApply runs after every successful apply of any generator, with the
	// updated deployment.
	PostApply(ctx context.Context, res *resource.Resources, p *props.Properties, d *descriptor.Deployment) (*resource.Resources, error)
}

// Context binds a generator instance to the directories it works in.
type Context struct {
	// TargetDir is the working directory: the target root, or root/subfolder.
	TargetDir string

	// RootDir is the target root holding the deployment descriptor.
	RootDir string

	// Registry resolves other generators for delegation.
	Registry *Registry

	// Settings carries host configuration generators may read (image names,
	// domains). Never persisted.
	Settings *props.Properties

	Logger *slog.Logger
}

// Factory creates a generator bound to a context.
type Factory func(info *Info, gctx Context) Generator

// Source provides catalog data.
type Source interface {
	// ReadInfo returns the info.yaml of a generator, or an error wrapping
	// fs.ErrNotExist.
	ReadInfo(name string) ([]byte, error)

	// ReadEnums returns the enum catalog, or an error wrapping fs.ErrNotExist.
	ReadEnums() ([]byte, error)

	// Files returns the directory tree of catalog entry name (files/,
	// resources.yaml), or an error wrapping fs.ErrNotExist.
	Files(name string) (fs.FS, error)
}

// =============================================================================
// Registry Entries
// =============================================================================

// CapabilityPrefix marks the user-facing generators.
const CapabilityPrefix = "capability-"

// Info is a registry entry.
type Info struct {
	Name     string
	factory  Factory
	registry *Registry
}

// InfoDef returns the catalog entry of the generator.
func (i *Info) InfoDef() (*catalog.ModuleInfoDef, error) {
	return i.registry.InfoDef(i.Name)
}

// IsCapability reports whether the name carries the capability prefix.
func (i *Info) IsCapability() bool {
	return len(i.Name) > len(CapabilityPrefix) && i.Name[:len(CapabilityPrefix)] == CapabilityPrefix
}

// ShortName returns the name without the capability prefix.
func (i *Info) ShortName() string {
	if i.IsCapability() {
		return i.Name[len(CapabilityPrefix):]
	}
	return i.Name
}
