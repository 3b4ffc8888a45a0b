package descriptor

import (
	"github.com/artpar/stackgen/internal/core/props"
)

// =============================================================================
// Reserved Property Keys
// =============================================================================

// Keys the engine adds to every generator's properties.
const (
	KeyModule        = "module"
	KeyApplication   = "application"
	KeySubFolderName = "subFolderName"
)

// Keys with a fixed meaning inside the free-form bags.
const (
	KeyCategory    = "category"
	KeyShared      = "shared"
	KeyRuntimeName = "runtime.name"
)

// =============================================================================
// Descriptor Types
// =============================================================================

// Deployment is the root of the persisted composition state.
type Deployment struct {
	Applications []*Application `json:"applications" yaml:"applications"`
}

// Application groups the parts that make up one named application.
type Application struct {
	Application string            `json:"application" yaml:"application"`
	Parts       []*Part           `json:"parts" yaml:"parts"`
	Extra       *props.Properties `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Part is one deployable unit of an application, located in the application
// root when SubFolderName is nil.
type Part struct {
	SubFolderName *string           `json:"subFolderName,omitempty" yaml:"subFolderName,omitempty"`
	Shared        *props.Properties `json:"shared" yaml:"shared"`
	Extra         *props.Properties `json:"extra" yaml:"extra"`
	Generators    []*Generator      `json:"generators" yaml:"generators"`
}

// Generator records one applied generator and the properties it owns.
type Generator struct {
	Module string            `json:"module" yaml:"module"`
	Props  *props.Properties `json:"props" yaml:"props"`
	Extra  *props.Properties `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// New returns an empty deployment.
func New() *Deployment {
	return &Deployment{Applications: []*Application{}}
}

// SubFolder converts a possibly empty folder name into the nullable form used
// by Part.
func SubFolder(name string) *string {
	if name == "" {
		return nil
	}
	return &name
}

// FolderName returns the subfolder name, or "" for the root part.
func (p *Part) FolderName() string {
	if p == nil || p.SubFolderName == nil {
		return ""
	}
	return *p.SubFolderName
}

// InRoot reports whether the part lives in the application root.
func (p *Part) InRoot() bool {
	return p.SubFolderName == nil
}

// Category returns the part's derived category.
func (p *Part) Category() string {
	return p.Extra.String(KeyCategory)
}

// RuntimeName returns the runtime recorded in the part's shared state.
func (p *Part) RuntimeName() string {
	return p.Shared.String(KeyRuntimeName)
}
