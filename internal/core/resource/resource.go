// Package resource models the deployment manifest fragment tree that
// generators build up: an OpenShift-style template holding objects and
// parameters.
//
// This is part of the Functional Core; reading and writing the tree from disk
// is done by internal/shell/store.
package resource

import (
	"errors"
	"fmt"
	"strings"

	"github.com/artpar/stackgen/internal/core/props"
	"gopkg.in/yaml.v3"
)

// ErrInvalidResources is returned when a resource document cannot be parsed.
var ErrInvalidResources = errors.New("invalid resource document")

const (
	kindTemplate = "Template"
	kindList     = "List"
)

// =============================================================================
// Resource Types
// =============================================================================

// Parameter is a template parameter, substituted by the cluster at deploy time.
type Parameter struct {
	Name        string `yaml:"name" json:"name"`
	DisplayName string `yaml:"displayName,omitempty" json:"displayName,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Value       string `yaml:"value,omitempty" json:"value,omitempty"`
	Generate    string `yaml:"generate,omitempty" json:"generate,omitempty"`
	From        string `yaml:"from,omitempty" json:"from,omitempty"`
	Required    bool   `yaml:"required,omitempty" json:"required,omitempty"`
}

// Resources is the manifest tree of one working directory.
type Resources struct {
	APIVersion string              `yaml:"apiVersion,omitempty" json:"apiVersion,omitempty"`
	Kind       string              `yaml:"kind,omitempty" json:"kind,omitempty"`
	Metadata   *props.Properties   `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	Parameters []Parameter         `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Objects    []*props.Properties `yaml:"objects,omitempty" json:"objects,omitempty"`
	Items      []*props.Properties `yaml:"items,omitempty" json:"items,omitempty"`
}

// New returns an empty template.
func New() *Resources {
	return &Resources{APIVersion: "v1", Kind: kindTemplate}
}

// Parse reads a resource document. A "List" document is converted into a
// template so callers only ever deal with Objects.
func Parse(data []byte) (*Resources, error) {
	if strings.TrimSpace(string(data)) == "" {
		return New(), nil
	}
	var r Resources
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResources, err)
	}
	if r.Kind == kindList || len(r.Items) > 0 {
		r.Objects = append(r.Objects, r.Items...)
		r.Items = nil
	}
	if r.Kind == "" || r.Kind == kindList {
		r.Kind = kindTemplate
	}
	if r.APIVersion == "" {
		r.APIVersion = "v1"
	}
	return &r, nil
}

// Marshal renders the tree as YAML.
func (r *Resources) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}

// IsEmpty reports whether the tree holds neither objects nor parameters.
func (r *Resources) IsEmpty() bool {
	return r == nil || (len(r.Objects) == 0 && len(r.Parameters) == 0)
}

// Clone returns a deep copy.
func (r *Resources) Clone() *Resources {
	if r == nil {
		return New()
	}
	out := &Resources{
		APIVersion: r.APIVersion,
		Kind:       r.Kind,
		Parameters: append([]Parameter(nil), r.Parameters...),
	}
	if r.Metadata != nil {
		out.Metadata = r.Metadata.Clone()
	}
	for _, o := range r.Objects {
		out.Objects = append(out.Objects, o.Clone())
	}
	return out
}

// =============================================================================
// Mutation
// =============================================================================

// Add appends other's objects and any of its parameters not already defined.
// Existing parameters keep their values.
func (r *Resources) Add(other *Resources) *Resources {
	if other == nil {
		return r
	}
	for _, o := range other.Objects {
		r.Objects = append(r.Objects, o.Clone())
	}
	for _, p := range other.Parameters {
		if r.Parameter(p.Name) == nil {
			r.Parameters = append(r.Parameters, p)
		}
	}
	return r
}

// AddObject appends a single object.
func (r *Resources) AddObject(obj *props.Properties) *Resources {
	r.Objects = append(r.Objects, obj)
	return r
}

// Parameter returns the named parameter, or nil.
func (r *Resources) Parameter(name string) *Parameter {
	for i := range r.Parameters {
		if r.Parameters[i].Name == name {
			return &r.Parameters[i]
		}
	}
	return nil
}

// ParamValue returns the value of the named parameter, or "".
func (r *Resources) ParamValue(name string) string {
	if p := r.Parameter(name); p != nil {
		return p.Value
	}
	return ""
}

// SetParam sets a parameter value, defining the parameter when missing.
func (r *Resources) SetParam(name, value string) *Resources {
	if p := r.Parameter(name); p != nil {
		p.Value = value
		return r
	}
	r.Parameters = append(r.Parameters, Parameter{Name: name, Value: value})
	return r
}

// =============================================================================
// Queries
// =============================================================================

// ObjectsOfKind returns the objects with the given kind, in order.
func (r *Resources) ObjectsOfKind(kind string) []*props.Properties {
	var out []*props.Properties
	for _, o := range r.Objects {
		if o.String("kind") == kind {
			out = append(out, o)
		}
	}
	return out
}

// FindObject returns the object with the given kind and metadata.name, or nil.
func (r *Resources) FindObject(kind, name string) *props.Properties {
	for _, o := range r.ObjectsOfKind(kind) {
		if o.String("metadata.name") == name {
			return o
		}
	}
	return nil
}
