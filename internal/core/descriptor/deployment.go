package descriptor

import (
	"github.com/artpar/stackgen/internal/core/catalog"
	"github.com/artpar/stackgen/internal/core/props"
)

// =============================================================================
// Lookup Functions
// =============================================================================

// FindApplication returns the application with the given name, or nil.
func (d *Deployment) FindApplication(name string) *Application {
	if d == nil {
		return nil
	}
	for _, app := range d.Applications {
		if app.Application == name {
			return app
		}
	}
	return nil
}

// FindPart returns the part whose subfolder equals sub (nil matches the root
// part), or nil.
func (a *Application) FindPart(sub *string) *Part {
	if a == nil {
		return nil
	}
	for _, part := range a.Parts {
		if sameFolder(part.SubFolderName, sub) {
			return part
		}
	}
	return nil
}

func sameFolder(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// First returns the first application, or nil for an empty deployment.
func (d *Deployment) First() *Application {
	if d == nil || len(d.Applications) == 0 {
		return nil
	}
	return d.Applications[0]
}

// Clone returns a deep copy of the deployment.
func (d *Deployment) Clone() *Deployment {
	out := New()
	if d == nil {
		return out
	}
	for _, app := range d.Applications {
		ac := &Application{Application: app.Application, Parts: make([]*Part, 0, len(app.Parts))}
		if app.Extra != nil {
			ac.Extra = app.Extra.Clone()
		}
		for _, part := range app.Parts {
			pc := &Part{
				Shared:     part.Shared.Clone(),
				Extra:      part.Extra.Clone(),
				Generators: make([]*Generator, 0, len(part.Generators)),
			}
			if part.SubFolderName != nil {
				pc.SubFolderName = SubFolder(*part.SubFolderName)
			}
			for _, g := range part.Generators {
				pc.Generators = append(pc.Generators, &Generator{
					Module: g.Module,
					Props:  g.Props.Clone(),
					Extra:  g.Extra.Clone(),
				})
			}
			ac.Parts = append(ac.Parts, pc)
		}
		out.Applications = append(out.Applications, ac)
	}
	return out
}

// =============================================================================
// Fold Functions
// =============================================================================

// GeneratorState is the result of applying a generator, split into what the
// generator owns and what is promoted onto its part.
type GeneratorState struct {
	Application   string
	SubFolderName *string
	Descriptor    *Generator
	Shared        *props.Properties
	SharedExtra   *props.Properties
}

// NewGeneratorState partitions applied properties using the generator's
// property definitions. Shared-declared keys go to Shared, the rest (minus the
// reserved module, application and subFolderName keys) stay with the
// generator. extra["shared"] becomes SharedExtra; the rest of extra stays with
// the generator.
func NewGeneratorState(def *catalog.ModuleInfoDef, p, extra *props.Properties) GeneratorState {
	own := p.Filter(func(k string, _ any) bool { return !def.IsShared(k) }).
		Without(KeyModule, KeyApplication, KeySubFolderName)
	shared := p.Filter(func(k string, _ any) bool { return def.IsShared(k) })

	var sharedExtra *props.Properties
	if v, ok := extra.Get(KeyShared); ok {
		sharedExtra, _ = v.(*props.Properties)
	}

	return GeneratorState{
		Application:   p.String(KeyApplication),
		SubFolderName: SubFolder(p.String(KeySubFolderName)),
		Descriptor: &Generator{
			Module: p.String(KeyModule),
			Props:  own,
			Extra:  extra.Without(KeyShared),
		},
		Shared:      shared,
		SharedExtra: sharedExtra,
	}
}

// AddGenerator folds a generator state into the deployment and returns the
// part it was added to. The application and part are created when missing.
func (d *Deployment) AddGenerator(st GeneratorState) *Part {
	app := d.FindApplication(st.Application)
	if app == nil {
		app = &Application{Application: st.Application, Parts: []*Part{}}
		d.Applications = append(d.Applications, app)
	}

	part := app.FindPart(st.SubFolderName)
	if part == nil {
		part = &Part{
			SubFolderName: st.SubFolderName,
			Shared:        props.New(),
			Extra:         props.New(),
			Generators:    []*Generator{},
		}
		app.Parts = append(app.Parts, part)
	}
	if part.Shared == nil {
		part.Shared = props.New()
	}
	if part.Extra == nil {
		part.Extra = props.New()
	}

	part.Generators = append(part.Generators, st.Descriptor)
	part.Shared.Merge(st.Shared)
	part.Extra.Merge(st.SharedExtra)
	if category := OverallCategory(part.Generators); category != "" {
		part.Extra.Set(KeyCategory, category)
	}
	return part
}

// OverallCategory derives a single category from generators in order: the
// distinct categories are collected, "support" is dropped when anything else
// remains, and the first survivor wins.
func OverallCategory(generators []*Generator) string {
	var categories []string
	seen := make(map[string]bool)
	for _, g := range generators {
		c := g.Extra.String(KeyCategory)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		categories = append(categories, c)
	}
	if len(categories) > 1 {
		filtered := categories[:0]
		for _, c := range categories {
			if c != catalog.SupportCategory {
				filtered = append(filtered, c)
			}
		}
		categories = filtered
	}
	if len(categories) == 0 {
		return ""
	}
	return categories[0]
}
