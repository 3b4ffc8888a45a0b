package descriptor

import (
	"encoding/json"
	"testing"

	"github.com/artpar/stackgen/internal/core/catalog"
	"github.com/artpar/stackgen/internal/core/props"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Fixtures
// =============================================================================

func restDef() *catalog.ModuleInfoDef {
	return &catalog.ModuleInfoDef{
		Module: "rest-quarkus",
		Props: []catalog.PropertyDef{
			{ID: "runtime", Type: catalog.TypeObject, Shared: true},
			{ID: "serviceName", Type: catalog.TypeString},
		},
		Metadata: catalog.Metadata{Category: "backend"},
	}
}

func stateFor(app string, sub *string, module, category string) GeneratorState {
	return GeneratorState{
		Application:   app,
		SubFolderName: sub,
		Descriptor: &Generator{
			Module: module,
			Props:  props.New(),
			Extra:  props.New().Set(KeyCategory, category),
		},
		Shared: props.New(),
	}
}

// =============================================================================
// Generator State Tests
// =============================================================================

func TestNewGeneratorState_PartitionsProps(t *testing.T) {
	p := props.New().
		Set("serviceName", "api").
		SetPath("runtime.name", "quarkus").
		Set(KeyModule, "rest-quarkus").
		Set(KeyApplication, "shop").
		Set(KeySubFolderName, "backend").
		Set("undeclared", 1)
	extra := props.New().
		Set(KeyCategory, "backend").
		Set(KeyShared, props.New().Set("routeHost", "api.local"))

	st := NewGeneratorState(restDef(), p, extra)

	assert.Equal(t, "shop", st.Application)
	require.NotNil(t, st.SubFolderName)
	assert.Equal(t, "backend", *st.SubFolderName)
	assert.Equal(t, "rest-quarkus", st.Descriptor.Module)
	assert.Equal(t, []string{"serviceName", "undeclared"}, st.Descriptor.Props.Keys())
	assert.Equal(t, []string{KeyCategory}, st.Descriptor.Extra.Keys())
	assert.Equal(t, "quarkus", st.Shared.String("runtime.name"))
	assert.Equal(t, []string{"runtime"}, st.Shared.Keys())
	assert.Equal(t, "api.local", st.SharedExtra.String("routeHost"))
}

func TestNewGeneratorState_RootPart(t *testing.T) {
	p := props.New().Set(KeyModule, "m").Set(KeyApplication, "a")
	st := NewGeneratorState(restDef(), p, props.New())

	assert.Nil(t, st.SubFolderName)
	assert.Nil(t, st.SharedExtra)
	assert.Equal(t, 0, st.Descriptor.Props.Len())
}

// =============================================================================
// Fold Tests
// =============================================================================

func TestAddGenerator_CreatesApplicationAndPart(t *testing.T) {
	d := New()
	st := stateFor("shop", nil, "rest-quarkus", "backend")
	st.Shared.SetPath("runtime.name", "quarkus")

	part := d.AddGenerator(st)

	require.Len(t, d.Applications, 1)
	assert.Equal(t, "shop", d.Applications[0].Application)
	require.Len(t, d.Applications[0].Parts, 1)
	assert.Same(t, part, d.Applications[0].Parts[0])
	assert.True(t, part.InRoot())
	assert.Equal(t, "quarkus", part.RuntimeName())
	assert.Equal(t, "backend", part.Category())
}

func TestAddGenerator_AppendsInOrder(t *testing.T) {
	d := New()
	sub := SubFolder("api")
	d.AddGenerator(stateFor("shop", sub, "a", "backend"))
	d.AddGenerator(stateFor("shop", SubFolder("api"), "b", "backend"))
	d.AddGenerator(stateFor("shop", SubFolder("web"), "c", "frontend"))
	d.AddGenerator(stateFor("other", nil, "d", "support"))

	require.Len(t, d.Applications, 2)
	shop := d.FindApplication("shop")
	require.Len(t, shop.Parts, 2)
	modules := []string{}
	for _, g := range shop.FindPart(SubFolder("api")).Generators {
		modules = append(modules, g.Module)
	}
	assert.Equal(t, []string{"a", "b"}, modules)
	assert.Equal(t, "web", shop.Parts[1].FolderName())
}

func TestAddGenerator_SharedMergeIsShallow(t *testing.T) {
	d := New()
	first := stateFor("shop", nil, "a", "")
	first.Shared.SetPath("runtime.name", "quarkus").SetPath("runtime.version", "1.0").Set("keep", true)
	d.AddGenerator(first)

	second := stateFor("shop", nil, "b", "")
	second.Shared.SetPath("runtime.name", "quarkus")
	second.SharedExtra = props.New().Set("routes", 1)
	part := d.AddGenerator(second)

	_, ok := part.Shared.GetPath("runtime.version")
	assert.False(t, ok)
	assert.True(t, part.Shared.Bool("keep"))
	assert.Equal(t, 1, mustGet(t, part.Extra, "routes"))
}

func TestOverallCategory(t *testing.T) {
	tests := []struct {
		name       string
		categories []string
		want       string
	}{
		{"database and support", []string{"database", "support"}, "database"},
		{"support first", []string{"support", "backend", "support"}, "backend"},
		{"support only", []string{"support"}, "support"},
		{"repeated support", []string{"support", "support"}, "support"},
		{"first wins", []string{"frontend", "backend"}, "frontend"},
		{"missing categories ignored", []string{"", "backend"}, "backend"},
		{"none", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gens []*Generator
			for _, c := range tt.categories {
				g := &Generator{Module: "m", Props: props.New(), Extra: props.New()}
				if c != "" {
					g.Extra.Set(KeyCategory, c)
				}
				gens = append(gens, g)
			}
			assert.Equal(t, tt.want, OverallCategory(gens))
		})
	}
}

func TestAddGenerator_RecomputesCategory(t *testing.T) {
	d := New()
	d.AddGenerator(stateFor("shop", nil, "welcome", "support"))
	assert.Equal(t, "support", d.First().Parts[0].Category())

	d.AddGenerator(stateFor("shop", nil, "database", "database"))
	assert.Equal(t, "database", d.First().Parts[0].Category())
}

// =============================================================================
// Lookup and Serialization Tests
// =============================================================================

func TestFindPart_DistinguishesRootFromFolder(t *testing.T) {
	app := &Application{Parts: []*Part{{SubFolderName: SubFolder("x")}}}

	assert.Nil(t, app.FindPart(nil))
	assert.NotNil(t, app.FindPart(SubFolder("x")))
	assert.Nil(t, app.FindPart(SubFolder("y")))
	assert.Nil(t, (*Application)(nil).FindPart(nil))
}

func TestClone_IsIndependent(t *testing.T) {
	d := New()
	st := stateFor("shop", SubFolder("api"), "a", "backend")
	st.Shared.SetPath("runtime.name", "quarkus")
	d.AddGenerator(st)

	cp := d.Clone()
	cp.First().Parts[0].Shared.SetPath("runtime.name", "vertx")
	*cp.First().Parts[0].SubFolderName = "changed"
	cp.First().Parts[0].Generators = nil

	assert.Equal(t, "quarkus", d.First().Parts[0].RuntimeName())
	assert.Equal(t, "api", d.First().Parts[0].FolderName())
	assert.Len(t, d.First().Parts[0].Generators, 1)
}

func TestDeployment_JSONShape(t *testing.T) {
	d := New()
	st := stateFor("shop", nil, "rest-quarkus", "backend")
	st.Shared.SetPath("runtime.name", "quarkus")
	d.AddGenerator(st)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"applications": [{
			"application": "shop",
			"parts": [{
				"shared": {"runtime": {"name": "quarkus"}},
				"extra": {"category": "backend"},
				"generators": [{"module": "rest-quarkus", "props": {}, "extra": {"category": "backend"}}]
			}]
		}]
	}`, string(data))

	var back Deployment
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "quarkus", back.First().Parts[0].RuntimeName())
	assert.True(t, back.First().Parts[0].InRoot())
}

func mustGet(t *testing.T, p *props.Properties, key string) any {
	t.Helper()
	v, ok := p.Get(key)
	require.True(t, ok, "missing key %q", key)
	return v
}
