package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/artpar/stackgen/internal/core/catalog"
	"github.com/artpar/stackgen/internal/core/props"
	"github.com/artpar/stackgen/internal/core/resource"
	"github.com/artpar/stackgen/internal/shell/catalogfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Fixtures
// =============================================================================

type stubGenerator struct {
	Base
}

func (g *stubGenerator) Apply(_ context.Context, res *resource.Resources, _ *props.Properties, _ *props.Properties) (*resource.Resources, error) {
	return res.SetParam("APPLIED_BY", g.Name()), nil
}

func newStub(info *Info, gctx Context) Generator {
	return &stubGenerator{Base: NewBase(info, gctx)}
}

// countingSource counts info reads.
type countingSource struct {
	*catalogfs.Source
	mu    sync.Mutex
	reads map[string]int
	enums int
}

func (s *countingSource) ReadInfo(name string) ([]byte, error) {
	s.mu.Lock()
	s.reads[name]++
	s.mu.Unlock()
	return s.Source.ReadInfo(name)
}

func (s *countingSource) ReadEnums() ([]byte, error) {
	s.mu.Lock()
	s.enums++
	s.mu.Unlock()
	return s.Source.ReadEnums()
}

func testCatalog() fstest.MapFS {
	return fstest.MapFS{
		"enums.yaml": {Data: []byte("runtime.name:\n  - id: quarkus\n  - id: nodejs\n")},
		"rest-quarkus/info.yaml": {Data: []byte(`
name: REST Quarkus
props:
  - id: runtime
    type: object
    shared: true
metadata:
  category: backend
  transform: ["*.md"]
`)},
		"rest-quarkus/files/README.md":  {Data: []byte("# ${application} on ${runtime.name}\n")},
		"rest-quarkus/files/bin/run":    {Data: []byte("#!/bin/sh\necho ${application}\n")},
		"rest-quarkus/resources.yaml":   {Data: []byte("parameters:\n  - name: APP_NAME\n    value: ${application}\nobjects:\n  - kind: Service\n    metadata:\n      name: ${application}\n")},
		"capability-rest/info.yaml":     {Data: []byte("metadata:\n  category: backend\n")},
		"capability-database/info.yaml": {Data: []byte("props: [:")},
	}
}

func newTestRegistry(src Source) *Registry {
	return NewRegistry(src, newStub).
		Add("capability-rest", nil).
		Add("rest-quarkus", nil).
		Add("capability-database", nil).
		Add("capability-welcome", nil).
		Add("rest", nil)
}

// =============================================================================
// Lookup Tests
// =============================================================================

func TestRegistry_ByNameAndOrder(t *testing.T) {
	reg := newTestRegistry(catalogfs.New(testCatalog()))

	var names []string
	for _, info := range reg.Generators() {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"capability-rest", "rest-quarkus", "capability-database", "capability-welcome", "rest"}, names)

	info, err := reg.ByName("rest-quarkus")
	require.NoError(t, err)
	assert.Equal(t, "rest-quarkus", info.Name)

	_, err = reg.ByName("nope")
	assert.ErrorIs(t, err, ErrUnknownModule)
}

func TestRegistry_Capabilities(t *testing.T) {
	reg := newTestRegistry(catalogfs.New(testCatalog()))

	var short []string
	for _, info := range reg.Capabilities() {
		short = append(short, info.ShortName())
	}
	assert.Equal(t, []string{"rest", "database", "welcome"}, short)

	info, err := reg.Capability("rest")
	require.NoError(t, err)
	assert.Equal(t, "capability-rest", info.Name, "prefixed name wins")

	info, err = reg.Capability("rest-quarkus")
	require.NoError(t, err)
	assert.Equal(t, "rest-quarkus", info.Name)

	_, err = reg.Capability("nope")
	assert.ErrorIs(t, err, ErrUnknownModule)
}

func TestRegistry_AddReplacesFactory(t *testing.T) {
	reg := NewRegistry(catalogfs.New(testCatalog()), newStub).Add("rest", nil)
	called := false
	reg.Add("rest", func(info *Info, gctx Context) Generator {
		called = true
		return newStub(info, gctx)
	})

	_, err := reg.New("rest", Context{TargetDir: t.TempDir()})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Len(t, reg.Generators(), 1)
}

// =============================================================================
// Catalog Tests
// =============================================================================

func TestRegistry_InfoDef(t *testing.T) {
	reg := newTestRegistry(catalogfs.New(testCatalog()))

	def, err := reg.InfoDef("rest-quarkus")
	require.NoError(t, err)
	assert.Equal(t, "backend", def.Category())
	assert.True(t, def.IsShared("runtime"))

	_, err = reg.InfoDef("nope")
	assert.ErrorIs(t, err, ErrUnknownModule)

	_, err = reg.InfoDef("capability-welcome")
	assert.ErrorIs(t, err, ErrMissingCatalog)
	assert.NotErrorIs(t, err, ErrUnknownModule)

	_, err = reg.InfoDef("capability-database")
	assert.ErrorIs(t, err, catalog.ErrInvalidInfoDef)
}

func TestRegistry_InfoDefLoadedOnce(t *testing.T) {
	src := &countingSource{Source: catalogfs.New(testCatalog()), reads: map[string]int{}}
	reg := newTestRegistry(src)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = reg.InfoDef("rest-quarkus")
			_, _ = reg.InfoDef("capability-welcome")
			_, _ = reg.Enums()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, src.reads["rest-quarkus"])
	assert.Equal(t, 1, src.reads["capability-welcome"])
	assert.Equal(t, 1, src.enums)
}

func TestRegistry_Enums(t *testing.T) {
	enums, err := newTestRegistry(catalogfs.New(testCatalog())).Enums()
	require.NoError(t, err)
	assert.Equal(t, []string{"quarkus", "nodejs"}, enums.IDs("runtime.name"))

	empty, err := newTestRegistry(catalogfs.New(fstest.MapFS{})).Enums()
	require.NoError(t, err)
	assert.Empty(t, empty)

	bad := fstest.MapFS{"enums.yaml": {Data: []byte("runtime.name:\n  - name: x\n")}}
	_, err = newTestRegistry(catalogfs.New(bad)).Enums()
	assert.ErrorIs(t, err, catalog.ErrInvalidEnums)
}

func TestRegistry_Snapshot(t *testing.T) {
	snap, err := newTestRegistry(catalogfs.New(testCatalog())).Snapshot()
	require.NoError(t, err)

	assert.Equal(t, []string{"capability-rest", "rest-quarkus"}, snap.Names())
	_, err = snap.InfoDef("capability-welcome")
	assert.ErrorIs(t, err, ErrMissingCatalog)
	_, err = snap.InfoDef("rest")
	assert.ErrorIs(t, err, ErrMissingCatalog)
	_, err = snap.InfoDef("unregistered")
	assert.ErrorIs(t, err, ErrUnknownModule)
	assert.True(t, snap.Enums().Contains("runtime.name", "nodejs"))
}

type brokenEnums struct{ *catalogfs.Source }

func (brokenEnums) ReadEnums() ([]byte, error) { return nil, errors.New("disk on fire") }

func TestRegistry_SnapshotFailsOnUnreadableEnums(t *testing.T) {
	_, err := newTestRegistry(brokenEnums{catalogfs.New(testCatalog())}).Snapshot()
	assert.EqualError(t, err, "disk on fire")
}

// =============================================================================
// Instantiation and Base Tests
// =============================================================================

func TestRegistry_New(t *testing.T) {
	dir := t.TempDir()
	reg := newTestRegistry(catalogfs.New(testCatalog()))

	gen, err := reg.New("rest-quarkus", Context{TargetDir: dir})
	require.NoError(t, err)
	stub := gen.(*stubGenerator)
	assert.Same(t, reg, stub.Ctx.Registry)
	assert.Equal(t, dir, stub.Ctx.RootDir)
	assert.NotNil(t, stub.Ctx.Logger)

	res, err := gen.Apply(context.Background(), resource.New(), props.New(), props.New())
	require.NoError(t, err)
	assert.Equal(t, "rest-quarkus", res.ParamValue("APPLIED_BY"))

	_, err = reg.New("nope", Context{TargetDir: dir})
	assert.ErrorIs(t, err, ErrUnknownModule)
}

func TestBase_CopyFiles(t *testing.T) {
	dir := t.TempDir()
	reg := newTestRegistry(catalogfs.New(testCatalog()))
	gen, err := reg.New("rest-quarkus", Context{TargetDir: dir})
	require.NoError(t, err)
	base := &gen.(*stubGenerator).Base

	p := props.New().Set("application", "shop").SetPath("runtime.name", "quarkus")
	n, err := base.CopyFiles(p)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# shop on quarkus\n", string(readme))

	run, err := os.ReadFile(filepath.Join(dir, "bin", "run"))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho ${application}\n", string(run), "only transform globs are substituted")
	st, err := os.Stat(filepath.Join(dir, "bin", "run"))
	require.NoError(t, err)
	assert.NotZero(t, st.Mode()&0o100)
	assert.True(t, base.Exists("README.md"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("mine"), 0o644))
	n, err = base.CopyFiles(p)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	readme, _ = os.ReadFile(filepath.Join(dir, "README.md"))
	assert.Equal(t, "mine", string(readme), "existing files are kept")
}

func TestBase_CopyFilesWithoutCatalogFiles(t *testing.T) {
	reg := newTestRegistry(catalogfs.New(testCatalog()))
	gen, err := reg.New("capability-rest", Context{TargetDir: t.TempDir()})
	require.NoError(t, err)

	n, err := gen.(*stubGenerator).CopyFiles(props.New())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	gen, err = reg.New("rest", Context{TargetDir: t.TempDir()})
	require.NoError(t, err)
	n, err = gen.(*stubGenerator).CopyFiles(props.New())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBase_LoadResources(t *testing.T) {
	reg := newTestRegistry(catalogfs.New(testCatalog()))
	gen, err := reg.New("rest-quarkus", Context{TargetDir: t.TempDir()})
	require.NoError(t, err)
	base := &gen.(*stubGenerator).Base

	res, err := base.LoadResources(props.New().Set("application", "shop"))
	require.NoError(t, err)
	assert.Equal(t, "shop", res.ParamValue("APP_NAME"))
	assert.NotNil(t, res.FindObject("Service", "shop"))

	gen, err = reg.New("capability-rest", Context{TargetDir: t.TempDir()})
	require.NoError(t, err)
	res, err = gen.(*stubGenerator).LoadResources(props.New())
	require.NoError(t, err)
	assert.True(t, res.IsEmpty())
}

func TestBase_DelegationAndSettings(t *testing.T) {
	dir := t.TempDir()
	reg := newTestRegistry(catalogfs.New(testCatalog()))
	gen, err := reg.New("capability-rest", Context{
		TargetDir: dir,
		Settings:  props.New().SetPath("welcome.image_tag", "v2"),
	})
	require.NoError(t, err)
	base := &gen.(*stubGenerator).Base

	res, err := base.ApplyGenerator(context.Background(), "rest-quarkus", resource.New(), props.New(), props.New())
	require.NoError(t, err)
	assert.Equal(t, "rest-quarkus", res.ParamValue("APPLIED_BY"))

	_, err = base.ApplyGenerator(context.Background(), "nope", resource.New(), props.New(), props.New())
	assert.ErrorIs(t, err, ErrUnknownModule)

	assert.Equal(t, "v2", base.Setting("welcome.image_tag", "latest"))
	assert.Equal(t, "fallback", base.Setting("welcome.image_name", "fallback"))

	out, err := base.PostApply(context.Background(), res, nil, nil)
	require.NoError(t, err)
	assert.Same(t, res, out)
}
