package generator

import (
	"errors"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/artpar/stackgen/internal/core/catalog"
)

// Registry lookup errors.
var (
	ErrUnknownModule  = catalog.ErrUnknownModule
	ErrMissingCatalog = catalog.ErrMissingCatalog
)

// =============================================================================
// Registry
// =============================================================================

// Registry maps generator names to factories and lazily loaded catalog
// entries. It is safe for concurrent use.
type Registry struct {
	source   Source
	fallback Factory
	logger   *slog.Logger

	mu    sync.Mutex
	order []string
	infos map[string]*Info
	defs  map[string]*defEntry

	enumsOnce sync.Once
	enums     catalog.Enums
	enumsErr  error
}

type defEntry struct {
	once sync.Once
	def  *catalog.ModuleInfoDef
	err  error
}

// NewRegistry creates an empty registry reading catalog data from source.
// fallback is the factory used for generators added without one.
func NewRegistry(source Source, fallback Factory) *Registry {
	return &Registry{
		source:   source,
		fallback: fallback,
		logger:   slog.Default(),
		infos:    make(map[string]*Info),
		defs:     make(map[string]*defEntry),
	}
}

// WithLogger sets the logger handed to generators created without one.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Add registers a generator. A nil factory selects the fallback factory.
// Adding an existing name replaces its factory.
func (r *Registry) Add(name string, f Factory) *Registry {
	if f == nil {
		f = r.fallback
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.infos[name]; !ok {
		r.order = append(r.order, name)
	}
	r.infos[name] = &Info{Name: name, factory: f, registry: r}
	return r
}

// Source returns the catalog source.
func (r *Registry) Source() Source {
	return r.source
}

// =============================================================================
// Lookup
// =============================================================================

// Generators returns all entries in registration order.
func (r *Registry) Generators() []*Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Info, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.infos[name])
	}
	return out
}

// Capabilities returns the entries whose name carries the capability prefix.
func (r *Registry) Capabilities() []*Info {
	var out []*Info
	for _, info := range r.Generators() {
		if info.IsCapability() {
			out = append(out, info)
		}
	}
	return out
}

// ByName returns the entry registered under name.
func (r *Registry) ByName(name string) (*Info, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.infos[name]
	if !ok {
		return nil, catalog.NewLookupError(name, "", ErrUnknownModule)
	}
	return info, nil
}

// Capability resolves a capability by short or full name, trying
// "capability-"+name first.
func (r *Registry) Capability(name string) (*Info, error) {
	if info, err := r.ByName(CapabilityPrefix + name); err == nil {
		return info, nil
	}
	return r.ByName(name)
}

// New instantiates the named generator bound to gctx.
func (r *Registry) New(name string, gctx Context) (Generator, error) {
	info, err := r.ByName(name)
	if err != nil {
		return nil, err
	}
	gctx.Registry = r
	if gctx.RootDir == "" {
		gctx.RootDir = gctx.TargetDir
	}
	if gctx.Logger == nil {
		gctx.Logger = r.logger
	}
	return info.factory(info, gctx), nil
}

// =============================================================================
// Catalog
// =============================================================================

// InfoDef returns the catalog entry of a registered generator, reading it on
// first use.
func (r *Registry) InfoDef(name string) (*catalog.ModuleInfoDef, error) {
	if _, err := r.ByName(name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	entry, ok := r.defs[name]
	if !ok {
		entry = &defEntry{}
		r.defs[name] = entry
	}
	r.mu.Unlock()

	entry.once.Do(func() {
		entry.def, entry.err = r.loadInfoDef(name)
	})
	return entry.def, entry.err
}

func (r *Registry) loadInfoDef(name string) (*catalog.ModuleInfoDef, error) {
	data, err := r.source.ReadInfo(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, catalog.NewLookupError(name, "registered but missing catalog info", ErrMissingCatalog)
	}
	if err != nil {
		return nil, catalog.NewLookupError(name, "", err)
	}
	def, err := catalog.ParseInfoDef(name, data)
	if err != nil {
		return nil, catalog.NewLookupError(name, "", err)
	}
	return def, nil
}

// Enums returns the enum catalog, reading it on first use. A missing catalog
// yields an empty one.
func (r *Registry) Enums() (catalog.Enums, error) {
	r.enumsOnce.Do(func() {
		data, err := r.source.ReadEnums()
		if errors.Is(err, fs.ErrNotExist) {
			r.enums = catalog.Enums{}
			return
		}
		if err != nil {
			r.enumsErr = err
			return
		}
		r.enums, r.enumsErr = catalog.ParseEnums(data)
	})
	return r.enums, r.enumsErr
}

// Snapshot loads every catalog entry and the enum catalog and freezes them.
// Per-generator load failures are kept in the snapshot; only an unreadable
// enum catalog fails the call.
func (r *Registry) Snapshot() (*catalog.Snapshot, error) {
	enums, err := r.Enums()
	if err != nil {
		return nil, err
	}

	infos := make(map[string]*catalog.ModuleInfoDef)
	errs := make(map[string]error)
	for _, info := range r.Generators() {
		def, err := r.InfoDef(info.Name)
		if err != nil {
			r.logger.Warn("generator catalog entry unavailable", "generator", info.Name, "error", err)
			errs[info.Name] = err
			continue
		}
		infos[info.Name] = def
	}
	return catalog.NewSnapshot(infos, errs, enums), nil
}
