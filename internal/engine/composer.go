package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/artpar/stackgen/internal/core/catalog"
	"github.com/artpar/stackgen/internal/core/descriptor"
	"github.com/artpar/stackgen/internal/core/props"
	"github.com/artpar/stackgen/internal/core/resource"
	"github.com/artpar/stackgen/internal/core/validation"
	"github.com/artpar/stackgen/internal/generator"
	"github.com/artpar/stackgen/internal/shell/store"
)

// =============================================================================
// Dependencies
// =============================================================================

// Workspace reads and writes composition state in a target directory.
type Workspace interface {
	ReadResources(dir string) (*resource.Resources, error)
	WriteResources(dir string, res *resource.Resources) error
	ReadDeployment(root string) (*descriptor.Deployment, error)
	WriteDeployment(root string, d *descriptor.Deployment) error
}

// Journal records the outcome of every apply.
type Journal interface {
	Record(ctx context.Context, e store.JournalEntry) error
}

// Config holds the Composer's dependencies.
type Config struct {
	Registry *generator.Registry

	// Catalog is the frozen catalog. When nil, New takes a snapshot of the
	// registry.
	Catalog *catalog.Snapshot

	Workspace Workspace

	// Journal is optional.
	Journal Journal

	// Settings are host settings handed to every generator.
	Settings *props.Properties

	Logger *slog.Logger
}

// =============================================================================
// Composer
// =============================================================================

// Composer applies generators to target directories. A Composer assumes it is
// the only writer of the directories it is given.
type Composer struct {
	registry  *generator.Registry
	snapshot  *catalog.Snapshot
	workspace Workspace
	journal   Journal
	settings  *props.Properties
	logger    *slog.Logger
}

// Request names a generator and where to apply it.
type Request struct {
	// TargetDir is the root of the generated project.
	TargetDir string

	Module      string
	Application string

	// SubFolder selects the part; "" is the application root.
	SubFolder string

	// Props are the caller's properties. They are not modified.
	Props *props.Properties
}

// Result is the state after a successful apply.
type Result struct {
	Deployment        *descriptor.Deployment
	Resources         *resource.Resources
	Part              *descriptor.Part
	PostApplyFailures []PostApplyFailure
	Duration          time.Duration
}

// New creates a Composer.
func New(cfg Config) (*Composer, error) {
	if cfg.Registry == nil {
		return nil, errors.New("engine: registry is required")
	}
	if cfg.Workspace == nil {
		return nil, errors.New("engine: workspace is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	snapshot := cfg.Catalog
	if snapshot == nil {
		var err error
		snapshot, err = cfg.Registry.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}

	settings := cfg.Settings
	if settings == nil {
		settings = props.New()
	}

	return &Composer{
		registry:  cfg.Registry,
		snapshot:  snapshot,
		workspace: cfg.Workspace,
		journal:   cfg.Journal,
		settings:  settings,
		logger:    logger.With("component", "composer"),
	}, nil
}

// Catalog returns the frozen catalog snapshot.
func (c *Composer) Catalog() *catalog.Snapshot {
	return c.snapshot
}

// Registry returns the generator registry.
func (c *Composer) Registry() *generator.Registry {
	return c.registry
}

// =============================================================================
// Apply
// =============================================================================

// Apply applies one generator to the part of the application selected by the
// request and persists the result. Validation and conflict errors leave the
// target untouched; a generator failure returns an *ApplyError and persists
// nothing, although files the generator already wrote stay.
func (c *Composer) Apply(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	var result *Result
	sub, err := validation.NormalizeSubFolder(req.SubFolder)
	if err == nil {
		req.SubFolder = sub
		result, err = c.apply(ctx, req)
	}
	elapsed := time.Since(start)
	if result != nil {
		result.Duration = elapsed
	}
	c.record(ctx, req, result, err, elapsed)
	return result, err
}

func (c *Composer) apply(ctx context.Context, req Request) (*Result, error) {
	if _, err := c.registry.ByName(req.Module); err != nil {
		return nil, err
	}
	def, err := c.snapshot.InfoDef(req.Module)
	if err != nil {
		return nil, err
	}

	root := req.TargetDir
	workDir := root
	if req.SubFolder != "" {
		workDir = filepath.Join(root, filepath.FromSlash(req.SubFolder))
	}
	log := c.logger.With("module", req.Module, "application", req.Application, "sub_folder", req.SubFolder)

	res, err := c.workspace.ReadResources(workDir)
	if err != nil {
		return nil, err
	}
	d, err := c.workspace.ReadDeployment(root)
	if err != nil {
		return nil, err
	}

	p := req.Props.Clone().
		Set(descriptor.KeyModule, req.Module).
		Set(descriptor.KeyApplication, req.Application)
	if req.SubFolder != "" {
		p.Set(descriptor.KeySubFolderName, req.SubFolder)
	}
	if part := d.FindApplication(req.Application).FindPart(descriptor.SubFolder(req.SubFolder)); part != nil {
		shared := part.Shared.Filter(func(k string, _ any) bool { return def.Declares(k) })
		p = props.MergedDeep(shared, p)
	}

	if err := validation.Validate(def.Props, c.snapshot.Enums(), p); err != nil {
		return nil, err
	}
	if err := validation.ValidateAddGenerator(d, p); err != nil {
		return nil, err
	}

	gen, err := c.registry.New(req.Module, generator.Context{
		TargetDir: workDir,
		RootDir:   root,
		Settings:  c.settings,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}

	extra := props.New()
	if category := def.Category(); category != "" {
		extra.Set(descriptor.KeyCategory, category)
	}
	log.Debug("applying generator")
	out, err := gen.Apply(ctx, res.Clone(), p, extra)
	if err != nil {
		return nil, NewApplyError(req.Module, req.Application, req.SubFolder, err)
	}
	if out == nil {
		out = res
	}

	part := d.AddGenerator(descriptor.NewGeneratorState(def, p, extra))

	out, failures := c.postApply(ctx, root, out, d)

	if err := c.workspace.WriteResources(workDir, out); err != nil {
		return nil, err
	}
	if err := c.workspace.WriteDeployment(root, d); err != nil {
		return nil, err
	}

	log.Info("generator applied", "category", part.Category(), "post_apply_failures", len(failures))
	return &Result{
		Deployment:        d,
		Resources:         out,
		Part:              part,
		PostApplyFailures: failures,
	}, nil
}

// =============================================================================
// Post-Apply
// =============================================================================

// postApply notifies every generator recorded in the first application.
// Generators of other applications are not notified; callers composing more
// than one application per target only get notifications for the first.
// Each call is isolated: a failure or panic is collected and the pass goes on.
// A non-nil result replaces the resource tree handed to the next generator.
func (c *Composer) postApply(ctx context.Context, root string, res *resource.Resources, d *descriptor.Deployment) (*resource.Resources, []PostApplyFailure) {
	app := d.First()
	if app == nil {
		return res, nil
	}

	var failures []PostApplyFailure
	for _, part := range app.Parts {
		sub := part.FolderName()
		dir := root
		if sub != "" {
			dir = filepath.Join(root, filepath.FromSlash(sub))
		}
		for _, g := range part.Generators {
			p := props.MergedDeep(part.Shared, g.Props).Clone().
				Set(descriptor.KeyModule, g.Module).
				Set(descriptor.KeyApplication, app.Application)
			if sub != "" {
				p.Set(descriptor.KeySubFolderName, sub)
			}

			out, err := c.postApplyOne(ctx, g.Module, generator.Context{
				TargetDir: dir,
				RootDir:   root,
				Settings:  c.settings,
				Logger:    c.logger.With("module", g.Module, "sub_folder", sub),
			}, res, p, d)
			if err != nil {
				c.logger.Warn("post-apply failed", "module", g.Module, "sub_folder", sub, "error", err)
				failures = append(failures, PostApplyFailure{Module: g.Module, SubFolder: sub, Err: err})
				continue
			}
			if out != nil {
				res = out
			}
		}
	}
	return res, failures
}

func (c *Composer) postApplyOne(ctx context.Context, module string, gctx generator.Context, res *resource.Resources, p *props.Properties, d *descriptor.Deployment) (out *resource.Resources, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	gen, err := c.registry.New(module, gctx)
	if err != nil {
		return nil, err
	}
	return gen.PostApply(ctx, res.Clone(), p, d.Clone())
}

// =============================================================================
// Journal
// =============================================================================

func (c *Composer) record(ctx context.Context, req Request, result *Result, applyErr error, elapsed time.Duration) {
	if c.journal == nil {
		return
	}
	entry := store.JournalEntry{
		TargetDir:   req.TargetDir,
		Module:      req.Module,
		Application: req.Application,
		SubFolder:   req.SubFolder,
		Status:      Status(applyErr),
		Duration:    elapsed,
	}
	if applyErr != nil {
		entry.Error = applyErr.Error()
	}
	if result != nil {
		for _, f := range result.PostApplyFailures {
			entry.PostApplyFailures = append(entry.PostApplyFailures, f.String())
		}
	}
	if err := c.journal.Record(ctx, entry); err != nil {
		c.logger.Warn("failed to record apply", "module", req.Module, "error", err)
	}
}

// Status classifies an Apply error for the journal: nil is applied, a
// validation or conflict error, an unknown module or a module without a
// catalog entry is rejected, anything else failed.
func Status(err error) string {
	switch {
	case err == nil:
		return store.StatusApplied
	case errors.Is(err, ErrGeneratorApply):
		return store.StatusFailed
	case errors.Is(err, validation.ErrInvalidType),
		errors.Is(err, validation.ErrNotInEnum),
		errors.Is(err, validation.ErrUnknownEnum),
		errors.Is(err, validation.ErrRuntimeConflict),
		errors.Is(err, validation.ErrFolderModeMix),
		errors.Is(err, validation.ErrInvalidFolder),
		errors.Is(err, catalog.ErrUnknownModule),
		errors.Is(err, catalog.ErrMissingCatalog):
		return store.StatusRejected
	default:
		return store.StatusFailed
	}
}
