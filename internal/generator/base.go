package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/artpar/stackgen/internal/core/catalog"
	"github.com/artpar/stackgen/internal/core/descriptor"
	"github.com/artpar/stackgen/internal/core/props"
	"github.com/artpar/stackgen/internal/core/resource"
	"github.com/artpar/stackgen/internal/core/template"
)

const (
	filesDir      = "files"
	resourcesFile = "resources.yaml"
)

// =============================================================================
// Base
// =============================================================================

// Base carries the helpers shared by generator implementations. Embedding it
// provides a no-op PostApply.
type Base struct {
	Info *Info
	Ctx  Context
}

// NewBase creates a Base.
func NewBase(info *Info, gctx Context) Base {
	return Base{Info: info, Ctx: gctx}
}

// Name returns the generator name.
func (b *Base) Name() string {
	return b.Info.Name
}

// Def returns the generator's catalog entry.
func (b *Base) Def() (*catalog.ModuleInfoDef, error) {
	return b.Info.InfoDef()
}

// PostApply does nothing.
func (b *Base) PostApply(_ context.Context, res *resource.Resources, _ *props.Properties, _ *descriptor.Deployment) (*resource.Resources, error) {
	return res, nil
}

// Generator returns another generator bound to the same directories.
func (b *Base) Generator(name string) (Generator, error) {
	return b.Ctx.Registry.New(name, b.Ctx)
}

// ApplyGenerator delegates to another generator in the same directories.
func (b *Base) ApplyGenerator(ctx context.Context, name string, res *resource.Resources, p, extra *props.Properties) (*resource.Resources, error) {
	gen, err := b.Generator(name)
	if err != nil {
		return nil, err
	}
	out, err := gen.Apply(ctx, res, p, extra)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Setting returns a host setting, or def when unset.
func (b *Base) Setting(path, def string) string {
	if s := b.Ctx.Settings.String(path); s != "" {
		return s
	}
	return def
}

// =============================================================================
// File Helpers
// =============================================================================

// Exists reports whether a file exists relative to the working directory.
func (b *Base) Exists(rel string) bool {
	_, err := os.Stat(filepath.Join(b.Ctx.TargetDir, rel))
	return err == nil
}

// CopyFiles copies the generator's catalog files into the working directory.
// See CopyFilesTo.
func (b *Base) CopyFiles(p *props.Properties) (int, error) {
	return b.CopyFilesTo(b.Ctx.TargetDir, p)
}

// CopyFilesTo copies the generator's catalog files/ tree into dir. Existing
// files are left alone. Files matching the catalog's transform globs get their
// ${...} placeholders substituted from p. It returns the number of files
// written.
func (b *Base) CopyFilesTo(dir string, p *props.Properties) (int, error) {
	src, err := b.Ctx.Registry.Source().Files(b.Name())
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	files, err := fs.Sub(src, filesDir)
	if err != nil {
		return 0, err
	}
	def, err := b.Def()
	if err != nil {
		return 0, err
	}

	copied := 0
	err = fs.WalkDir(files, ".", func(rel string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && rel == "." {
				return fs.SkipDir
			}
			return err
		}
		dst := filepath.Join(dir, filepath.FromSlash(rel))
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		if _, err := os.Stat(dst); err == nil {
			return nil
		}
		data, err := fs.ReadFile(files, rel)
		if err != nil {
			return err
		}
		if template.Matches(rel, def.Metadata.Transform) {
			data = []byte(template.Substitute(string(data), p))
		}
		mode := os.FileMode(0o644)
		if bytes.HasPrefix(data, []byte("#!")) {
			mode = 0o755
		}
		if err := os.WriteFile(dst, data, mode); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("copy files of %s: %w", b.Name(), err)
	}
	return copied, nil
}

// LoadResources renders the generator's catalog resources.yaml with p.
// It returns an empty tree when the generator has none.
func (b *Base) LoadResources(p *props.Properties) (*resource.Resources, error) {
	src, err := b.Ctx.Registry.Source().Files(b.Name())
	if errors.Is(err, fs.ErrNotExist) {
		return resource.New(), nil
	}
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(src, resourcesFile)
	if errors.Is(err, fs.ErrNotExist) {
		return resource.New(), nil
	}
	if err != nil {
		return nil, err
	}
	res, err := resource.Parse([]byte(template.Substitute(string(data), p)))
	if err != nil {
		return nil, fmt.Errorf("resources of %s: %w", b.Name(), err)
	}
	return res, nil
}
