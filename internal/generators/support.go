package generators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/artpar/stackgen/internal/core/compose"
	"github.com/artpar/stackgen/internal/core/descriptor"
	"github.com/artpar/stackgen/internal/core/naming"
	"github.com/artpar/stackgen/internal/core/props"
	"github.com/artpar/stackgen/internal/core/resource"
	"github.com/artpar/stackgen/internal/generator"
	"github.com/artpar/stackgen/internal/shell/store"
)

// Host settings read by the support generators.
const (
	SettingWelcomeImageName  = "welcome.image_name"
	SettingWelcomeImageTag   = "welcome.image_tag"
	SettingComposeBaseDomain = "compose.base_domain"
	SettingComposeEnableTLS  = "compose.enable_tls"
)

// Defaults used when the host settings are empty.
const (
	DefaultWelcomeImageName = "fabric8/launcher-creator-welcome-app"
	DefaultWelcomeImageTag  = "latest"
)

// ComposeFile is the compose file compose-support maintains in the root.
const ComposeFile = "docker-compose.yaml"

// =============================================================================
// runtime-base-support
// =============================================================================

// RuntimeBaseSupport copies the helper scripts every project shares into the
// target root, whatever part it is applied to.
type RuntimeBaseSupport struct {
	generator.Base
}

// NewRuntimeBaseSupport is the factory of runtime-base-support.
func NewRuntimeBaseSupport(info *generator.Info, gctx generator.Context) generator.Generator {
	return &RuntimeBaseSupport{Base: generator.NewBase(info, gctx)}
}

func (g *RuntimeBaseSupport) Apply(_ context.Context, res *resource.Resources, p, _ *props.Properties) (*resource.Resources, error) {
	if _, err := g.CopyFilesTo(g.Ctx.RootDir, renderProps(p)); err != nil {
		return nil, err
	}
	return res, nil
}

// =============================================================================
// welcome-app
// =============================================================================

// WelcomeApp writes the welcome service resources of a deployment. It expects
// the deployment in the "deployment" property.
type WelcomeApp struct {
	generator.Base
}

// NewWelcomeApp is the factory of welcome-app.
func NewWelcomeApp(info *generator.Info, gctx generator.Context) generator.Generator {
	return &WelcomeApp{Base: generator.NewBase(info, gctx)}
}

// Apply leaves res untouched; the welcome service lives in its own file.
func (g *WelcomeApp) Apply(ctx context.Context, res *resource.Resources, p, extra *props.Properties) (*resource.Resources, error) {
	v, _ := p.Get(KeyDeployment)
	d, ok := v.(*descriptor.Deployment)
	if !ok || d.First() == nil {
		return nil, missing(KeyDeployment)
	}

	if _, err := g.ApplyGenerator(ctx, "runtime-base-support", res.Clone(), p, extra); err != nil {
		return nil, err
	}

	app := p.String(descriptor.KeyApplication)
	path := welcomeFile(g.Ctx.TargetDir)
	welcome, err := g.readWelcome(path, app)
	if err != nil {
		return nil, err
	}

	frontend, backend := app, app
	if p.String(descriptor.KeySubFolderName) != "" {
		frontend = naming.Name(app, "frontend")
		backend = naming.Name(app, "backend")
	}
	config, err := json.Marshal(d.First())
	if err != nil {
		return nil, err
	}
	welcome.SetParam("FRONTEND_SERVICE_NAME", frontend).
		SetParam("BACKEND_SERVICE_NAME", backend).
		SetParam("WELCOME_IMAGE_NAME", g.Setting(SettingWelcomeImageName, DefaultWelcomeImageName)).
		SetParam("WELCOME_IMAGE_TAG", g.Setting(SettingWelcomeImageTag, DefaultWelcomeImageTag)).
		SetParam("WELCOME_APP_CONFIG", string(config))

	data, err := welcome.Marshal()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write welcome resources: %w", err)
	}
	return res, nil
}

// readWelcome returns the existing welcome resources, or renders new ones.
func (g *WelcomeApp) readWelcome(path, app string) (*resource.Resources, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		welcome, err := g.LoadResources(props.New())
		if err != nil {
			return nil, err
		}
		return welcome.SetParam("APP_NAME", app), nil
	}
	if err != nil {
		return nil, err
	}
	return resource.Parse(data)
}

func welcomeFile(dir string) string {
	return filepath.Join(dir, store.MetaDir, "service.welcome.yaml")
}

// =============================================================================
// compose-support
// =============================================================================

// ComposeSupport writes a compose file running every part of the first
// application locally, refreshed after every apply.
type ComposeSupport struct {
	generator.Base
}

// NewComposeSupport is the factory of compose-support.
func NewComposeSupport(info *generator.Info, gctx generator.Context) generator.Generator {
	return &ComposeSupport{Base: generator.NewBase(info, gctx)}
}

func (g *ComposeSupport) Apply(_ context.Context, res *resource.Resources, _, _ *props.Properties) (*resource.Resources, error) {
	return res, nil
}

func (g *ComposeSupport) PostApply(_ context.Context, res *resource.Resources, _ *props.Properties, d *descriptor.Deployment) (*resource.Resources, error) {
	app := d.First()
	if app == nil {
		return res, nil
	}
	file := compose.FromApplication(app, compose.Options{
		BaseDomain: g.Setting(SettingComposeBaseDomain, ""),
		EnableTLS:  g.Ctx.Settings.Bool(SettingComposeEnableTLS),
	})
	content, err := file.Render()
	if err != nil {
		return nil, err
	}
	services, err := compose.Validate(content)
	if err != nil {
		return nil, fmt.Errorf("generated compose file is invalid: %w", err)
	}
	if err := os.WriteFile(filepath.Join(g.Ctx.RootDir, ComposeFile), content, 0o644); err != nil {
		return nil, err
	}
	g.Ctx.Logger.Debug("compose file written", "services", len(services))
	return res, nil
}
