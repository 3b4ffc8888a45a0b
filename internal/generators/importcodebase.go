package generators

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/artpar/stackgen/internal/core/analysis"
	"github.com/artpar/stackgen/internal/core/props"
	"github.com/artpar/stackgen/internal/core/resource"
	"github.com/artpar/stackgen/internal/generator"
	"github.com/artpar/stackgen/internal/shell/gitrepo"
	"github.com/artpar/stackgen/internal/shell/store"
)

// BoosterImportID is the builder image of code bases that carry their own
// deployment resources.
const BoosterImportID = "booster-import"

// SourceRepositoryParam is the template parameter holding the git URL.
const SourceRepositoryParam = "SOURCE_REPOSITORY_URL"

// ErrNoBuilderImage is returned when no builder image matches a code base.
var ErrNoBuilderImage = errors.New("unable to determine builder image")

// ImportCodebase clones a git repository into the working directory and sets
// up the build of its language.
type ImportCodebase struct {
	generator.Base
}

// NewImportCodebase is the factory of import-codebase.
func NewImportCodebase(info *generator.Info, gctx generator.Context) generator.Generator {
	return &ImportCodebase{Base: generator.NewBase(info, gctx)}
}

func (g *ImportCodebase) Apply(ctx context.Context, res *resource.Resources, p, extra *props.Properties) (*resource.Resources, error) {
	enums, err := g.Ctx.Registry.Enums()
	if err != nil {
		return nil, err
	}
	images := analysis.BuilderImages(enums)
	image, found := g.requestedImage(images, p)

	url := p.String("gitImportUrl")
	var imported *resource.Resources
	if url != "" {
		err := gitrepo.WithClone(ctx, url, p.String("gitImportBranch"), func(dir string) error {
			if !found {
				files, err := gitrepo.ListFiles(dir)
				if err != nil {
					return err
				}
				image, found = analysis.Detect(files, images)
			}
			if found && image.ID == BoosterImportID {
				if imported, err = store.NewFileStore().ReadResources(dir); err != nil {
					return err
				}
			}
			if p.Bool("overlayOnly") {
				return nil
			}
			if !p.Bool("keepGitFolder") {
				if err := gitrepo.RemoveGitDir(dir); err != nil {
					return err
				}
			}
			if err := os.MkdirAll(g.Ctx.TargetDir, 0o755); err != nil {
				return err
			}
			return gitrepo.CopyTree(dir, g.Ctx.TargetDir)
		})
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", url, err)
		}
	}
	if !found {
		return nil, ErrNoBuilderImage
	}
	g.Ctx.Logger.Debug("builder image selected", "image", image.ID, "language", image.Language)

	if image.ID == BoosterImportID {
		if imported == nil {
			if imported, err = store.NewFileStore().ReadResources(g.Ctx.TargetDir); err != nil {
				return nil, err
			}
		}
		res = res.Add(imported)
	} else {
		lp := p.Clone().
			Set("builderImage", image.Image).
			Set("builderLanguage", image.Language)
		if res, err = g.ApplyGenerator(ctx, "language-"+image.Language, res, lp, extra); err != nil {
			return nil, err
		}
	}

	if url != "" && res.Parameter(SourceRepositoryParam) != nil {
		res.SetParam(SourceRepositoryParam, url)
	}
	return res, nil
}

// requestedImage resolves the builderImage or builderLanguage property.
func (g *ImportCodebase) requestedImage(images []analysis.BuilderImage, p *props.Properties) (analysis.BuilderImage, bool) {
	if id := p.String("builderImage"); id != "" {
		return analysis.ByID(images, id)
	}
	if lang := p.String("builderLanguage"); lang != "" {
		for _, img := range images {
			if img.Language == lang {
				return img, true
			}
		}
	}
	return analysis.BuilderImage{}, false
}
