package engine

import (
	"context"
	"fmt"

	"github.com/artpar/stackgen/internal/core/descriptor"
	"github.com/artpar/stackgen/internal/core/props"
)

// ApplyDeployment re-applies every generator recorded in d to the target
// root, application by application and part by part, in recorded order. Each
// generator gets its recorded properties plus the part's shared values it
// declares. It stops at the first error and returns the resulting descriptor
// along with every post-apply failure seen.
func (c *Composer) ApplyDeployment(ctx context.Context, root string, d *descriptor.Deployment) (*descriptor.Deployment, []PostApplyFailure, error) {
	current := descriptor.New()
	var failures []PostApplyFailure

	for _, app := range d.Applications {
		for _, part := range app.Parts {
			for _, g := range part.Generators {
				def, err := c.snapshot.InfoDef(g.Module)
				if err != nil {
					return current, failures, err
				}
				shared := part.Shared.Filter(func(k string, _ any) bool { return def.Declares(k) })

				result, err := c.Apply(ctx, Request{
					TargetDir:   root,
					Module:      g.Module,
					Application: app.Application,
					SubFolder:   part.FolderName(),
					Props:       props.Merged(shared, g.Props),
				})
				if err != nil {
					return current, failures, fmt.Errorf("%s: %w", app.Application, err)
				}
				current = result.Deployment
				failures = append(failures, result.PostApplyFailures...)
			}
		}
	}
	return current, failures, nil
}
