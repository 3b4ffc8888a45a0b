package compose

import (
	"context"
	"sort"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Validation Functions
// =============================================================================

// Validate loads a compose document with compose-go and returns its service
// names, sorted. Nothing is resolved against the file system.
func Validate(content []byte) ([]string, error) {
	if strings.TrimSpace(string(content)) == "" {
		return nil, ErrEmptyInput
	}

	project, err := load(content)
	if err != nil {
		return nil, err
	}
	if len(project.Services) == 0 {
		return nil, ErrNoServices
	}

	names := make([]string, 0, len(project.Services))
	deps := make(map[string][]string, len(project.Services))
	for name, svc := range project.Services {
		if svc.Image == "" && svc.Build == nil {
			return nil, NewParseError("services."+name, "service must have image or build", ErrServiceNoImage)
		}
		names = append(names, name)
		for dep := range svc.DependsOn {
			deps[name] = append(deps[name], dep)
		}
	}
	sort.Strings(names)

	if hasCycle(names, deps) {
		return nil, NewParseError("", "circular dependency detected", ErrCircularDependency)
	}
	return names, nil
}

// hasCycle runs a depth-first search over depends_on edges.
func hasCycle(names []string, deps map[string][]string) bool {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var visit func(node string) bool
	visit = func(node string) bool {
		visited[node] = true
		onStack[node] = true
		for _, dep := range deps[node] {
			if onStack[dep] {
				return true
			}
			if !visited[dep] && visit(dep) {
				return true
			}
		}
		onStack[node] = false
		return false
	}

	for _, n := range names {
		if !visited[n] && visit(n) {
			return true
		}
	}
	return false
}

func load(content []byte) (*types.Project, error) {
	var dict map[string]any
	if err := yaml.Unmarshal(content, &dict); err != nil || dict == nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}

	name, _ := dict["name"].(string)
	if name == "" {
		name = "stackgen"
	}

	project, err := loader.LoadWithContext(context.Background(), types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Content: content,
				Config:  dict,
			},
		},
	}, func(opts *loader.Options) {
		opts.SetProjectName(name, false)
		opts.SkipNormalization = true
		opts.SkipExtends = true
	})
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "dependency cycle detected"):
			return nil, NewParseError("", "circular dependency detected", ErrCircularDependency)
		case strings.Contains(msg, "image") && strings.Contains(msg, "build"):
			return nil, NewParseError("", "service must have image or build", ErrServiceNoImage)
		}
		return nil, NewParseError("", msg, ErrInvalidCompose)
	}
	return project, nil
}
