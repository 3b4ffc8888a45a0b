// Package template substitutes property placeholders in generator files and
// resource fragments. All functions are pure.
package template

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/artpar/stackgen/internal/core/props"
)

// =============================================================================
// Placeholder Substitution Functions
// =============================================================================

// placeholderRegex matches ${name}, ${dotted.name} and ${name:-default}.
// Groups:
//   - Group 1: property path (required)
//   - Group 2: ":-" marker when a default is given
//   - Group 3: default value
var placeholderRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_\-]*(?:\.[A-Za-z_][A-Za-z0-9_\-]*)*)(:-([^}]*))?\}`)

// Substitute replaces placeholders in text with values from p.
//
// Behavior:
//   - ${runtime.name} - replaced with the value at that path, kept as-is when missing
//   - ${port:-8080} - replaced with the value, or "8080" when missing
//   - ${name:-} - replaced with the value, or "" when missing
//   - non-string values are formatted with fmt
//
// Example:
//
//	p := props.New().Set("application", "shop").SetPath("runtime.name", "quarkus")
//	Substitute("${application}-${runtime.name}", p)
//	// Returns: "shop-quarkus"
func Substitute(text string, p *props.Properties) string {
	return placeholderRegex.ReplaceAllStringFunc(text, func(match string) string {
		sub := placeholderRegex.FindStringSubmatch(match)
		if v, ok := p.GetPath(sub[1]); ok && v != nil {
			return format(v)
		}
		if sub[2] != "" {
			return sub[3]
		}
		return match
	})
}

func format(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case *props.Properties, []any:
		return fmt.Sprint(plainOf(t))
	}
	return fmt.Sprint(v)
}

func plainOf(v any) any {
	if p, ok := v.(*props.Properties); ok {
		return p.ToMap()
	}
	return v
}

// Placeholders returns the distinct property paths referenced in text, in
// order of first appearance.
func Placeholders(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range placeholderRegex.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// Matches reports whether a slash-separated relative file path matches any of
// the glob patterns. Patterns without a slash match against the base name.
func Matches(rel string, patterns []string) bool {
	rel = strings.TrimPrefix(rel, "./")
	for _, pat := range patterns {
		target := rel
		if !strings.Contains(pat, "/") {
			target = path.Base(rel)
		}
		if ok, _ := path.Match(pat, target); ok {
			return true
		}
	}
	return false
}
