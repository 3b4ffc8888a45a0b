package props

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// Properties
// =============================================================================

// Properties is an ordered map from string keys to arbitrary values.
// The zero value is an empty bag ready for use.
type Properties struct {
	keys   []string
	values map[string]any
}

// New creates an empty Properties.
func New() *Properties {
	return &Properties{values: make(map[string]any)}
}

// FromMap creates Properties from a plain map. Keys are sorted since Go maps
// carry no order.
func FromMap(m map[string]any) *Properties {
	p := New()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.Set(k, m[k])
	}
	return p
}

// Len returns the number of keys.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Keys returns the keys in insertion order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Has reports whether key is present.
func (p *Properties) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Get returns the value stored under key.
func (p *Properties) Get(key string) (any, bool) {
	if p == nil || p.values == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}

// Set stores value under key. An existing key keeps its position.
// Plain maps are converted to *Properties.
func (p *Properties) Set(key string, value any) *Properties {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = normalize(value)
	return p
}

// Delete removes key if present.
func (p *Properties) Delete(key string) {
	if p == nil || p.values == nil {
		return
	}
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Range calls fn for every entry in order until fn returns false.
func (p *Properties) Range(fn func(key string, value any) bool) {
	if p == nil {
		return
	}
	for _, k := range p.keys {
		if !fn(k, p.values[k]) {
			return
		}
	}
}

// =============================================================================
// Path Access
// =============================================================================

// GetPath resolves a dotted path such as "runtime.name" through nested bags.
// A literal key containing dots takes precedence.
func (p *Properties) GetPath(path string) (any, bool) {
	if v, ok := p.Get(path); ok {
		return v, true
	}
	parts := strings.Split(path, ".")
	var cur any = p
	for _, part := range parts {
		nested, ok := cur.(*Properties)
		if !ok {
			return nil, false
		}
		cur, ok = nested.Get(part)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// SetPath stores value at a dotted path, creating intermediate bags.
// A non-bag value sitting on the path is replaced.
func (p *Properties) SetPath(path string, value any) *Properties {
	parts := strings.Split(path, ".")
	cur := p
	for _, part := range parts[:len(parts)-1] {
		v, _ := cur.Get(part)
		next, ok := v.(*Properties)
		if !ok {
			next = New()
			cur.Set(part, next)
		}
		cur = next
	}
	cur.Set(parts[len(parts)-1], value)
	return p
}

// String returns the string at path, or "" when absent or not a string.
func (p *Properties) String(path string) string {
	v, ok := p.GetPath(path)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Bool returns the boolean at path. The strings "true" and "false" are accepted.
func (p *Properties) Bool(path string) bool {
	v, ok := p.GetPath(path)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	}
	return false
}

// Nested returns the bag stored under key, or nil.
func (p *Properties) Nested(key string) *Properties {
	v, _ := p.GetPath(key)
	nested, _ := v.(*Properties)
	return nested
}

// =============================================================================
// Combination
// =============================================================================

// Merge copies the entries of others into p, later values winning.
// The merge is shallow: nested bags are replaced, not combined.
func (p *Properties) Merge(others ...*Properties) *Properties {
	for _, o := range others {
		o.Range(func(k string, v any) bool {
			p.Set(k, v)
			return true
		})
	}
	return p
}

// Merged returns a new bag holding the shallow merge of all arguments,
// later arguments winning. Nil arguments are skipped.
func Merged(ps ...*Properties) *Properties {
	return New().Merge(ps...)
}

// MergeDeep copies the entries of others into p, later values winning. Bags
// present on both sides are combined key by key instead of replaced.
func (p *Properties) MergeDeep(others ...*Properties) *Properties {
	for _, o := range others {
		o.Range(func(k string, v any) bool {
			src, srcOK := v.(*Properties)
			cur, _ := p.Get(k)
			dst, dstOK := cur.(*Properties)
			if srcOK && dstOK && src != nil && dst != nil {
				p.Set(k, dst.Clone().MergeDeep(src))
			} else {
				p.Set(k, v)
			}
			return true
		})
	}
	return p
}

// MergedDeep returns a new bag holding the deep merge of all arguments.
func MergedDeep(ps ...*Properties) *Properties {
	return New().MergeDeep(ps...)
}

// Filter returns a new bag with the entries for which keep returns true.
func (p *Properties) Filter(keep func(key string, value any) bool) *Properties {
	out := New()
	p.Range(func(k string, v any) bool {
		if keep(k, v) {
			out.Set(k, v)
		}
		return true
	})
	return out
}

// Without returns a new bag without the given keys.
func (p *Properties) Without(keys ...string) *Properties {
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	return p.Filter(func(k string, _ any) bool { return !drop[k] })
}

// Clone returns a deep copy. Cloning nil yields an empty bag.
func (p *Properties) Clone() *Properties {
	out := New()
	p.Range(func(k string, v any) bool {
		out.Set(k, cloneValue(v))
		return true
	})
	return out
}

// ToMap converts the bag and every nested bag into plain maps.
func (p *Properties) ToMap() map[string]any {
	out := make(map[string]any, p.Len())
	p.Range(func(k string, v any) bool {
		out[k] = plain(v)
		return true
	})
	return out
}

// GoString keeps test failure output readable.
func (p *Properties) GoString() string {
	return fmt.Sprintf("props%v", p.ToMap())
}

// =============================================================================
// Value Helpers
// =============================================================================

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t)
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
		return FromMap(m)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	}
	return v
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Properties:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}

func plain(v any) any {
	switch t := v.(type) {
	case *Properties:
		return t.ToMap()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	}
	return v
}
