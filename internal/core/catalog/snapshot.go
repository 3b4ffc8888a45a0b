package catalog

import "sort"

// Snapshot is an immutable view of every loaded generator definition and the
// enum catalog. Definitions that failed to load keep their error so lookups
// report it instead of a generic miss.
type Snapshot struct {
	infos map[string]*ModuleInfoDef
	errs  map[string]error
	enums Enums
}

// NewSnapshot freezes the given definitions. The maps are copied.
func NewSnapshot(infos map[string]*ModuleInfoDef, errs map[string]error, enums Enums) *Snapshot {
	s := &Snapshot{
		infos: make(map[string]*ModuleInfoDef, len(infos)),
		errs:  make(map[string]error, len(errs)),
		enums: Enums{},
	}
	for k, v := range infos {
		s.infos[k] = v
	}
	for k, v := range errs {
		s.errs[k] = v
	}
	for k, v := range enums {
		s.enums[k] = append([]Enumeration(nil), v...)
	}
	return s
}

// InfoDef returns the definition of name, or the error recorded while loading it.
func (s *Snapshot) InfoDef(name string) (*ModuleInfoDef, error) {
	if err, ok := s.errs[name]; ok {
		return nil, err
	}
	if def, ok := s.infos[name]; ok {
		return def, nil
	}
	return nil, NewLookupError(name, "", ErrUnknownModule)
}

// Enums returns the enum catalog.
func (s *Snapshot) Enums() Enums {
	return s.enums
}

// Names returns the names with a loaded definition, sorted.
func (s *Snapshot) Names() []string {
	names := make([]string, 0, len(s.infos))
	for k := range s.infos {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
