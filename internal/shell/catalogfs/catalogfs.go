// Package catalogfs reads generator catalog data from a file system: the
// embedded default catalog or a directory on disk.
//
// Layout:
//
//	enums.yaml
//	<generator>/info.yaml
//	<generator>/resources.yaml   (optional)
//	<generator>/files/...        (optional)
package catalogfs

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
)

const (
	infoFile  = "info.yaml"
	enumsFile = "enums.yaml"
)

// Source serves catalog data from an fs.FS.
type Source struct {
	fsys fs.FS
}

// New creates a Source over fsys.
func New(fsys fs.FS) *Source {
	return &Source{fsys: fsys}
}

// Dir creates a Source over a directory on disk.
func Dir(dir string) (*Source, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog directory: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("catalog directory: %s is not a directory", dir)
	}
	return New(os.DirFS(dir)), nil
}

// ReadInfo returns <name>/info.yaml.
func (s *Source) ReadInfo(name string) ([]byte, error) {
	if !validName(name) {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	return fs.ReadFile(s.fsys, path.Join(name, infoFile))
}

// ReadEnums returns enums.yaml.
func (s *Source) ReadEnums() ([]byte, error) {
	return fs.ReadFile(s.fsys, enumsFile)
}

// Files returns the catalog directory of name.
func (s *Source) Files(name string) (fs.FS, error) {
	if !validName(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	st, err := fs.Stat(s.fsys, name)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return fs.Sub(s.fsys, name)
}

// Names lists the catalog entries that have an info.yaml, sorted.
func (s *Source) Names() ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := fs.Stat(s.fsys, path.Join(e.Name(), infoFile)); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// validName rejects empty names and names reaching outside one entry.
func validName(name string) bool {
	return name != "" && name != "." && fs.ValidPath(name) && path.Base(name) == name
}
