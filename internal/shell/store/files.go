package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/artpar/stackgen/internal/core/descriptor"
	"github.com/artpar/stackgen/internal/core/resource"
)

// Locations of the state files, relative to a working or target directory.
const (
	MetaDir        = ".openshiftio"
	ResourcesFile  = "application.yaml"
	DeploymentFile = "deployment.json"
)

// ResourcesPath returns the resource tree file of a working directory.
func ResourcesPath(dir string) string {
	return filepath.Join(dir, MetaDir, ResourcesFile)
}

// DeploymentPath returns the deployment descriptor file of a target root.
func DeploymentPath(root string) string {
	return filepath.Join(root, MetaDir, DeploymentFile)
}

// =============================================================================
// FileStore
// =============================================================================

// FileStore keeps composition state in the target directory itself.
// It assumes a single writer per target directory.
type FileStore struct{}

// NewFileStore creates a FileStore.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// ReadResources reads the resource tree of dir. A missing file yields an
// empty tree.
func (s *FileStore) ReadResources(dir string) (*resource.Resources, error) {
	path := ResourcesPath(dir)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return resource.New(), nil
	}
	if err != nil {
		return nil, NewStoreError("ReadResources", "resources", path, err.Error(), ErrReadFailed)
	}
	res, err := resource.Parse(data)
	if err != nil {
		return nil, NewStoreError("ReadResources", "resources", path, err.Error(), ErrInvalidData)
	}
	return res, nil
}

// WriteResources writes the resource tree of dir. An empty tree is not
// written.
func (s *FileStore) WriteResources(dir string, res *resource.Resources) error {
	if res.IsEmpty() {
		return nil
	}
	path := ResourcesPath(dir)
	data, err := res.Marshal()
	if err != nil {
		return NewStoreError("WriteResources", "resources", path, err.Error(), ErrInvalidData)
	}
	if err := writeAtomic(path, data); err != nil {
		return NewStoreError("WriteResources", "resources", path, err.Error(), ErrWriteFailed)
	}
	return nil
}

// ReadDeployment reads the deployment descriptor of root. A missing file
// yields an empty deployment.
func (s *FileStore) ReadDeployment(root string) (*descriptor.Deployment, error) {
	path := DeploymentPath(root)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return descriptor.New(), nil
	}
	if err != nil {
		return nil, NewStoreError("ReadDeployment", "deployment", path, err.Error(), ErrReadFailed)
	}
	d := descriptor.New()
	if err := json.Unmarshal(data, d); err != nil {
		return nil, NewStoreError("ReadDeployment", "deployment", path, err.Error(), ErrInvalidData)
	}
	if d.Applications == nil {
		d.Applications = []*descriptor.Application{}
	}
	return d, nil
}

// WriteDeployment writes the deployment descriptor of root.
func (s *FileStore) WriteDeployment(root string, d *descriptor.Deployment) error {
	path := DeploymentPath(root)
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return NewStoreError("WriteDeployment", "deployment", path, err.Error(), ErrInvalidData)
	}
	if err := writeAtomic(path, append(data, '\n')); err != nil {
		return NewStoreError("WriteDeployment", "deployment", path, err.Error(), ErrWriteFailed)
	}
	return nil
}

// writeAtomic writes data to a temp file next to path and renames it over
// path, so readers never see a partial file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
