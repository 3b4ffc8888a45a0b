package catalogfs

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"enums.yaml":                   {Data: []byte("runtime.name:\n  - id: quarkus\n")},
		"rest-quarkus/info.yaml":       {Data: []byte("type: generator\n")},
		"rest-quarkus/resources.yaml":  {Data: []byte("kind: Template\n")},
		"rest-quarkus/files/README.md": {Data: []byte("# ${application}\n")},
		"no-info/files/x.txt":          {Data: []byte("x")},
		"capability-rest/info.yaml":    {Data: []byte("type: capability\n")},
		"stray.txt":                    {Data: []byte("ignored")},
	}
}

func TestSource_ReadInfo(t *testing.T) {
	s := New(testFS())

	data, err := s.ReadInfo("rest-quarkus")
	require.NoError(t, err)
	assert.Equal(t, "type: generator\n", string(data))

	_, err = s.ReadInfo("missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	for _, bad := range []string{"", ".", "../etc", "a/b"} {
		_, err = s.ReadInfo(bad)
		assert.ErrorIs(t, err, fs.ErrNotExist, bad)
	}
}

func TestSource_ReadEnums(t *testing.T) {
	data, err := New(testFS()).ReadEnums()
	require.NoError(t, err)
	assert.Contains(t, string(data), "quarkus")

	_, err = New(fstest.MapFS{}).ReadEnums()
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestSource_Files(t *testing.T) {
	s := New(testFS())

	files, err := s.Files("rest-quarkus")
	require.NoError(t, err)
	data, err := fs.ReadFile(files, "files/README.md")
	require.NoError(t, err)
	assert.Equal(t, "# ${application}\n", string(data))

	_, err = s.Files("missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = s.Files("stray.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestSource_Names(t *testing.T) {
	names, err := New(testFS()).Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"capability-rest", "rest-quarkus"}, names)
}

func TestDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "gen"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gen", "info.yaml"), []byte("name: Gen\n"), 0o644))

	s, err := Dir(dir)
	require.NoError(t, err)
	data, err := s.ReadInfo("gen")
	require.NoError(t, err)
	assert.Equal(t, "name: Gen\n", string(data))

	_, err = Dir(filepath.Join(dir, "missing"))
	assert.Error(t, err)

	_, err = Dir(filepath.Join(dir, "gen", "info.yaml"))
	assert.Error(t, err)
}
