package source_test

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loomc/internal/source"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFilesystemEnumeratorBySourcePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.loom", "def a = 1")
	writeFile(t, dir, "sub/b.loom", "def b = 2")
	writeFile(t, dir, "notes.txt", "ignore me")

	e := source.FilesystemEnumerator{Package: "widgets"}
	files, err := e.BySourcePath(dir, regexp.MustCompile(`\.loom$`))
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, f := range files {
		assert.Equal(t, "widgets", f.Package)
	}
}

func TestFilesystemEnumeratorByDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.loom", "def a = 1")
	writeFile(t, dir, "sub/b.loom", "def b = 2")

	e := source.FilesystemEnumerator{Package: "widgets"}
	files, err := e.ByDirectory(dir, regexp.MustCompile(`\.loom$`))
	require.NoError(t, err)
	require.Len(t, files, 1, "ByDirectory does not recurse into subdirectories")
	assert.Equal(t, "a.loom", filepath.Base(files[0].Path))
}

func TestFilesystemEnumeratorMissingDirectory(t *testing.T) {
	e := source.FilesystemEnumerator{Package: "widgets"}
	_, err := e.ByDirectory(filepath.Join(t.TempDir(), "does-not-exist"), regexp.MustCompile(`.*`))
	assert.Error(t, err)
}
