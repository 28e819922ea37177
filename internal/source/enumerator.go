package source

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pkg/errors"
)

// Enumerator is the source-enumeration collaborator contract. The pipeline
// calls BySourcePath to discover its input files; no primitive in
// primitive.Base exposes either query to user code.
type Enumerator interface {
	// BySourcePath enumerates all known sources whose canonical path is
	// under base and whose full path matches match.
	BySourcePath(base string, match *regexp.Regexp) ([]*File, error)
	// ByDirectory enumerates files directly under dir whose name matches
	// match.
	ByDirectory(dir string, match *regexp.Regexp) ([]*File, error)
}

// FilesystemEnumerator implements Enumerator by walking the local
// filesystem. It stands in for the build tool's real source-tracking
// database (which additionally recognizes checked-in vs. generated
// files); that integration is outside this repository's scope.
type FilesystemEnumerator struct {
	Package string
}

func (e FilesystemEnumerator) BySourcePath(base string, match *regexp.Regexp) ([]*File, error) {
	var out []*File
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !match.MatchString(path) {
			return nil
		}
		f, ferr := e.load(path)
		if ferr != nil {
			return ferr
		}
		out = append(out, f)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "enumerating sources under %s", base)
	}
	return out, nil
}

func (e FilesystemEnumerator) ByDirectory(dir string, match *regexp.Regexp) ([]*File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading directory %s", dir)
	}
	var out []*File
	for _, entry := range entries {
		if entry.IsDir() || !match.MatchString(entry.Name()) {
			continue
		}
		f, ferr := e.load(filepath.Join(dir, entry.Name()))
		if ferr != nil {
			return nil, ferr
		}
		out = append(out, f)
	}
	return out, nil
}

func (e FilesystemEnumerator) load(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return NewFile(path, e.Package, string(content)), nil
}
