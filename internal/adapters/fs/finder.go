package fs

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/zerr"

	"go.trai.ch/ilview/internal/core/domain"
	"go.trai.ch/ilview/internal/core/ports"
)

var _ ports.AssemblyFinder = (*Finder)(nil)

// Finder discovers and checks assemblies on disk.
type Finder struct {
	walker *Walker
}

// NewFinder creates a new Finder.
func NewFinder(walker *Walker) *Finder {
	return &Finder{walker: walker}
}

// Find returns the absolute path of every assembly below root, sorted.
func (f *Finder) Find(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve search root"), "path", root)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to stat search root"), "path", root)
	}
	if !info.IsDir() {
		return nil, zerr.With(zerr.New("search root is not a directory"), "path", root)
	}

	var found []string
	for path := range f.walker.WalkFiles(root) {
		if IsAssembly(path) {
			found = append(found, path)
		}
	}
	slices.Sort(found)
	return found, nil
}

// Check turns a user-supplied path into a clean absolute path and verifies the
// file can be read. Surrounding double quotes, as left by "copy as path" on
// Windows, are removed.
func (f *Finder) Check(raw, cwd string) (string, error) {
	path := strings.TrimSpace(raw)
	if len(path) >= 2 && strings.HasPrefix(path, `"`) && strings.HasSuffix(path, `"`) {
		path = path[1 : len(path)-1]
	}
	if path == "" {
		return "", zerr.With(zerr.Wrap(domain.ErrAssemblyUnreadable, "empty path"), "path", raw)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	path = filepath.Clean(path)

	file, err := os.Open(path) //nolint:gosec // the user picked this file
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrAssemblyUnreadable, err.Error()), "path", path)
	}
	defer file.Close() //nolint:errcheck // read-only handle

	info, err := file.Stat()
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrAssemblyUnreadable, err.Error()), "path", path)
	}
	if info.IsDir() {
		return "", zerr.With(zerr.Wrap(domain.ErrAssemblyUnreadable, "is a directory"), "path", path)
	}
	return path, nil
}

// IsAssembly reports whether path has one of the managed binary extensions.
func IsAssembly(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(domain.AssemblyExtensions, ext)
}
