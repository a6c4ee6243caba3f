// SPDX-License-Identifier: MPL-2.0

package vfs

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Directory is a VFS rooted at a real directory. Its prefix is the base
// directory exactly as it was given, so signatures read like file paths.
type Directory struct {
	base string
}

// NewDirectory returns a Directory rooted at base. The base is not required to
// exist; lookups against a missing base simply find nothing.
func NewDirectory(base string) (*Directory, error) {
	if base == "" {
		return nil, ErrEmptyBase
	}
	return &Directory{base: base}, nil
}

// MustDirectory is like NewDirectory but panics on error. It is meant for
// static search path setup and tests.
func MustDirectory(base string) *Directory {
	d, err := NewDirectory(base)
	if err != nil {
		panic(err)
	}
	return d
}

// Base returns the base directory.
func (d *Directory) Base() string { return d.base }

// Prefix implements VFS.
func (d *Directory) Prefix() string { return d.base }

// Exists implements VFS.
func (d *Directory) Exists(name string) bool {
	p, ok := d.resolve(name)
	if !ok {
		return false
	}
	info, err := os.Stat(p)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// Size implements VFS.
func (d *Directory) Size(name string) (int64, error) {
	p, ok := d.resolve(name)
	if !ok {
		return 0, &os.PathError{Op: "size", Path: name, Err: ErrInvalidPath}
	}
	info, err := os.Stat(p)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, &os.PathError{Op: "size", Path: p, Err: ErrNotRegular}
	}
	return info.Size(), nil
}

// Read implements VFS. The file handle is opened and released within the call.
func (d *Directory) Read(name string) ([]byte, error) {
	p, ok := d.resolve(name)
	if !ok {
		return nil, &os.PathError{Op: "read", Path: name, Err: ErrInvalidPath}
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// resolve maps name below the base directory. Names that climb out of the
// base after cleaning are rejected.
func (d *Directory) resolve(name string) (string, bool) {
	clean := path.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
		return "", false
	}
	return filepath.Join(d.base, filepath.FromSlash(clean)), true
}
