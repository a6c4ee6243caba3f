// SPDX-License-Identifier: MPL-2.0

package vfs

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// FS adapts an io/fs.FS into an opaque VFS. Useful for embed.FS trees
// shipped inside the host binary and for in-memory trees in tests.
type FS struct {
	name string
	fsys fs.FS
}

// NewFS wraps fsys. The name becomes part of the prefix "VFS:#<name>" and
// must be unique among the providers of one search path.
func NewFS(name string, fsys fs.FS) *FS {
	return &FS{name: name, fsys: fsys}
}

// Name returns the provider name.
func (f *FS) Name() string { return f.name }

// Prefix implements VFS.
func (f *FS) Prefix() string { return OpaquePrefix(f.name) }

// Exists implements VFS.
func (f *FS) Exists(name string) bool {
	p, ok := fsPath(name)
	if !ok {
		return false
	}
	info, err := fs.Stat(f.fsys, p)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// Size implements VFS.
func (f *FS) Size(name string) (int64, error) {
	p, ok := fsPath(name)
	if !ok {
		return 0, &fs.PathError{Op: "size", Path: name, Err: ErrInvalidPath}
	}
	info, err := fs.Stat(f.fsys, p)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, &fs.PathError{Op: "size", Path: name, Err: ErrNotRegular}
	}
	return info.Size(), nil
}

// Read implements VFS.
func (f *FS) Read(name string) ([]byte, error) {
	p, ok := fsPath(name)
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: ErrInvalidPath}
	}
	data, err := fs.ReadFile(f.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("read %s in %s: %w", name, f.Prefix(), err)
	}
	return data, nil
}

// fsPath converts a loader path into an io/fs path. io/fs paths are unrooted
// and may not contain "." or ".." elements after cleaning; names climbing
// above the root are rejected.
func fsPath(name string) (string, bool) {
	p := path.Clean(strings.TrimPrefix(name, "/"))
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", false
	}
	return p, fs.ValidPath(p) && p != "."
}
