// SPDX-License-Identifier: MPL-2.0

// Package bundle implements zip module bundles.
//
// A bundle is a zip archive whose entries are module files laid out exactly as
// they would be under a search path directory. An optional "bundle.toml"
// manifest at the archive root names the bundle:
//
//	name = "com.example.shlib"
//	description = "shared shell helpers"
//
// Bundle names follow RDNS conventions: start with a letter, contain only
// alphanumeric characters, with optional dot-separated segments.
//
// An opened Bundle is an opaque vfs.VFS. Its prefix is "VFS:#<bundle:NAME>"
// when the manifest names it and "VFS:#<zip:ABSPATH>" otherwise.
package bundle

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/invowk/requireplus/pkg/vfs"
)

const (
	// Suffix is the file suffix of bundle archives.
	Suffix = ".zip"
	// ManifestFile is the manifest entry name at the archive root.
	ManifestFile = "bundle.toml"
)

// bundleNameRegex validates bundle names.
// Compatible with RDNS naming (e.g., "com.example.shlib")
var bundleNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*(\.[a-zA-Z][a-zA-Z0-9]*)*$`)

var (
	// ErrInvalidName is returned when a bundle name does not follow the naming rules.
	ErrInvalidName = errors.New("invalid bundle name")
	// ErrInvalidManifest is returned when bundle.toml cannot be decoded.
	ErrInvalidManifest = errors.New("invalid bundle manifest")
)

type (
	// Manifest is the content of bundle.toml.
	Manifest struct {
		Name        string `toml:"name"`
		Description string `toml:"description,omitempty"`
	}

	// ManifestError describes a manifest that could not be decoded or validated.
	ManifestError struct {
		Archive string
		Err     error
	}

	// Bundle is an opened zip bundle. It implements vfs.VFS and must be
	// closed when the session that searches it is done.
	Bundle struct {
		path     string
		manifest *Manifest
		reader   *zip.ReadCloser
		entries  map[string]*zip.File
	}
)

// Error implements the error interface.
func (e *ManifestError) Error() string {
	return fmt.Sprintf("bundle %s: %v", e.Archive, e.Err)
}

// Unwrap returns ErrInvalidManifest for errors.Is() compatibility.
func (e *ManifestError) Unwrap() []error {
	return []error{ErrInvalidManifest, e.Err}
}

// IsBundle reports whether path looks like a bundle archive.
// This is a quick check on the suffix and file type only.
func IsBundle(p string) bool {
	if !strings.EqualFold(filepath.Ext(p), Suffix) {
		return false
	}
	info, err := os.Stat(p)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// ValidateName checks if a bundle name is valid.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: name cannot start with a dot", ErrInvalidName)
	}
	if !bundleNameRegex.MatchString(name) {
		return fmt.Errorf("%w: '%s' must start with a letter, contain only alphanumeric characters, with optional dot-separated segments (e.g., 'shlib', 'com.example.shlib')", ErrInvalidName, name)
	}
	return nil
}

// ParseManifest decodes and validates bundle.toml content.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if err := ValidateName(m.Name); err != nil {
		return nil, err
	}
	return &m, nil
}

// Marshal encodes the manifest as TOML.
func (m *Manifest) Marshal() ([]byte, error) {
	if err := ValidateName(m.Name); err != nil {
		return nil, err
	}
	return toml.Marshal(m)
}

// Open opens the bundle archive at p and indexes its file entries.
func Open(p string) (*Bundle, error) {
	absPath, err := filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	reader, err := zip.OpenReader(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}

	b := &Bundle{
		path:    absPath,
		reader:  reader,
		entries: make(map[string]*zip.File, len(reader.File)),
	}
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		name, ok := entryName(file.Name)
		if !ok {
			continue
		}
		b.entries[name] = file
	}

	if mf, ok := b.entries[ManifestFile]; ok {
		data, err := readEntry(mf)
		if err == nil {
			b.manifest, err = ParseManifest(data)
		}
		if err != nil {
			_ = reader.Close()
			return nil, &ManifestError{Archive: absPath, Err: err}
		}
	}

	return b, nil
}

// Close releases the archive.
func (b *Bundle) Close() error {
	return b.reader.Close()
}

// Path returns the absolute archive path.
func (b *Bundle) Path() string { return b.path }

// Manifest returns the decoded manifest, or nil when the archive has none.
func (b *Bundle) Manifest() *Manifest { return b.manifest }

// Name returns the manifest name, or an empty string.
func (b *Bundle) Name() string {
	if b.manifest == nil {
		return ""
	}
	return b.manifest.Name
}

// Files returns the module file names in the archive, sorted.
func (b *Bundle) Files() []string {
	names := make([]string, 0, len(b.entries))
	for name := range b.entries {
		if name == ManifestFile {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prefix implements vfs.VFS.
func (b *Bundle) Prefix() string {
	if b.manifest != nil {
		return vfs.OpaquePrefix("bundle:" + b.manifest.Name)
	}
	return vfs.OpaquePrefix("zip:" + filepath.ToSlash(b.path))
}

// Exists implements vfs.VFS.
func (b *Bundle) Exists(name string) bool {
	_, ok := b.lookup(name)
	return ok
}

// Size implements vfs.VFS.
func (b *Bundle) Size(name string) (int64, error) {
	f, ok := b.lookup(name)
	if !ok {
		return 0, &os.PathError{Op: "size", Path: name, Err: os.ErrNotExist}
	}
	return int64(f.UncompressedSize64), nil
}

// Read implements vfs.VFS. The entry is opened and closed within the call.
func (b *Bundle) Read(name string) ([]byte, error) {
	f, ok := b.lookup(name)
	if !ok {
		return nil, &os.PathError{Op: "read", Path: name, Err: os.ErrNotExist}
	}
	data, err := readEntry(f)
	if err != nil {
		return nil, fmt.Errorf("read %s in %s: %w", name, b.path, err)
	}
	return data, nil
}

func (b *Bundle) lookup(name string) (*zip.File, bool) {
	key, ok := entryName(name)
	if !ok || key == ManifestFile {
		return nil, false
	}
	f, ok := b.entries[key]
	return f, ok
}

// entryName normalizes an archive or lookup path. Entries that would escape
// the archive root are rejected.
func entryName(name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(name, "/") {
		name = strings.TrimLeft(name, "/")
	}
	cleaned := path.Clean(name)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", false
	}
	return cleaned, true
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(io.LimitReader(rc, int64(f.UncompressedSize64)+1))
}
