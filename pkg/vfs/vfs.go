// SPDX-License-Identifier: MPL-2.0

package vfs

import (
	"errors"
	"fmt"
)

// OpaquePrefixFormat is the prefix template for providers that are not backed
// by a real directory. The name between the angle brackets is chosen by the
// provider.
const OpaquePrefixFormat = "VFS:#<%s>"

var (
	// ErrNotRegular is returned when a path names something other than a regular file.
	ErrNotRegular = errors.New("not a regular file")
	// ErrInvalidPath is returned when a path escapes the provider root.
	ErrInvalidPath = errors.New("invalid path")
	// ErrEmptyBase is returned when a Directory is created without a base directory.
	ErrEmptyBase = errors.New("empty base directory")
)

// VFS is the capability set the loader needs from a module source.
//
// Paths are slash separated and relative to the provider root. Exists must
// report false for directories. Size and Read may be called only after Exists
// returned true, but implementations must still fail cleanly if the file
// disappeared in between.
type VFS interface {
	// Exists reports whether name is a regular file.
	Exists(name string) bool
	// Size returns the size of name in bytes.
	Size(name string) (int64, error)
	// Read returns the full content of name.
	Read(name string) ([]byte, error)
	// Prefix returns the identity tag used to build signatures.
	Prefix() string
}

// OpaquePrefix formats the prefix of a provider identified by name.
func OpaquePrefix(name string) string {
	return fmt.Sprintf(OpaquePrefixFormat, name)
}

// Describe returns a short human-readable description of v for listings.
func Describe(v VFS) string {
	if v == nil {
		return "<nil>"
	}
	if d, ok := v.(*Directory); ok {
		return "dir " + d.Base()
	}
	return fmt.Sprintf("%T %s", v, v.Prefix())
}
