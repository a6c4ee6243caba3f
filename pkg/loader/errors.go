// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrModuleNotFound is the sentinel error wrapped by NotFoundError.
	ErrModuleNotFound = errors.New("cannot load such file")
	// ErrVFSMismatch is the sentinel error wrapped by VFSMismatchError.
	ErrVFSMismatch = errors.New("cannot infer base path for this caller")
	// ErrUnsupportedExtension is the sentinel error wrapped by UnsupportedExtensionError.
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	// ErrLoadDepthExceeded is the sentinel error wrapped by LoadDepthError.
	ErrLoadDepthExceeded = errors.New("module load nesting too deep")
	// ErrPrefixCollision is the sentinel error wrapped by PrefixCollisionError.
	ErrPrefixCollision = errors.New("vfs prefix already on search path")
)

type (
	// NotFoundError is returned when no provider yields any form of a feature.
	// It wraps ErrModuleNotFound for errors.Is() compatibility.
	NotFoundError struct {
		Feature string
	}

	// VFSMismatchError is returned by relative requires when no provider on
	// the search path owns the caller. It wraps ErrVFSMismatch.
	VFSMismatchError struct {
		// Caller is the caller signature; empty when the context carried none.
		Caller string
	}

	// UnsupportedExtensionError is returned by direct loads of files that do
	// not carry a source extension. It wraps ErrUnsupportedExtension.
	UnsupportedExtensionError struct {
		File    string
		Ext     string
		Allowed []string
	}

	// LoadDepthError is returned when module loads nest deeper than
	// Session.MaxDepth. It wraps ErrLoadDepthExceeded.
	LoadDepthError struct {
		Signature string
		Depth     int
	}

	// PrefixCollisionError is returned when a provider would share its prefix
	// with a different provider already on the search path. It wraps
	// ErrPrefixCollision.
	PrefixCollisionError struct {
		Prefix string
	}
)

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s -- %s", ErrModuleNotFound, e.Feature)
}

// Unwrap returns ErrModuleNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrModuleNotFound }

// Error implements the error interface for VFSMismatchError.
func (e *VFSMismatchError) Error() string {
	if e.Caller == "" {
		return ErrVFSMismatch.Error() + " (no caller)"
	}
	return fmt.Sprintf("%s: %s", ErrVFSMismatch, e.Caller)
}

// Unwrap returns ErrVFSMismatch for errors.Is() compatibility.
func (e *VFSMismatchError) Unwrap() error { return ErrVFSMismatch }

// Error implements the error interface for UnsupportedExtensionError.
func (e *UnsupportedExtensionError) Error() string {
	ext := e.Ext
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("%s %s for %s (want %s)", ErrUnsupportedExtension, ext, e.File, strings.Join(e.Allowed, ", "))
}

// Unwrap returns ErrUnsupportedExtension for errors.Is() compatibility.
func (e *UnsupportedExtensionError) Unwrap() error { return ErrUnsupportedExtension }

// Error implements the error interface for LoadDepthError.
func (e *LoadDepthError) Error() string {
	return fmt.Sprintf("%s: %d nested loads at %s", ErrLoadDepthExceeded, e.Depth, e.Signature)
}

// Unwrap returns ErrLoadDepthExceeded for errors.Is() compatibility.
func (e *LoadDepthError) Unwrap() error { return ErrLoadDepthExceeded }

// Error implements the error interface for PrefixCollisionError.
func (e *PrefixCollisionError) Error() string {
	return fmt.Sprintf("%s: %q", ErrPrefixCollision, e.Prefix)
}

// Unwrap returns ErrPrefixCollision for errors.Is() compatibility.
func (e *PrefixCollisionError) Unwrap() error { return ErrPrefixCollision }
