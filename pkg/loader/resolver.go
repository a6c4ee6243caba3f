// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"

	"golang.org/x/exp/slices"

	"github.com/invowk/requireplus/pkg/vfs"
)

// Resolution is the outcome of a dry-run resolution.
type Resolution struct {
	VFS       vfs.VFS
	Form      Form
	Path      string
	Signature string
	// Loaded reports whether the signature was already loaded.
	Loaded bool
}

// Require resolves feature along the search path and loads it once.
//
// Providers are tried in order; within a provider the source form is tried
// first, then bytecode, then native. The first file found ends the search:
// Require returns true if it ran the module and false if the module had been
// loaded before. When nothing matches, the error is a *NotFoundError.
func (s *Session) Require(ctx context.Context, feature string) (bool, error) {
	s.logger.Debug("require", "feature", feature)
	// Nested requires may change the search path while this walk is running.
	for _, v := range slices.Clone(s.searchPath) {
		if loaded, found, err := s.requireIn(ctx, v, feature); found {
			return loaded, err
		}
	}
	return false, &NotFoundError{Feature: feature}
}

// RequireWithVFS is Require restricted to v. The provider does not have to be
// on the search path.
func (s *Session) RequireWithVFS(ctx context.Context, feature string, v vfs.VFS) (bool, error) {
	s.logger.Debug("require", "feature", feature, "vfs", v.Prefix())
	if loaded, found, err := s.requireIn(ctx, v, feature); found {
		return loaded, err
	}
	return false, &NotFoundError{Feature: feature}
}

// Resolve reports what Require would load for feature without loading it.
func (s *Session) Resolve(feature string) (Resolution, error) {
	for _, v := range s.searchPath {
		if r, ok := s.probe(v, feature); ok {
			return r, nil
		}
	}
	return Resolution{}, &NotFoundError{Feature: feature}
}

// requireIn tries the enabled forms of feature in v. found is false only if
// no form matched.
func (s *Session) requireIn(ctx context.Context, v vfs.VFS, feature string) (loaded, found bool, err error) {
	r, ok := s.probe(v, feature)
	if !ok {
		return false, false, nil
	}
	loaded, err = s.loadOnce(ctx, v, r.Path, r.Form)
	return loaded, true, err
}

// probe finds the first enabled form of feature in v.
func (s *Session) probe(v vfs.VFS, feature string) (Resolution, bool) {
	for _, form := range Forms {
		if !s.Enabled(form) {
			continue
		}
		p, ok := s.Find(v, feature, s.Extensions(form))
		if !ok {
			continue
		}
		sig := MakeSignature(v, p)
		return Resolution{
			VFS:       v,
			Form:      form,
			Path:      p,
			Signature: sig,
			Loaded:    s.IsLoaded(sig),
		}, true
	}
	return Resolution{}, false
}
