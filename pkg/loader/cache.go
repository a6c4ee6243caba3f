// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"
	"path"
	"strings"

	"github.com/invowk/requireplus/pkg/vfs"
)

// MakeSignature returns the identity of path inside v: the provider prefix and
// the lexically cleaned path joined by exactly one slash.
func MakeSignature(v vfs.VFS, p string) string {
	return joinPath(v.Prefix(), path.Clean(p))
}

// joinPath joins a and b with exactly one slash between them.
func joinPath(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return strings.TrimRight(a, "/") + "/" + strings.TrimLeft(b, "/")
}

// loadOnce runs the collaborator of form for p unless its signature is
// already loaded. The signature is recorded only after the collaborator
// succeeds; its error is returned as is. A module that required itself while
// running is recorded once.
func (s *Session) loadOnce(ctx context.Context, v vfs.VFS, p string, form Form) (bool, error) {
	if err := s.claimPrefix(v); err != nil {
		return false, err
	}
	sig := MakeSignature(v, p)
	if s.IsLoaded(sig) {
		s.logger.Debug("already loaded", "signature", sig)
		return false, nil
	}

	if err := s.execute(ctx, v, p, sig, form); err != nil {
		return false, err
	}

	if !s.IsLoaded(sig) {
		s.loaded[sig] = struct{}{}
		s.order = append(s.order, sig)
	}
	s.logger.Debug("loaded", "signature", sig, "form", form)
	return true, nil
}

// execute reads p and hands it to the collaborator of form with the
// signature as caller identity.
func (s *Session) execute(ctx context.Context, v vfs.VFS, p, sig string, form Form) error {
	if s.maxDepth > 0 && s.depth >= s.maxDepth {
		return &LoadDepthError{Signature: sig, Depth: s.depth}
	}

	data, err := v.Read(p)
	if err != nil {
		return err
	}

	s.depth++
	defer func() { s.depth-- }()

	a := Artifact{VFS: v, Path: p, Signature: sig, Data: data}
	ctx = WithCaller(WithSession(ctx, s), sig)

	s.logger.Debug("executing", "signature", sig, "form", form, "bytes", len(data), "depth", s.depth)
	switch form {
	case FormSource:
		return s.source.CompileAndRun(ctx, a)
	case FormBytecode:
		return s.bytecode.LoadAndRun(ctx, a)
	default:
		return s.native.LinkAndInit(ctx, a)
	}
}
