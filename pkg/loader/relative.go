// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"
	"path"
	"strings"

	"github.com/invowk/requireplus/pkg/vfs"
)

// FindVFS returns the provider on the search path that owns caller, and the
// directory of caller inside that provider ("." at the provider root).
// A provider owns caller when caller starts with its prefix and a slash and
// the remainder names an existing file in it. The first owner wins.
func (s *Session) FindVFS(caller string) (vfs.VFS, string, bool) {
	for _, v := range s.searchPath {
		head := strings.TrimRight(v.Prefix(), "/") + "/"
		rest, ok := strings.CutPrefix(caller, head)
		if !ok || rest == "" || !v.Exists(rest) {
			continue
		}
		return v, path.Dir(rest), true
	}
	return nil, "", false
}

// RequireRelative loads feature relative to the module executing in ctx.
// Only the provider owning the caller is searched. The error is a
// *VFSMismatchError when ctx carries no caller or no provider owns it, and a
// *NotFoundError when no form of the target exists.
func (s *Session) RequireRelative(ctx context.Context, feature string) (bool, error) {
	caller, _ := CallerFromContext(ctx)
	return s.RequireRelativeTo(ctx, feature, caller)
}

// RequireRelativeTo is RequireRelative with an explicit caller signature.
func (s *Session) RequireRelativeTo(ctx context.Context, feature, caller string) (bool, error) {
	if caller == "" {
		return false, &VFSMismatchError{}
	}
	v, base, ok := s.FindVFS(caller)
	if !ok {
		return false, &VFSMismatchError{Caller: caller}
	}

	target := feature
	if base != "." {
		target = joinPath(base, feature)
	}
	s.logger.Debug("require_relative", "feature", feature, "caller", caller, "target", target)

	if loaded, found, err := s.requireIn(ctx, v, target); found {
		return loaded, err
	}
	return false, &NotFoundError{Feature: target}
}
