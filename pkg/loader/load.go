// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"
	"path/filepath"

	"github.com/invowk/requireplus/pkg/vfs"
)

// Load runs file as source unconditionally. Relative names are taken from the
// working directory; no extension is appended, nothing is deduplicated and
// nothing is recorded. file must carry one of the source extensions, otherwise
// the error is an *UnsupportedExtensionError.
func (s *Session) Load(ctx context.Context, file string) (bool, error) {
	if err := s.checkSourceExt(file); err != nil {
		return false, err
	}

	if !filepath.IsAbs(file) {
		wd, err := s.getwd()
		if err != nil {
			return false, err
		}
		file = filepath.Join(wd, file)
	}
	base, name := filepath.Split(file)
	dir, err := vfs.NewDirectory(base)
	if err != nil {
		return false, err
	}
	return s.loadDirect(ctx, dir, filepath.ToSlash(name))
}

// LoadWithVFS is Load against an explicit provider.
func (s *Session) LoadWithVFS(ctx context.Context, file string, v vfs.VFS) (bool, error) {
	if err := s.checkSourceExt(file); err != nil {
		return false, err
	}
	return s.loadDirect(ctx, v, file)
}

func (s *Session) checkSourceExt(file string) error {
	ext := Extname(file)
	if s.source == nil || ext == "" || !s.sourceExts.Contains(ext) {
		return &UnsupportedExtensionError{File: file, Ext: ext, Allowed: s.sourceExts.Flatten()}
	}
	return nil
}

func (s *Session) loadDirect(ctx context.Context, v vfs.VFS, name string) (bool, error) {
	if !v.Exists(name) {
		return false, &NotFoundError{Feature: name}
	}
	sig := MakeSignature(v, name)
	s.logger.Debug("load", "signature", sig)
	if err := s.execute(ctx, v, name, sig, FormSource); err != nil {
		return false, err
	}
	return true, nil
}
