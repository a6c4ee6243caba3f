// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"strings"

	"github.com/invowk/requireplus/pkg/vfs"
)

// Find looks for name in v using the extensions of spec.
//
// The first pass accepts name as given when its extension is one of the
// spec's extensions. The second pass appends each extension in turn. In both
// passes a candidate counts only if it exists and is smaller than the
// load-size limit; a file that cannot be sized is treated as absent.
func (s *Session) Find(v vfs.VFS, name string, spec ExtSpec) (string, bool) {
	exts := spec.Flatten()
	ext := Extname(name)

	for _, e := range exts {
		if ext == e && s.fits(v, name) {
			return name, true
		}
	}
	for _, e := range exts {
		candidate := name + e
		if s.fits(v, candidate) {
			return candidate, true
		}
	}
	return "", false
}

func (s *Session) fits(v vfs.VFS, name string) bool {
	if !v.Exists(name) {
		return false
	}
	size, err := v.Size(name)
	if err != nil {
		s.logger.Debug("size failed, skipping", "vfs", v.Prefix(), "path", name, "error", err)
		return false
	}
	if size >= s.loadSizeMax {
		s.logger.Debug("over load size limit, skipping", "vfs", v.Prefix(), "path", name, "size", size, "limit", s.loadSizeMax)
		return false
	}
	return true
}

// Extname returns the extension of the last element of p, including the dot.
// Names whose only dot is the leading one, such as ".profile", have no
// extension; "a." has the extension ".".
func Extname(p string) string {
	base := strings.TrimRight(p, "/")
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	dot := strings.LastIndexByte(base, '.')
	if dot <= 0 {
		return ""
	}
	return base[dot:]
}
