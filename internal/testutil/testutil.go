// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// MustMkdirAll creates path and its parents.
func MustMkdirAll(t testing.TB, path string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(path, perm); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

// MustWriteFile writes content to path, creating its directory first.
func MustWriteFile(t testing.TB, path, content string) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteTree writes a module tree below root. Keys of files are slash
// separated paths relative to root. It returns root.
func WriteTree(t testing.TB, root string, files map[string]string) string {
	t.Helper()
	for name, content := range files {
		MustWriteFile(t, filepath.Join(root, filepath.FromSlash(name)), content)
	}
	return root
}
