// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteTree(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"lib/json.sh":         "echo json",
		"lib/net/http/get.sh": "echo get",
	}
	root := WriteTree(t, t.TempDir(), files)

	for name, want := range files {
		got, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestMustSetenv_RestoresUnset(t *testing.T) {
	const key = "REQUIREPLUS_TESTUTIL_UNSET"
	if _, ok := os.LookupEnv(key); ok {
		t.Skipf("%s is set in the environment", key)
	}

	restore := MustSetenv(t, key, "one")
	if got := os.Getenv(key); got != "one" {
		t.Fatalf("%s = %q, want one", key, got)
	}
	restore()
	if _, ok := os.LookupEnv(key); ok {
		t.Errorf("%s still set after restore", key)
	}
}

func TestIsolateUserDirs(t *testing.T) {
	xdg := os.Getenv("XDG_CONFIG_HOME")

	t.Run("isolated", func(t *testing.T) {
		home := IsolateUserDirs(t)
		got, err := os.UserHomeDir()
		if err != nil || got != home {
			t.Errorf("UserHomeDir() = %q, %v; want %q", got, err, home)
		}
		if !strings.HasPrefix(os.Getenv("XDG_CONFIG_HOME"), home) {
			t.Errorf("XDG_CONFIG_HOME = %q, want below %q", os.Getenv("XDG_CONFIG_HOME"), home)
		}
	})

	if got := os.Getenv("XDG_CONFIG_HOME"); got != xdg {
		t.Errorf("XDG_CONFIG_HOME after subtest = %q, want %q", got, xdg)
	}
}
