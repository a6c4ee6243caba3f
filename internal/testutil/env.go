// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// MustSetenv sets key to value and returns a function restoring the previous
// state, unset included.
//
//	t.Cleanup(testutil.MustSetenv(t, "REQUIREPLUSLIB", dir))
func MustSetenv(t testing.TB, key, value string) func() {
	t.Helper()
	prev, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s: %v", key, err)
	}
	return func() {
		var err error
		if had {
			err = os.Setenv(key, prev)
		} else {
			err = os.Unsetenv(key)
		}
		if err != nil {
			t.Errorf("restore %s: %v", key, err)
		}
	}
}

// IsolateUserDirs points the home and per-user config directories of every
// platform at fresh temporary directories until the test ends, and returns
// the home directory. Tests calling it must not run in parallel.
func IsolateUserDirs(t testing.TB) string {
	t.Helper()
	home := t.TempDir()
	homeVar := "HOME"
	if runtime.GOOS == "windows" {
		homeVar = "USERPROFILE"
	}
	t.Cleanup(MustSetenv(t, homeVar, home))
	t.Cleanup(MustSetenv(t, "XDG_CONFIG_HOME", filepath.Join(home, ".config")))
	t.Cleanup(MustSetenv(t, "APPDATA", filepath.Join(home, "AppData", "Roaming")))
	return home
}
