// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/invowk/requireplus/internal/issue"
	"github.com/invowk/requireplus/internal/testutil"
	"github.com/invowk/requireplus/pkg/bundle"
	"github.com/invowk/requireplus/pkg/vfs"
)

type dirInfo struct{ name string }

func (d dirInfo) Name() string       { return d.name }
func (d dirInfo) Size() int64        { return 0 }
func (d dirInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o755 }
func (d dirInfo) ModTime() time.Time { return time.Time{} }
func (d dirInfo) IsDir() bool        { return true }
func (d dirInfo) Sys() any           { return nil }

func TestSearchPathEntries_Order(t *testing.T) {
	t.Parallel()

	exe := filepath.Join("/opt", "requireplus", "bin", "requireplus")
	existing := map[string]bool{
		filepath.Join("/opt", "requireplus", "lib", "requireplus"): true,
		filepath.Join("/opt", "requireplus", "bin", "lib"):         true,
	}

	cfg := DefaultConfig()
	cfg.SearchPath = []SearchPathEntry{"/cfg/lib", "/env/one"}

	list := string(os.PathListSeparator)
	got := SearchPathEntries(cfg, SearchPathOptions{
		Includes: []string{"./inc", "", "./inc/"},
		Env: envMap(map[string]string{
			LibEnv: "/env/one" + list + list + "/env/two.zip",
		}),
		Executable: exe,
		Stat: func(name string) (os.FileInfo, error) {
			if existing[name] {
				return dirInfo{name: filepath.Base(name)}, nil
			}
			return nil, fs.ErrNotExist
		},
	})

	want := []SearchPathEntry{
		"./inc",
		"/env/one",
		"/env/two.zip",
		"/cfg/lib",
		SearchPathEntry(filepath.Join("/opt", "requireplus", "lib", "requireplus")),
		SearchPathEntry(filepath.Join("/opt", "requireplus", "bin", "lib")),
	}
	if len(got) != len(want) {
		t.Fatalf("SearchPathEntries() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExecutableLibDirs(t *testing.T) {
	t.Parallel()

	exe := filepath.Join("/usr", "local", "bin", "requireplus")
	got := executableLibDirs(exe)
	want := []string{
		filepath.Join("/usr", "local", "lib", "requireplus"),
		filepath.Join("/usr", "local", "lib"),
		filepath.Join("/usr", "local", "bin", "lib", "requireplus"),
		filepath.Join("/usr", "local", "bin", "lib"),
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("executableLibDirs() = %v, want %v", got, want)
	}
}

func TestOpenSearchPath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	lib := testutil.WriteTree(t, filepath.Join(root, "lib"), map[string]string{
		"json.sh": "echo json",
	})
	src := testutil.WriteTree(t, filepath.Join(root, "netsrc"), map[string]string{
		"net/http.sh": "echo http",
	})
	archive, err := bundle.Pack(bundle.PackOptions{
		SourceDir:  src,
		OutputPath: filepath.Join(root, "net.zip"),
		Manifest:   &bundle.Manifest{Name: "net"},
	})
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}

	providers, closeAll, err := OpenSearchPath([]SearchPathEntry{SearchPathEntry(lib), SearchPathEntry(archive)})
	if err != nil {
		t.Fatalf("OpenSearchPath() error: %v", err)
	}
	t.Cleanup(func() {
		if err := closeAll(); err != nil {
			t.Errorf("close: %v", err)
		}
	})

	if len(providers) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(providers))
	}
	if _, ok := providers[0].(*vfs.Directory); !ok || providers[0].Prefix() != lib {
		t.Errorf("first provider = %s, want directory %s", vfs.Describe(providers[0]), lib)
	}
	if providers[1].Prefix() != vfs.OpaquePrefix("bundle:net") {
		t.Errorf("bundle prefix = %q", providers[1].Prefix())
	}
	if !providers[1].Exists("net/http.sh") {
		t.Error("bundle should contain net/http.sh")
	}
}

func TestOpenSearchPath_BadBundle(t *testing.T) {
	t.Parallel()

	bad := filepath.Join(t.TempDir(), "broken.zip")
	testutil.MustWriteFile(t, bad, "not a zip archive")

	_, _, err := OpenSearchPath([]SearchPathEntry{SearchPathEntry(bad)})
	if err == nil {
		t.Fatal("expected error for a broken bundle")
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.IssueId != issue.InvalidBundleId {
		t.Errorf("expected InvalidBundle actionable error, got %v", err)
	}
}
