// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"strings"
	"testing"
)

func TestBundlePackListRequire(t *testing.T) {
	t.Parallel()

	h := newHarness(t, map[string]string{
		"lib/greet.sh":    "echo from bundle\n",
		"lib/net/http.sh": "echo http\n",
	})

	if err := h.run(t, "bundle", "pack", "lib", "--name", "com.example.shlib", "--description", "helpers", "-o", "shlib.zip"); err != nil {
		t.Fatalf("bundle pack error: %v\nstderr: %s", err, h.stderr.String())
	}
	if _, err := os.Stat(h.path("shlib.zip")); err != nil {
		t.Fatalf("archive not created: %v", err)
	}

	if err := h.run(t, "bundle", "list", "shlib.zip"); err != nil {
		t.Fatalf("bundle list error: %v", err)
	}
	for _, want := range []string{"VFS:#<bundle:com.example.shlib>", "helpers", "greet.sh", "net/http.sh"} {
		if !strings.Contains(h.stdout.String(), want) {
			t.Errorf("list output missing %q:\n%s", want, h.stdout.String())
		}
	}
	if strings.Contains(h.stdout.String(), "bundle.toml") {
		t.Error("manifest listed as a module")
	}

	if err := h.run(t, "-I", "shlib.zip", "resolve", "net/http"); err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if !strings.Contains(h.stdout.String(), "VFS:#<bundle:com.example.shlib>/net/http.sh") {
		t.Errorf("resolve output = %q", h.stdout.String())
	}

	if err := h.run(t, "-I", "shlib.zip", "require", "greet"); err != nil {
		t.Fatalf("require error: %v\nstderr: %s", err, h.stderr.String())
	}
	if !strings.Contains(h.stdout.String(), "from bundle\n") {
		t.Errorf("stdout = %q", h.stdout.String())
	}
}

func TestBundlePack_DefaultOutput(t *testing.T) {
	t.Parallel()

	h := newHarness(t, map[string]string{"lib/a.sh": "echo a\n"})

	if err := h.run(t, "bundle", "pack", "lib"); err != nil {
		t.Fatalf("bundle pack error: %v", err)
	}
	if _, err := os.Stat(h.path("lib.zip")); err != nil {
		t.Errorf("default archive not created: %v", err)
	}
}

func TestBundleErrors(t *testing.T) {
	t.Parallel()

	h := newHarness(t, map[string]string{
		"lib/a.sh":  "echo a\n",
		"bogus.zip": "not a zip archive",
	})

	err := h.run(t, "bundle", "pack", "lib", "--name", "1bad")
	if code := exitCode(t, err); code != 1 {
		t.Errorf("pack with invalid name exit code = %d, want 1", code)
	}

	err = h.run(t, "bundle", "list", "bogus.zip")
	if code := exitCode(t, err); code != 1 {
		t.Errorf("list bogus.zip exit code = %d, want 1", code)
	}
	if !strings.Contains(h.stderr.String(), "Error:") {
		t.Errorf("stderr = %q", h.stderr.String())
	}

	err = h.run(t, "-I", "bogus.zip", "require", "a")
	if code := exitCode(t, err); code != 1 {
		t.Errorf("require with bogus bundle exit code = %d, want 1", code)
	}
	if !strings.Contains(h.stderr.String(), "open bundle") {
		t.Errorf("stderr = %q, want the bundle open failure", h.stderr.String())
	}
}
