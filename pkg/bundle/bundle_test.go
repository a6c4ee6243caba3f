// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/invowk/requireplus/pkg/vfs"
)

var _ vfs.VFS = (*Bundle)(nil)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestValidateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple", input: "shlib", wantErr: false},
		{name: "rdns", input: "com.example.shlib", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "leading dot", input: ".hidden", wantErr: true},
		{name: "starts with digit", input: "1lib", wantErr: true},
		{name: "dash", input: "my-lib", wantErr: true},
		{name: "trailing dot", input: "lib.", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidName) {
				t.Errorf("error %v does not wrap ErrInvalidName", err)
			}
		})
	}
}

func TestParseManifest(t *testing.T) {
	t.Parallel()

	m, err := ParseManifest([]byte("name = \"com.example.shlib\"\ndescription = \"helpers\"\n"))
	if err != nil {
		t.Fatalf("ParseManifest() error = %v", err)
	}
	if m.Name != "com.example.shlib" || m.Description != "helpers" {
		t.Errorf("ParseManifest() = %+v", m)
	}

	if _, err := ParseManifest([]byte("name = \"ok\"\nversion = \"1\"\n")); err == nil {
		t.Error("ParseManifest() accepted an unknown key")
	}
	if _, err := ParseManifest([]byte("description = \"no name\"\n")); !errors.Is(err, ErrInvalidName) {
		t.Errorf("ParseManifest() error = %v, want ErrInvalidName", err)
	}
}

func TestPackAndOpen_WithManifest(t *testing.T) {
	t.Parallel()

	src := writeTree(t, map[string]string{
		"json.sh":          "echo json\n",
		"pkg/main.sh":      "require_relative util\n",
		"pkg/util.sh":      "echo util\n",
		"native/demo.wasm": "\x00asm",
	})
	out := filepath.Join(t.TempDir(), "out.zip")

	got, err := Pack(PackOptions{
		SourceDir:  src,
		OutputPath: out,
		Manifest:   &Manifest{Name: "com.example.shlib"},
	})
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if got != out {
		t.Errorf("Pack() = %q, want %q", got, out)
	}
	if !IsBundle(out) {
		t.Errorf("IsBundle(%q) = false", out)
	}

	b, err := Open(out)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer b.Close()

	if b.Name() != "com.example.shlib" {
		t.Errorf("Name() = %q", b.Name())
	}
	if got, want := b.Prefix(), "VFS:#<bundle:com.example.shlib>"; got != want {
		t.Errorf("Prefix() = %q, want %q", got, want)
	}

	wantFiles := []string{"json.sh", "native/demo.wasm", "pkg/main.sh", "pkg/util.sh"}
	if files := b.Files(); strings.Join(files, ",") != strings.Join(wantFiles, ",") {
		t.Errorf("Files() = %v, want %v", files, wantFiles)
	}

	if !b.Exists("pkg/./util.sh") {
		t.Error("Exists(pkg/./util.sh) = false")
	}
	if b.Exists("pkg") {
		t.Error("Exists(pkg) = true for a directory")
	}
	if b.Exists(ManifestFile) {
		t.Error("manifest must not be visible as a module file")
	}
	if b.Exists("../json.sh") {
		t.Error("Exists(../json.sh) = true")
	}

	size, err := b.Size("json.sh")
	if err != nil || size != int64(len("echo json\n")) {
		t.Errorf("Size() = %d, %v", size, err)
	}
	data, err := b.Read("pkg/util.sh")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(data) != "echo util\n" {
		t.Errorf("Read() = %q", data)
	}
	if _, err := b.Read("nope.sh"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Read(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestOpen_WithoutManifest(t *testing.T) {
	t.Parallel()

	src := writeTree(t, map[string]string{"a.sh": "true\n"})
	out, err := Pack(PackOptions{SourceDir: src, OutputPath: filepath.Join(t.TempDir(), "plain.zip")})
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	b, err := Open(out)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer b.Close()

	if b.Manifest() != nil {
		t.Errorf("Manifest() = %+v, want nil", b.Manifest())
	}
	if want := vfs.OpaquePrefix("zip:" + filepath.ToSlash(out)); b.Prefix() != want {
		t.Errorf("Prefix() = %q, want %q", b.Prefix(), want)
	}
}

func TestOpen_InvalidManifest(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "bad.zip")
	f, err := os.Create(out)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create(ManifestFile)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("name = \"9bad\"\n")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	_, err = Open(out)
	var merr *ManifestError
	if !errors.As(err, &merr) {
		t.Fatalf("Open() error = %v, want *ManifestError", err)
	}
	if !errors.Is(err, ErrInvalidManifest) {
		t.Errorf("Open() error does not wrap ErrInvalidManifest")
	}
}

func TestPack_RejectsBadSourceManifest(t *testing.T) {
	t.Parallel()

	src := writeTree(t, map[string]string{ManifestFile: "name = \"-x\"\n"})
	if _, err := Pack(PackOptions{SourceDir: src, OutputPath: filepath.Join(t.TempDir(), "x.zip")}); err == nil {
		t.Error("Pack() accepted an invalid bundle.toml")
	}
}
