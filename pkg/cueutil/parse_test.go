// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Manifest: {
	name:         string & =~"^[a-z][a-z0-9_-]*$"
	priority:     int & >=0
	enabled:      bool
	description?: string
	forms?: [...("source" | "bytecode" | "native")]
}
`

type testManifest struct {
	Name        string   `json:"name"`
	Priority    int      `json:"priority"`
	Enabled     bool     `json:"enabled"`
	Description string   `json:"description,omitempty"`
	Forms       []string `json:"forms,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
name: "stdlib"
priority: 2
enabled: true
forms: ["source", "native"]
`)
		result, err := ParseAndDecode[testManifest]([]byte(testSchema), data, "#Manifest")
		if err != nil {
			t.Fatalf("ParseAndDecode failed: %v", err)
		}
		if result.Value.Name != "stdlib" || result.Value.Priority != 2 || !result.Value.Enabled {
			t.Errorf("unexpected value: %+v", *result.Value)
		}
		if len(result.Value.Forms) != 2 {
			t.Errorf("expected 2 forms, got %v", result.Value.Forms)
		}
		if result.Unified.Err() != nil {
			t.Errorf("unified value has error: %v", result.Unified.Err())
		}
	})

	t.Run("constraint violation names the field", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
name: "Std Lib"
priority: 1
enabled: true
`)
		_, err := ParseAndDecode[testManifest]([]byte(testSchema), data, "#Manifest", WithFilename("bundle.cue"))
		if err == nil {
			t.Fatal("expected error")
		}
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected *ValidationError, got %T: %v", err, err)
		}
		if vErr.FilePath != "bundle.cue" || vErr.CUEPath != "name" {
			t.Errorf("unexpected location %q %q", vErr.FilePath, vErr.CUEPath)
		}
	})

	t.Run("missing required field with concrete validation", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testManifest]([]byte(testSchema), []byte(`name: "x"`), "#Manifest")
		if err == nil {
			t.Error("expected error for incomplete document")
		}
	})

	t.Run("syntax error carries filename", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testManifest]([]byte(testSchema), []byte(`name: "x`), "#Manifest", WithFilename("broken.cue"))
		if err == nil || !strings.Contains(err.Error(), "broken.cue") {
			t.Errorf("expected error mentioning broken.cue, got %v", err)
		}
	})

	t.Run("unknown definition", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testManifest]([]byte(testSchema), []byte(`{}`), "#Nope")
		if err == nil || !strings.Contains(err.Error(), "#Nope") {
			t.Errorf("expected missing definition error, got %v", err)
		}
	})
}

func TestFileSizeLimit(t *testing.T) {
	t.Parallel()

	data := []byte(strings.Repeat("// padding\n", 20) + `name: "a", priority: 0, enabled: false`)

	if _, err := ParseAndDecode[testManifest]([]byte(testSchema), data, "#Manifest", WithMaxFileSize(1024)); err != nil {
		t.Errorf("expected success, got %v", err)
	}

	_, err := ParseAndDecode[testManifest]([]byte(testSchema), data, "#Manifest", WithMaxFileSize(100))
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("expected size limit error, got %v", err)
	}
}

const optionalSchema = `
#Settings: {
	name?:    string
	priority?: int & >=0
	enabled?: bool
}
`

func TestDecodeMap(t *testing.T) {
	t.Parallel()

	t.Run("partial document with WithConcrete(false)", func(t *testing.T) {
		t.Parallel()

		m, err := DecodeMap([]byte(optionalSchema), []byte(`name: "partial"`), "#Settings", WithConcrete(false))
		if err != nil {
			t.Fatalf("DecodeMap failed: %v", err)
		}
		if m["name"] != "partial" {
			t.Errorf("expected name=partial, got %v", m["name"])
		}
		if _, ok := m["priority"]; ok {
			t.Errorf("unset field should be absent, got %v", m["priority"])
		}
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()

		m, err := DecodeMap([]byte(optionalSchema), []byte(``), "#Settings", WithConcrete(false))
		if err != nil {
			t.Fatalf("DecodeMap failed: %v", err)
		}
		if m == nil {
			t.Error("expected non-nil map")
		}
	})

	t.Run("type mismatch", func(t *testing.T) {
		t.Parallel()

		_, err := DecodeMap([]byte(optionalSchema), []byte(`enabled: "yes"`), "#Settings", WithConcrete(false))
		if err == nil {
			t.Error("expected type error")
		}
	})
}

func TestParseAndDecodeString(t *testing.T) {
	t.Parallel()

	result, err := ParseAndDecodeString[testManifest](testSchema, []byte(`name: "s", priority: 0, enabled: true`), "#Manifest")
	if err != nil {
		t.Fatalf("ParseAndDecodeString failed: %v", err)
	}
	if result.Value.Name != "s" {
		t.Errorf("expected name=s, got %q", result.Value.Name)
	}
}
