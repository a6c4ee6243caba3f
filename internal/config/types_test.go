// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestColorScheme_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scheme ColorScheme
		want   bool
	}{
		{ColorSchemeAuto, true},
		{ColorSchemeDark, true},
		{ColorSchemeLight, true},
		{"", false},
		{"AUTO", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.scheme), func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.scheme.IsValid()
			if isValid != tt.want {
				t.Errorf("ColorScheme(%q).IsValid() = %v, want %v", tt.scheme, isValid, tt.want)
			}
			if !tt.want && (len(errs) == 0 || !errors.Is(errs[0], ErrInvalidColorScheme)) {
				t.Errorf("error should wrap ErrInvalidColorScheme, got: %v", errs)
			}
		})
	}
}

func TestExtension_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  Extension
		want bool
	}{
		{".sh", true},
		{".wasm", true},
		{".so", true},
		{"", false},
		{".", false},
		{"sh", false},
		{".tar.gz", false},
		{".a/b", false},
		{`.a\b`, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.ext), func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.ext.IsValid()
			if isValid != tt.want {
				t.Errorf("Extension(%q).IsValid() = %v, want %v", tt.ext, isValid, tt.want)
			}
			if !tt.want {
				var extErr *InvalidExtensionError
				if len(errs) == 0 || !errors.As(errs[0], &extErr) || extErr.Value != tt.ext {
					t.Errorf("expected *InvalidExtensionError for %q, got %v", tt.ext, errs)
				}
			}
		})
	}
}

func TestSearchPathEntry(t *testing.T) {
	t.Parallel()

	if valid, _ := SearchPathEntry("  ").IsValid(); valid {
		t.Error("whitespace-only entry should be invalid")
	}
	if valid, _ := SearchPathEntry("/opt/lib").IsValid(); !valid {
		t.Error("/opt/lib should be valid")
	}

	for entry, want := range map[SearchPathEntry]bool{
		"/opt/net.zip": true,
		"lib/NET.ZIP":  true,
		"/opt/lib":     false,
		"/opt/zip":     false,
		"archive.zip/": false,
	} {
		if got := entry.IsBundle(); got != want {
			t.Errorf("SearchPathEntry(%q).IsBundle() = %v, want %v", entry, got, want)
		}
	}
}

func TestConfig_IsValid_CollectsFieldErrors(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.SearchPath = []SearchPathEntry{""}
	cfg.LoadSizeMax = 0
	cfg.Extensions.Native = []Extension{"wasm"}
	cfg.Native.MemoryLimitPages = 70000
	cfg.UI.ColorScheme = "neon"

	valid, errs := cfg.IsValid()
	if valid {
		t.Fatal("config should be invalid")
	}
	if len(errs) != 1 || !errors.Is(errs[0], ErrInvalidConfig) {
		t.Fatalf("expected one InvalidConfigError, got %v", errs)
	}

	leaves := leafErrors(errs[0])
	for _, sentinel := range []error{
		ErrInvalidSearchPathEntry,
		ErrInvalidLoadSizeMax,
		ErrInvalidExtension,
		ErrInvalidColorScheme,
	} {
		found := false
		for _, leaf := range leaves {
			if errors.Is(leaf, sentinel) {
				found = true
			}
		}
		if !found {
			t.Errorf("missing leaf error %v in %v", sentinel, leaves)
		}
	}
	if len(leaves) != 5 {
		t.Errorf("expected 5 leaf errors, got %d: %v", len(leaves), leaves)
	}
}
