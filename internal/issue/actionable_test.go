// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

var errNoSuchFile = errors.New("cannot load such file -- net/http")

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation",
			err:  &ActionableError{Operation: "open bundle"},
			want: "failed to open bundle",
		},
		{
			name: "resource",
			err:  &ActionableError{Operation: "open bundle", Resource: "vendor.zip"},
			want: "failed to open bundle: vendor.zip",
		},
		{
			name: "cause without resource",
			err:  &ActionableError{Operation: "require feature", Cause: errNoSuchFile},
			want: "failed to require feature: cannot load such file -- net/http",
		},
		{
			name: "everything",
			err:  &ActionableError{Operation: "run script", Resource: "main.sh", Cause: errNoSuchFile},
			want: "failed to run script: main.sh: cannot load such file -- net/http",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	inner := fmt.Errorf("nested: %w", errNoSuchFile)
	err := &ActionableError{
		Operation:   "require feature",
		Resource:    "net/http",
		Suggestions: []string{"Add the library directory with -I", "Run requireplus path"},
		Cause:       inner,
	}

	short := err.Format(false)
	for _, want := range []string{"failed to require feature: net/http", "\n  • Add the library directory with -I", "\n  • Run requireplus path"} {
		if !strings.Contains(short, want) {
			t.Errorf("Format(false) missing %q:\n%s", want, short)
		}
	}
	if strings.Contains(short, "Error chain:") {
		t.Errorf("Format(false) shows the chain:\n%s", short)
	}

	long := err.Format(true)
	for _, want := range []string{"Error chain:", "1. nested: cannot load such file", "2. cannot load such file -- net/http"} {
		if !strings.Contains(long, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, long)
		}
	}

	bare := (&ActionableError{Operation: "compile module"}).Format(true)
	if bare != "failed to compile module" {
		t.Errorf("Format(true) without cause = %q", bare)
	}
}

func TestWrapWithContext(t *testing.T) {
	t.Parallel()

	if WrapWithContext(nil, "run script", "main.sh") != nil {
		t.Error("WrapWithContext(nil) != nil")
	}

	err := WrapWithContext(errNoSuchFile, "run script", "main.sh")
	var ae *ActionableError
	if !errors.As(err, &ae) || ae.Operation != "run script" || ae.Resource != "main.sh" {
		t.Fatalf("WrapWithContext() = %#v", err)
	}
	if !errors.Is(err, errNoSuchFile) {
		t.Error("wrapped cause not reachable with errors.Is")
	}
	if ae.IssueId != 0 {
		t.Errorf("IssueId = %v, want none", ae.IssueId)
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should be nil")
	}
	if err := NewErrorContext().Wrap(errNoSuchFile).BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want untyped nil", err)
	}

	ctx := NewErrorContext().
		WithOperation("open bundle").
		WithResource("vendor.zip").
		WithSuggestion("Check that the file is a zip archive").
		WithIssue(InvalidBundleId).
		Wrap(errNoSuchFile)

	first := ctx.Build()
	if first.Operation != "open bundle" || first.Resource != "vendor.zip" || first.IssueId != InvalidBundleId {
		t.Errorf("Build() = %+v", first)
	}
	if !errors.Is(first, errNoSuchFile) {
		t.Error("Build() lost the cause")
	}

	// Built errors do not share state with the builder.
	second := ctx.WithSuggestion("Remove the entry").Build()
	if len(first.Suggestions) != 1 || len(second.Suggestions) != 2 {
		t.Errorf("suggestions = %v / %v", first.Suggestions, second.Suggestions)
	}

	var ae *ActionableError
	if err := ctx.BuildError(); !errors.As(err, &ae) || ae.IssueId != InvalidBundleId {
		t.Errorf("BuildError() = %v", err)
	}
}
