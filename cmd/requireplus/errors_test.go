// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/invowk/requireplus/internal/issue"
	"github.com/invowk/requireplus/internal/runtime"
	"github.com/invowk/requireplus/pkg/bundle"
	"github.com/invowk/requireplus/pkg/loader"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		verbose     bool
		wantIssueID issue.Id
		wantInStyle []string
	}{
		{
			name:        "missing feature",
			err:         &loader.NotFoundError{Feature: "json"},
			wantIssueID: issue.ModuleNotFoundId,
			wantInStyle: []string{"Error:", "cannot load such file -- json"},
		},
		{
			name:        "missing feature with command context",
			err:         issue.WrapWithContext(&loader.NotFoundError{Feature: "json"}, "require feature", "json"),
			wantIssueID: issue.ModuleNotFoundId,
			wantInStyle: []string{"failed to require feature: json: cannot load such file -- json"},
		},
		{
			name: "linked issue below command context",
			err: issue.WrapWithContext(issue.NewErrorContext().
				WithOperation("load configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(errors.New("bad cue")).
				BuildError(), "run script", "main.sh"),
			wantIssueID: issue.ConfigLoadFailedId,
			wantInStyle: []string{"failed to run script: main.sh: failed to load configuration: bad cue"},
		},
		{
			name:        "relative require outside every provider",
			err:         &loader.VFSMismatchError{Caller: "/tmp/main.sh"},
			wantIssueID: issue.VFSMismatchId,
			wantInStyle: []string{"/tmp/main.sh"},
		},
		{
			name:        "direct load of a non-source file",
			err:         &loader.UnsupportedExtensionError{File: "a.txt", Ext: ".txt", Allowed: []string{".sh"}},
			wantIssueID: issue.UnsupportedExtensionId,
			wantInStyle: []string{"want .sh"},
		},
		{
			name:        "nesting too deep",
			err:         &loader.LoadDepthError{Signature: "/lib/loop.sh", Depth: 64},
			wantIssueID: issue.LoadDepthExceededId,
		},
		{
			name:        "prefix collision",
			err:         &loader.PrefixCollisionError{Prefix: "/lib"},
			wantIssueID: issue.PrefixCollisionId,
		},
		{
			name:        "compile error",
			err:         &runtime.CompileError{Signature: "/lib/bad.sh", Err: errors.New("reached EOF")},
			wantIssueID: issue.CompileErrorId,
			wantInStyle: []string{"reached EOF"},
		},
		{
			name:        "bytecode header",
			err:         &runtime.BytecodeFormatError{Signature: "/lib/x.shc", Reason: "wrong binary identifier"},
			wantIssueID: issue.BytecodeFormatId,
		},
		{
			name:        "native link",
			err:         &runtime.LinkError{Signature: "/lib/x.wasm", Reason: "compile"},
			wantIssueID: issue.NativeLinkId,
		},
		{
			name:        "wrapped script failure",
			err:         fmt.Errorf("require: %w", &runtime.ScriptError{Signature: "/lib/x.sh", Status: 2}),
			wantIssueID: issue.ScriptFailedId,
			wantInStyle: []string{"exit status 2"},
		},
		{
			name:        "bad bundle manifest",
			err:         &bundle.ManifestError{Archive: "v.zip", Err: errors.New("bad toml")},
			wantIssueID: issue.InvalidBundleId,
		},
		{
			name:        "missing file",
			err:         fmt.Errorf("open x.sh: %w", fs.ErrNotExist),
			wantIssueID: issue.FileNotFoundId,
		},
		{
			name: "actionable issue wins over the cause",
			err: issue.NewErrorContext().
				WithOperation("load configuration").
				WithSuggestion("Check the file").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("open: %w", fs.ErrNotExist)).
				BuildError(),
			wantIssueID: issue.ConfigLoadFailedId,
			wantInStyle: []string{"failed to load configuration", "Check the file"},
		},
		{
			name: "verbose shows the error chain",
			err: issue.NewErrorContext().
				WithOperation("open bundle").
				Wrap(fmt.Errorf("outer: %w", errors.New("inner"))).
				BuildError(),
			verbose:     true,
			wantInStyle: []string{"Error chain:", "inner"},
		},
		{
			name:        "unclassified error",
			err:         errors.New("something else"),
			wantIssueID: 0,
			wantInStyle: []string{"something else"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gotID, gotStyle := classifyError(tt.err, tt.verbose)
			if gotID != tt.wantIssueID {
				t.Errorf("issue ID = %d, want %d", gotID, tt.wantIssueID)
			}
			for _, want := range tt.wantInStyle {
				if !strings.Contains(gotStyle, want) {
					t.Errorf("styled message missing %q:\n%s", want, gotStyle)
				}
			}
		})
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	bare := &ExitError{Code: 4}
	if bare.Error() != "exit status 4" {
		t.Errorf("Error() = %q", bare.Error())
	}
	if bare.Unwrap() != nil {
		t.Error("Unwrap() of a bare ExitError should be nil")
	}

	cause := &loader.NotFoundError{Feature: "x"}
	wrapped := &ExitError{Code: 1, Err: cause}
	if !errors.Is(wrapped, loader.ErrModuleNotFound) {
		t.Error("ExitError should unwrap to its cause")
	}
	if wrapped.Error() != cause.Error() {
		t.Errorf("Error() = %q, want the cause message", wrapped.Error())
	}
}
