// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"archive/zip"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/invowk/requireplus/internal/issue"
	"github.com/invowk/requireplus/internal/runtime"
	"github.com/invowk/requireplus/pkg/bundle"
	"github.com/invowk/requireplus/pkg/loader"
)

// classifyError maps loader, runtime and configuration failures to issue
// catalog IDs and returns a styled message for CLI rendering. An issue linked
// by an ActionableError wins over the sentinel checks.
func classifyError(err error, verbose bool) (issueID issue.Id, styledMsg string) {
	switch {
	case linkedIssue(err) != 0:
		issueID = linkedIssue(err)
	case errors.Is(err, loader.ErrModuleNotFound):
		issueID = issue.ModuleNotFoundId
	case errors.Is(err, loader.ErrVFSMismatch):
		issueID = issue.VFSMismatchId
	case errors.Is(err, loader.ErrUnsupportedExtension):
		issueID = issue.UnsupportedExtensionId
	case errors.Is(err, loader.ErrLoadDepthExceeded):
		issueID = issue.LoadDepthExceededId
	case errors.Is(err, loader.ErrPrefixCollision):
		issueID = issue.PrefixCollisionId
	case errors.Is(err, runtime.ErrCompile):
		issueID = issue.CompileErrorId
	case errors.Is(err, runtime.ErrBytecodeFormat):
		issueID = issue.BytecodeFormatId
	case errors.Is(err, runtime.ErrLink):
		issueID = issue.NativeLinkId
	case errors.Is(err, runtime.ErrScriptFailed):
		issueID = issue.ScriptFailedId
	case errors.Is(err, bundle.ErrInvalidManifest), errors.Is(err, bundle.ErrInvalidName), errors.Is(err, zip.ErrFormat):
		issueID = issue.InvalidBundleId
	case errors.Is(err, fs.ErrNotExist):
		issueID = issue.FileNotFoundId
	}

	return issueID, fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
}

// linkedIssue returns the first issue linked by an ActionableError in the
// chain of err, skipping command context added without one.
func linkedIssue(err error) issue.Id {
	var ae *issue.ActionableError
	for errors.As(err, &ae) {
		if ae.IssueId != 0 {
			return ae.IssueId
		}
		err = ae.Cause
	}
	return 0
}

// reportError renders err and returns the ExitError that ends cmd. A script
// that exits with a status passes the status through; without --verbose it
// is not reported, like a shell.
func (a *App) reportError(cmd *cobra.Command, err error) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	code := 1
	var scriptErr *runtime.ScriptError
	if errors.As(err, &scriptErr) {
		code = scriptErr.Status
		if !a.flags.verbose {
			return &ExitError{Code: code, Err: err}
		}
	}

	issueID, styledMsg := classifyError(err, a.flags.verbose)
	renderServiceError(a.stderr, newServiceError(err, issueID, styledMsg), a.issueStyle())
	return &ExitError{Code: code, Err: err}
}
