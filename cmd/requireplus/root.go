// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for requireplus.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/invowk/requireplus/internal/config"
	"github.com/invowk/requireplus/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the requireplus command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "requireplus",
		Short: "Load shell modules once from a search path",
		Long: TitleStyle.Render("requireplus") + SubtitleStyle.Render(" - Load shell modules once from a search path") + `

requireplus runs shell scripts with require, require_relative and load
builtins. Features are resolved along a search path of directories and
zip bundles, in source (.sh), bytecode (.shc) or native (.wasm) form,
and every module runs at most once per session.

` + SubtitleStyle.Render("Search path order:") + `
  1. -I/--include entries
  2. $` + config.LibEnv + ` entries
  3. search_path from the config file
  4. lib directories next to the executable

` + SubtitleStyle.Render("Examples:") + `
  requireplus run main.sh            Run a script with the loader builtins
  requireplus require -I lib json    Load a feature from ./lib
  requireplus resolve json           Show what would be loaded
  requireplus compile util.sh        Write util.shc next to util.sh
  requireplus bundle pack ./lib      Package a directory as a zip bundle`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	flags.StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/requireplus/config.cue)")
	flags.StringArrayVarP(&app.flags.includes, "include", "I", nil, "prepend a directory or .zip bundle to the search path (repeatable)")
	flags.Int64Var(&app.flags.loadSizeMax, "loadsize-max", 0, "largest loadable module in bytes (default from config)")

	rootCmd.AddCommand(
		newRunCommand(app),
		newRequireCommand(app),
		newResolveCommand(app),
		newCompileCommand(app),
		newPathCommand(app),
		newConfigCommand(app),
		newBundleCommand(app),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the production App, runs the root command and exits with
// the code carried by an ExitError.
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		os.Exit(1)
	}

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
