// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/requireplus/internal/issue"
)

// newRequireCommand creates the `requireplus require` command.
func newRequireCommand(app *App) *cobra.Command {
	var args []string

	requireCmd := &cobra.Command{
		Use:   "require <feature>...",
		Short: "Load features from the search path",
		Long: `Load each feature once, in order, from the search path.

Every provider is probed for the source form, then bytecode, then native.
A feature that resolves to a module loaded earlier in the same invocation
is reported as already loaded and not run again.

Examples:
  requireplus require json
  requireplus -I ./lib require util util.sh json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, features []string) error {
			out := cmd.OutOrStdout()
			err := app.withSession(cmd.Context(), args, func(h *hostSession) error {
				for _, feature := range features {
					loaded, err := h.Require(cmd.Context(), feature)
					if err != nil {
						return issue.WrapWithContext(err, "require feature", feature)
					}
					if loaded {
						fmt.Fprintf(out, "%s %s\n", SuccessStyle.Render("✓"), feature)
					} else {
						fmt.Fprintf(out, "%s %s %s\n", SubtitleStyle.Render("•"), feature, SubtitleStyle.Render("(already loaded)"))
					}
				}
				if app.flags.verbose {
					for _, sig := range h.Loaded() {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", VerboseStyle.Render("loaded"), CmdStyle.Render(sig))
					}
				}
				return nil
			})
			if err != nil {
				return app.reportError(cmd, err)
			}
			return nil
		},
	}
	requireCmd.Flags().StringArrayVar(&args, "arg", nil, "positional parameter passed to the modules (repeatable)")

	return requireCmd
}

// newResolveCommand creates the `requireplus resolve` command.
func newResolveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <feature>...",
		Short: "Show what require would load, without loading",
		Long: `Show the form and signature that require would load for each feature.

Nothing is executed. Features that cannot be found are reported after the
others have been printed.

Examples:
  requireplus resolve json
  requireplus -I ./vendor.zip resolve net/http`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, features []string) error {
			out := cmd.OutOrStdout()
			err := app.withSession(cmd.Context(), nil, func(h *hostSession) error {
				var errs []error
				for _, feature := range features {
					r, err := h.Resolve(feature)
					if err != nil {
						errs = append(errs, err)
						continue
					}
					fmt.Fprintf(out, "%s\t%s\t%s\n", feature, r.Form, CmdStyle.Render(r.Signature))
				}
				return errors.Join(errs...)
			})
			if err != nil {
				return app.reportError(cmd, err)
			}
			return nil
		},
	}
}
