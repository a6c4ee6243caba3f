// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/requireplus/internal/issue"
	"github.com/invowk/requireplus/internal/runtime"
)

// newRunCommand creates the `requireplus run` command.
func newRunCommand(app *App) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run <file> [args...]",
		Short: "Run a shell script with the loader builtins",
		Long: fmt.Sprintf(`Run a shell script with the loader builtins: %s.

The script is loaded directly: it must carry a source extension, it is
not looked up on the search path and it is not recorded as loaded.
Arguments after the file become the positional parameters of the script
and of every module it requires.

require_relative resolves against the provider that owns the caller, so
a script that requires files next to itself needs its directory on the
search path (for example -I .).

Examples:
  requireplus run main.sh
  requireplus -I lib run main.sh --flag value`, strings.Join(runtime.Builtins(), ", ")),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			if !filepath.IsAbs(file) {
				wd, err := app.getwd()
				if err != nil {
					return app.reportError(cmd, err)
				}
				file = filepath.Join(wd, file)
			}

			err := app.withSession(cmd.Context(), args[1:], func(h *hostSession) error {
				_, err := h.Load(cmd.Context(), file)
				return err
			})
			if err != nil {
				return app.reportError(cmd, issue.WrapWithContext(err, "run script", file))
			}
			return nil
		},
	}
	// Flags after the script file belong to the script.
	runCmd.Flags().SetInterspersed(false)

	return runCmd
}
