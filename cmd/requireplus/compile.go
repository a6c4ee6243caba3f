// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/requireplus/internal/issue"
	"github.com/invowk/requireplus/internal/runtime"
)

// newCompileCommand creates the `requireplus compile` command.
func newCompileCommand(app *App) *cobra.Command {
	var output string

	compileCmd := &cobra.Command{
		Use:   "compile <source>",
		Short: "Compile a shell module to bytecode",
		Long: `Compile a shell module to the bytecode form.

The source is parsed and written minified behind a versioned header.
The default output replaces the source extension with ` + runtime.BytecodeExt + `.

Examples:
  requireplus compile lib/util.sh
  requireplus compile lib/util.sh -o dist/util.shc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := compileFile(args[0], output, cmd); err != nil {
				return app.reportError(cmd, issue.WrapWithContext(err, "compile module", args[0]))
			}
			return nil
		},
	}
	compileCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: source with "+runtime.BytecodeExt+")")

	return compileCmd
}

func compileFile(src, output string, cmd *cobra.Command) error {
	if output == "" {
		output = strings.TrimSuffix(src, filepath.Ext(src)) + runtime.BytecodeExt
	}
	if filepath.Clean(output) == filepath.Clean(src) {
		return fmt.Errorf("output %s would overwrite the source", output)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	compiled, err := runtime.Compile(data, src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, compiled, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Compiled %s -> %s (%d bytes)\n", SuccessStyle.Render("✓"), src, CmdStyle.Render(output), len(compiled))
	return nil
}
