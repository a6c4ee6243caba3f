// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/requireplus/internal/config"
)

// newPathCommand creates the `requireplus path` command.
func newPathCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the effective search path",
		Long: `Show the effective search path in priority order, with the
load-size limit and the extensions probed for each module form.

Entries that do not exist are listed but marked missing; they never match.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.reportError(cmd, err)
			}
			entries, err := app.searchPathEntries(cfg)
			if err != nil {
				return app.reportError(cmd, err)
			}
			printSearchPath(cmd, cfg, entries)
			return nil
		},
	}
}

func printSearchPath(cmd *cobra.Command, cfg *config.Config, entries []config.SearchPathEntry) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, TitleStyle.Render("Search path"))
	if len(entries) == 0 {
		fmt.Fprintf(out, "  %s\n", SubtitleStyle.Render("(empty)"))
	}
	for i, entry := range entries {
		kind := "dir"
		if entry.IsBundle() {
			kind = "bundle"
		}
		line := fmt.Sprintf("  %d. %-6s %s", i+1, kind, CmdStyle.Render(string(entry)))
		if _, err := os.Stat(string(entry)); err != nil {
			line += " " + WarningStyle.Render("(missing)")
		}
		fmt.Fprintln(out, line)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s: %d bytes\n", CmdStyle.Render("loadsize_max"), cfg.LoadSizeMax)
	printForm(cmd, "source", cfg.Forms.Source, cfg.Extensions.Source)
	printForm(cmd, "bytecode", cfg.Forms.Bytecode, cfg.Extensions.Bytecode)
	printForm(cmd, "native", cfg.Forms.Native, cfg.Extensions.Native)
}

func printForm(cmd *cobra.Command, name string, enabled bool, exts []config.Extension) {
	state := SuccessStyle.Render("enabled")
	if !enabled {
		state = WarningStyle.Render("disabled")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", CmdStyle.Render(name), strings.Join(config.Strings(exts), " "), state)
}
