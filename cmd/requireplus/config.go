// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/requireplus/internal/config"
	"github.com/invowk/requireplus/internal/issue"
)

// newConfigCommand creates the `requireplus config` command tree.
// Subcommands that read configuration use the App's config provider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage requireplus configuration",
		Long: `Manage requireplus configuration.

Configuration is stored in:
  - Linux: ~/.config/requireplus/config.cue
  - macOS: ~/Library/Application Support/requireplus/config.cue
  - Windows: %APPDATA%\requireplus\config.cue

A config.cue in the working directory is used when the user file is
missing. Every key can be overridden from the environment with the
` + config.EnvPrefix + `_ prefix, for example ` + config.EnvPrefix + `_LOADSIZE_MAX.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := showConfig(cmd, app); err != nil {
				return app.reportError(cmd, err)
			}
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.reportError(cmd, err)
			}
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig(app.configDir)
			if err != nil {
				return app.reportError(cmd, err)
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Configuration already exists at %s\n", WarningStyle.Render("•"), path)
			}
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.FilePath(app.configDir)
			if err != nil {
				return app.reportError(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Check a config file against the schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateConfigFile(args[0]); err != nil {
				return app.reportError(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s is valid\n", SuccessStyle.Render("✓"), args[0])
			return nil
		},
	})

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App) error {
	cfg, source, err := app.loadConfig(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)
	if source != "" {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), source)
	} else {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%s:\n", keyStyle.Render("search_path"))
	if len(cfg.SearchPath) == 0 {
		fmt.Fprintf(out, "  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, entry := range cfg.SearchPath {
		fmt.Fprintf(out, "  - %s\n", valueStyle.Render(string(entry)))
	}
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("loadsize_max"), valueStyle.Render(fmt.Sprint(cfg.LoadSizeMax)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("extensions"))
	fmt.Fprintf(out, "  source: %s\n", valueStyle.Render(strings.Join(config.Strings(cfg.Extensions.Source), " ")))
	fmt.Fprintf(out, "  bytecode: %s\n", valueStyle.Render(strings.Join(config.Strings(cfg.Extensions.Bytecode), " ")))
	fmt.Fprintf(out, "  native: %s\n", valueStyle.Render(strings.Join(config.Strings(cfg.Extensions.Native), " ")))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("forms"))
	fmt.Fprintf(out, "  source: %s\n", valueStyle.Render(fmt.Sprint(cfg.Forms.Source)))
	fmt.Fprintf(out, "  bytecode: %s\n", valueStyle.Render(fmt.Sprint(cfg.Forms.Bytecode)))
	fmt.Fprintf(out, "  native: %s\n", valueStyle.Render(fmt.Sprint(cfg.Forms.Native)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("native"))
	fmt.Fprintf(out, "  memory_limit_pages: %s\n", valueStyle.Render(fmt.Sprint(cfg.Native.MemoryLimitPages)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(out, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(out, "  verbose: %s\n", valueStyle.Render(fmt.Sprint(cfg.UI.Verbose)))

	return nil
}

// validateConfigFile checks path against the config schema.
func validateConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if _, err := config.Validate(data, path); err != nil {
		return issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Run 'requireplus config dump' to see a valid configuration").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}
	return nil
}
