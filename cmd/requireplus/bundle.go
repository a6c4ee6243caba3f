// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/invowk/requireplus/pkg/bundle"
)

// newBundleCommand creates the `requireplus bundle` command tree.
func newBundleCommand(app *App) *cobra.Command {
	bundleCmd := &cobra.Command{
		Use:   "bundle",
		Short: "Create and inspect zip module bundles",
		Long: `Create and inspect zip module bundles.

A bundle is a zip archive laid out like a search path directory, with an
optional bundle.toml manifest naming it. Bundles are placed on the search
path like directories: -I vendor.zip, $REQUIREPLUSLIB or search_path.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	bundleCmd.AddCommand(newBundlePackCommand(app), newBundleListCommand(app))
	return bundleCmd
}

func newBundlePackCommand(app *App) *cobra.Command {
	var output, name, description string

	packCmd := &cobra.Command{
		Use:   "pack <dir>",
		Short: "Package a module directory as a zip bundle",
		Long: `Package a module directory as a zip bundle.

With --name, a bundle.toml manifest is written into the archive and any
bundle.toml in the directory is replaced. The name follows RDNS rules
(for example com.example.shlib) and becomes the bundle prefix, so the
signatures of its modules do not depend on where the archive is stored.

Examples:
  requireplus bundle pack ./lib
  requireplus bundle pack ./lib --name com.example.shlib -o shlib.zip`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := bundle.PackOptions{
				SourceDir:  args[0],
				OutputPath: output,
			}
			if name != "" {
				if err := bundle.ValidateName(name); err != nil {
					return app.reportError(cmd, err)
				}
				opts.Manifest = &bundle.Manifest{Name: name, Description: description}
			}
			if err := app.resolvePackPaths(&opts); err != nil {
				return app.reportError(cmd, err)
			}

			archive, err := bundle.Pack(opts)
			if err != nil {
				return app.reportError(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Created bundle %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(archive))
			return nil
		},
	}
	packCmd.Flags().StringVarP(&output, "output", "o", "", "archive path (default: <name>.zip or <dir>.zip)")
	packCmd.Flags().StringVar(&name, "name", "", "bundle name written to bundle.toml")
	packCmd.Flags().StringVar(&description, "description", "", "bundle description written to bundle.toml")

	return packCmd
}

func newBundleListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <bundle.zip>",
		Short: "List the modules of a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive := args[0]
			if !filepath.IsAbs(archive) {
				wd, err := app.getwd()
				if err != nil {
					return app.reportError(cmd, err)
				}
				archive = filepath.Join(wd, archive)
			}
			b, err := bundle.Open(archive)
			if err != nil {
				return app.reportError(cmd, err)
			}
			defer func() { _ = b.Close() }()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, TitleStyle.Render(b.Path()))
			fmt.Fprintf(out, "%s: %s\n", CmdStyle.Render("prefix"), b.Prefix())
			if m := b.Manifest(); m != nil && m.Description != "" {
				fmt.Fprintf(out, "%s: %s\n", CmdStyle.Render("description"), m.Description)
			}
			for _, f := range b.Files() {
				fmt.Fprintf(out, "  %s\n", f)
			}
			return nil
		},
	}
}

// resolvePackPaths makes relative pack paths relative to the App working
// directory.
func (a *App) resolvePackPaths(opts *bundle.PackOptions) error {
	wd, err := a.getwd()
	if err != nil {
		return err
	}
	if !filepath.IsAbs(opts.SourceDir) {
		opts.SourceDir = filepath.Join(wd, opts.SourceDir)
	}
	if opts.OutputPath == "" {
		name := filepath.Base(opts.SourceDir)
		if opts.Manifest != nil {
			name = opts.Manifest.Name
		}
		opts.OutputPath = name + bundle.Suffix
	}
	if !filepath.IsAbs(opts.OutputPath) {
		opts.OutputPath = filepath.Join(wd, opts.OutputPath)
	}
	return nil
}
