// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/invowk/requireplus/internal/issue"
	"github.com/invowk/requireplus/pkg/bundle"
	"github.com/invowk/requireplus/pkg/vfs"
)

// LibEnv names the environment variable holding extra search path entries,
// separated by os.PathListSeparator.
const LibEnv = "REQUIREPLUSLIB"

// SearchPathOptions carries the inputs of the effective search path that do
// not come from the config file.
type SearchPathOptions struct {
	// Includes are -I entries, searched first.
	Includes []string
	// Env replaces os.LookupEnv when set.
	Env func(key string) (string, bool)
	// Executable replaces os.Executable when set.
	Executable string
	// Stat replaces os.Stat for the executable-relative defaults when set.
	Stat func(name string) (os.FileInfo, error)
}

// SearchPathEntries assembles the effective search path in priority order:
// -I includes, $REQUIREPLUSLIB entries, the config file's search_path, then
// the lib directories next to the executable that exist. Empty entries are
// skipped and only the first occurrence of a cleaned path is kept.
func SearchPathEntries(cfg *Config, opts SearchPathOptions) []SearchPathEntry {
	lookup := opts.Env
	if lookup == nil {
		lookup = os.LookupEnv
	}
	stat := opts.Stat
	if stat == nil {
		stat = os.Stat
	}

	var out []SearchPathEntry
	seen := make(map[string]bool)
	add := func(p string) {
		if strings.TrimSpace(p) == "" {
			return
		}
		key := filepath.Clean(p)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, SearchPathEntry(p))
	}

	for _, p := range opts.Includes {
		add(p)
	}
	if env, ok := lookup(LibEnv); ok {
		for _, p := range filepath.SplitList(env) {
			add(p)
		}
	}
	if cfg != nil {
		for _, p := range cfg.SearchPath {
			add(string(p))
		}
	}
	for _, p := range executableLibDirs(opts.Executable) {
		if info, err := stat(p); err == nil && info.IsDir() {
			add(p)
		}
	}

	return out
}

// executableLibDirs returns <exe>/../lib/requireplus, <exe>/../lib,
// <exe-dir>/lib/requireplus and <exe-dir>/lib.
func executableLibDirs(exe string) []string {
	if exe == "" {
		var err error
		if exe, err = os.Executable(); err != nil {
			return nil
		}
	}
	dir := filepath.Dir(exe)
	parent := filepath.Dir(dir)
	return []string{
		filepath.Join(parent, "lib", AppName),
		filepath.Join(parent, "lib"),
		filepath.Join(dir, "lib", AppName),
		filepath.Join(dir, "lib"),
	}
}

// OpenSearchPath turns entries into providers: directories become
// vfs.Directory and .zip entries are opened as bundles. The returned close
// function releases every opened bundle.
func OpenSearchPath(entries []SearchPathEntry) ([]vfs.VFS, func() error, error) {
	var (
		providers []vfs.VFS
		bundles   []*bundle.Bundle
	)
	closeAll := func() error {
		var errs []error
		for _, b := range bundles {
			errs = append(errs, b.Close())
		}
		return errors.Join(errs...)
	}

	for _, entry := range entries {
		if entry.IsBundle() {
			b, err := bundle.Open(string(entry))
			if err != nil {
				_ = closeAll()
				return nil, nil, issue.NewErrorContext().
					WithOperation("open bundle").
					WithResource(string(entry)).
					WithSuggestion("Check that the file is a zip archive").
					WithSuggestion("Remove the entry from search_path or " + LibEnv).
					WithIssue(issue.InvalidBundleId).
					Wrap(err).
					BuildError()
			}
			bundles = append(bundles, b)
			providers = append(providers, b)
			continue
		}

		d, err := vfs.NewDirectory(string(entry))
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		providers = append(providers, d)
	}

	return providers, closeAll, nil
}
