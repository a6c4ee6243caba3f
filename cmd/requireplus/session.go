// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/invowk/requireplus/internal/config"
	"github.com/invowk/requireplus/internal/runtime"
	"github.com/invowk/requireplus/pkg/loader"
	"github.com/invowk/requireplus/pkg/vfs"
)

// hostSession is a loader session wired to the shell host. Close releases the
// native runtime and the opened bundles.
type hostSession struct {
	*loader.Session
	native       *runtime.NativeLinker
	closeBundles func() error
}

// searchPathEntries returns the effective search path of this invocation.
// Relative -I entries are taken from the App working directory.
func (a *App) searchPathEntries(cfg *config.Config) ([]config.SearchPathEntry, error) {
	includes := make([]string, 0, len(a.flags.includes))
	for _, inc := range a.flags.includes {
		if inc != "" && !filepath.IsAbs(inc) {
			wd, err := a.getwd()
			if err != nil {
				return nil, err
			}
			inc = filepath.Join(wd, inc)
		}
		includes = append(includes, inc)
	}
	return config.SearchPathEntries(cfg, config.SearchPathOptions{
		Includes:   includes,
		Env:        a.env,
		Executable: a.executable,
	}), nil
}

// openSession builds a session from cfg: the effective search path, the
// configured extensions and forms, and args as positional parameters of every
// module.
func (a *App) openSession(ctx context.Context, cfg *config.Config, args []string) (*hostSession, error) {
	entries, err := a.searchPathEntries(cfg)
	if err != nil {
		return nil, err
	}
	providers, closeBundles, err := config.OpenSearchPath(entries)
	if err != nil {
		return nil, err
	}

	wd, err := a.getwd()
	if err != nil {
		_ = closeBundles()
		return nil, err
	}

	virtual := runtime.NewVirtualRuntime(
		runtime.WithDir(wd),
		runtime.WithArgs(args...),
		runtime.WithStdIO(a.stdin, a.stdout, a.stderr),
	)

	var native *runtime.NativeLinker
	if cfg.Forms.Native {
		native, err = runtime.NewNativeLinker(ctx,
			runtime.WithMemoryLimitPages(cfg.Native.MemoryLimitPages),
			runtime.WithNativeExtensions(config.Strings(cfg.Extensions.Native)...),
			runtime.WithNativeStdio(a.stdout, a.stderr),
			runtime.WithNativeLogger(a.nativeLogger()),
		)
		if err != nil {
			_ = closeBundles()
			return nil, err
		}
	}

	opts := runtime.SessionOptions(virtual, cfg.Forms.Source, cfg.Forms.Bytecode, native)
	opts = append(opts,
		loader.WithExtensions(
			loader.Exts(config.Strings(cfg.Extensions.Source)...),
			loader.Exts(config.Strings(cfg.Extensions.Bytecode)...),
			loader.Exts(config.Strings(cfg.Extensions.Native)...),
		),
		loader.WithLoadSizeMax(cfg.LoadSizeMax),
		loader.WithLogger(a.logger()),
		loader.WithGetwd(a.getwd),
	)

	h := &hostSession{
		Session:      loader.New(opts...),
		native:       native,
		closeBundles: closeBundles,
	}
	if err := h.SetSearchPath(providers); err != nil {
		_ = h.Close(ctx)
		return nil, err
	}
	for _, v := range providers {
		h.Logger().Debug("search path", "vfs", vfs.Describe(v))
	}
	return h, nil
}

// Close finalizes linked native extensions and closes the bundles.
func (h *hostSession) Close(ctx context.Context) error {
	var errs []error
	if h.native != nil {
		errs = append(errs, h.native.Close(ctx))
	}
	errs = append(errs, h.closeBundles())
	return errors.Join(errs...)
}

// withSession loads the configuration, opens a session and runs fn with it.
func (a *App) withSession(ctx context.Context, args []string, fn func(*hostSession) error) error {
	cfg, _, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}
	h, err := a.openSession(ctx, cfg, args)
	if err != nil {
		return err
	}
	runErr := fn(h)
	if closeErr := h.Close(ctx); closeErr != nil && runErr == nil {
		runErr = closeErr
	}
	return runErr
}
