// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/invowk/requireplus/internal/config"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: every Cobra command handler receives an App reference and reads
	// configuration, streams and the process environment through it.
	App struct {
		Config     config.Provider
		stdin      io.Reader
		stdout     io.Writer
		stderr     io.Writer
		env        func(key string) (string, bool)
		executable string
		configDir  string
		getwd      func() (string, error)

		flags       globalFlags
		colorScheme config.ColorScheme
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// Env replaces os.LookupEnv for REQUIREPLUS_* overrides and $REQUIREPLUSLIB.
		Env func(key string) (string, bool)
		// Executable replaces os.Executable when deriving the default lib directories.
		Executable string
		// ConfigDir replaces the platform config directory.
		ConfigDir string
		// Getwd replaces os.Getwd for relative loads and the script working directory.
		Getwd func() (string, error)
	}

	// globalFlags holds the persistent root flags.
	globalFlags struct {
		verbose     bool
		configPath  string
		includes    []string
		loadSizeMax int64
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Getwd == nil {
		deps.Getwd = os.Getwd
	}

	return &App{
		Config:      deps.Config,
		stdin:       deps.Stdin,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
		env:         deps.Env,
		executable:  deps.Executable,
		configDir:   deps.ConfigDir,
		getwd:       deps.Getwd,
		colorScheme: config.ColorSchemeAuto,
	}, nil
}

// loadOptions returns the config loading inputs of this invocation.
func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		ConfigFilePath: a.flags.configPath,
		ConfigDirPath:  a.configDir,
		Env:            a.env,
	}
}

// loadConfig loads the configuration and applies the flags that override it.
func (a *App) loadConfig(ctx context.Context) (*config.Config, string, error) {
	cfg, source, err := a.Config.LoadWithSource(ctx, a.loadOptions())
	if err != nil {
		return nil, "", err
	}

	if a.flags.loadSizeMax > 0 {
		cfg.LoadSizeMax = a.flags.loadSizeMax
	}
	// Apply verbose from config if not set via flag
	if !a.flags.verbose {
		a.flags.verbose = cfg.UI.Verbose
	}
	a.colorScheme = cfg.UI.ColorScheme

	return cfg, source, nil
}

// logger returns the loader debug logger. Debug lines are shown with --verbose.
func (a *App) logger() *log.Logger {
	l := log.NewWithOptions(a.stderr, log.Options{Prefix: config.AppName})
	if a.flags.verbose {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.WarnLevel)
	}
	return l
}

// nativeLogger returns the WebAssembly linker logger, a no-op unless verbose.
func (a *App) nativeLogger() *zap.Logger {
	if !a.flags.verbose {
		return zap.NewNop()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(a.stderr),
		zapcore.DebugLevel,
	)
	return zap.New(core).Named("native")
}

// issueStyle picks the glamour style for issue help written to stderr.
// Output that is not a terminal gets the plain "notty" style.
func (a *App) issueStyle() string {
	f, ok := a.stderr.(interface{ Fd() uintptr })
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "notty"
	}
	if a.colorScheme == config.ColorSchemeLight {
		return "light"
	}
	return "dark"
}
