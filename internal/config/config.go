// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/invowk/requireplus/internal/issue"
	"github.com/invowk/requireplus/pkg/cueutil"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "requireplus"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides (REQUIREPLUS_LOADSIZE_MAX, ...).
	EnvPrefix = "REQUIREPLUS"

	schemaRoot = "#Config"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the requireplus configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// FilePath returns the path of the user config file. A non-empty
// configDirPath replaces the platform config directory.
func FilePath(configDirPath string) (string, error) {
	cfgDir, err := configDirWithOverride(configDirPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state. It returns the loaded config and the path of the file
// it came from ("" when only defaults and environment applied).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper(opts.Env)

	resolvedPath := ""

	// A custom config file path (--config) is used exclusively.
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'requireplus config show' to see the default configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		if err := loadCUEIntoViper(v, opts.ConfigFilePath); err != nil {
			return nil, "", cueLoadError(opts.ConfigFilePath, err)
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}

		candidates := []string{
			filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
			ConfigFileName + "." + ConfigFileExt,
		}
		for _, cuePath := range candidates {
			if !fileExists(cuePath) {
				continue
			}
			if err := loadCUEIntoViper(v, cuePath); err != nil {
				return nil, "", cueLoadError(cuePath, err)
			}
			resolvedPath = cuePath
			break
		}
		// If no config file found, use defaults (no error)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Constraints CUE cannot express once environment overrides are applied.
	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Extensions must look like \".sh\"").
			WithSuggestion("loadsize_max must be a positive number of bytes").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(describeFieldErrors(errs)).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// newViper returns a viper instance with defaults and REQUIREPLUS_* environment
// bindings. lookup replaces os.LookupEnv when non-nil.
func newViper(lookup func(string) (string, bool)) *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("search_path", defaults.SearchPath)
	v.SetDefault("loadsize_max", defaults.LoadSizeMax)
	v.SetDefault("extensions.source", defaults.Extensions.Source)
	v.SetDefault("extensions.bytecode", defaults.Extensions.Bytecode)
	v.SetDefault("extensions.native", defaults.Extensions.Native)
	v.SetDefault("forms.source", defaults.Forms.Source)
	v.SetDefault("forms.bytecode", defaults.Forms.Bytecode)
	v.SetDefault("forms.native", defaults.Forms.Native)
	v.SetDefault("native.memory_limit_pages", defaults.Native.MemoryLimitPages)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	if lookup == nil {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
		return v
	}

	// Explicit lookups are applied as overrides so tests never touch the
	// process environment.
	for _, key := range v.AllKeys() {
		envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if val, ok := lookup(envKey); ok {
			v.Set(key, val)
		}
	}
	return v
}

func cueLoadError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Check that the file contains valid CUE syntax").
		WithSuggestion("Verify the configuration values match the expected schema").
		WithSuggestion("See 'requireplus config --help' for configuration options").
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(err).
		BuildError()
}

func describeFieldErrors(errs []error) error {
	var lines []string
	for _, err := range errs {
		for _, leaf := range leafErrors(err) {
			lines = append(lines, leaf.Error())
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(lines, "; "))
}

// leafErrors flattens the field error collections of the composite
// validation errors.
func leafErrors(err error) []error {
	var nested []error
	switch e := err.(type) {
	case *InvalidConfigError:
		nested = e.FieldErrors
	case *InvalidExtensionsConfigError:
		nested = e.FieldErrors
	case *InvalidNativeConfigError:
		nested = e.FieldErrors
	case *InvalidUIConfigError:
		nested = e.FieldErrors
	default:
		return []error{err}
	}
	var out []error
	for _, n := range nested {
		out = append(out, leafErrors(n)...)
	}
	return out
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper. Concrete(false) because every config
// field is optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.DecodeMap(configSchema, data, schemaRoot,
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// Validate checks a config document against the schema without loading it.
func Validate(data []byte, filename string) (*Config, error) {
	res, err := cueutil.ParseAndDecode[Config](configSchema, data, schemaRoot,
		cueutil.WithFilename(filename),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir(configDirPath string) error {
	cfgDir, err := configDirWithOverride(configDirPath)
	if err != nil {
		return err
	}
	return os.MkdirAll(cfgDir, 0o755)
}

// CreateDefaultConfig creates a default config file if it doesn't exist and
// returns its path and whether it was written.
func CreateDefaultConfig(configDirPath string) (string, bool, error) {
	cfgPath, err := FilePath(configDirPath)
	if err != nil {
		return "", false, err
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}

	return cfgPath, true, nil
}

// Save writes the configuration to the user config file.
func Save(cfg *Config, configDirPath string) error {
	cfgPath, err := FilePath(configDirPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// requireplus configuration file\n")
	sb.WriteString("// Generated with 'requireplus config init'.\n\n")

	if len(cfg.SearchPath) > 0 {
		sb.WriteString("search_path: [\n")
		for _, entry := range cfg.SearchPath {
			fmt.Fprintf(&sb, "\t%q,\n", entry)
		}
		sb.WriteString("]\n")
	} else {
		sb.WriteString("search_path: []\n")
	}

	fmt.Fprintf(&sb, "loadsize_max: %d\n", cfg.LoadSizeMax)

	sb.WriteString("\nextensions: {\n")
	writeExtList(&sb, "source", cfg.Extensions.Source)
	writeExtList(&sb, "bytecode", cfg.Extensions.Bytecode)
	writeExtList(&sb, "native", cfg.Extensions.Native)
	sb.WriteString("}\n")

	sb.WriteString("\nforms: {\n")
	fmt.Fprintf(&sb, "\tsource:   %v\n", cfg.Forms.Source)
	fmt.Fprintf(&sb, "\tbytecode: %v\n", cfg.Forms.Bytecode)
	fmt.Fprintf(&sb, "\tnative:   %v\n", cfg.Forms.Native)
	sb.WriteString("}\n")

	sb.WriteString("\nnative: {\n")
	fmt.Fprintf(&sb, "\tmemory_limit_pages: %d\n", cfg.Native.MemoryLimitPages)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

func writeExtList(sb *strings.Builder, key string, exts []Extension) {
	quoted := make([]string, len(exts))
	for i, x := range exts {
		quoted[i] = fmt.Sprintf("%q", x)
	}
	fmt.Fprintf(sb, "\t%s: [%s]\n", key, strings.Join(quoted, ", "))
}
