// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultLoadSizeMax mirrors loader.DefaultLoadSizeMax.
	// Defined locally to avoid coupling config to pkg/loader.
	DefaultLoadSizeMax int64 = 4 << 20

	// Shell host extensions, mirroring internal/runtime.
	defaultSourceExt   Extension = ".sh"
	defaultBytecodeExt Extension = ".shc"
	defaultNativeExt   Extension = ".wasm"

	// maxMemoryLimitPages is the WebAssembly 32-bit memory ceiling (4 GiB).
	maxMemoryLimitPages = 65536
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidExtension is the sentinel error wrapped by InvalidExtensionError.
	ErrInvalidExtension = errors.New("invalid extension")
	// ErrInvalidSearchPathEntry is the sentinel error wrapped by InvalidSearchPathEntryError.
	ErrInvalidSearchPathEntry = errors.New("invalid search path entry")
	// ErrInvalidLoadSizeMax is the sentinel error wrapped by InvalidLoadSizeMaxError.
	ErrInvalidLoadSizeMax = errors.New("invalid load size limit")
	// ErrInvalidExtensionsConfig is the sentinel error wrapped by InvalidExtensionsConfigError.
	ErrInvalidExtensionsConfig = errors.New("invalid extensions config")
	// ErrInvalidNativeConfig is the sentinel error wrapped by InvalidNativeConfigError.
	ErrInvalidNativeConfig = errors.New("invalid native config")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// Extension is a file extension including the leading dot (".sh").
	Extension string

	// InvalidExtensionError is returned when an Extension does not start with a
	// dot or contains a path separator or a second dot.
	InvalidExtensionError struct {
		Value Extension
	}

	// SearchPathEntry is a directory or .zip bundle path placed on the search path.
	SearchPathEntry string

	// InvalidSearchPathEntryError is returned when a SearchPathEntry is empty or
	// whitespace-only.
	InvalidSearchPathEntryError struct {
		Value SearchPathEntry
	}

	// InvalidLoadSizeMaxError is returned when the load size limit is not positive.
	InvalidLoadSizeMaxError struct {
		Value int64
	}

	// InvalidExtensionsConfigError collects field errors of an ExtensionsConfig.
	// It wraps ErrInvalidExtensionsConfig for errors.Is() compatibility.
	InvalidExtensionsConfigError struct {
		FieldErrors []error
	}

	// InvalidNativeConfigError collects field errors of a NativeConfig.
	InvalidNativeConfigError struct {
		FieldErrors []error
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// SearchPath lists directories and .zip bundles searched for modules.
		SearchPath []SearchPathEntry `json:"search_path" mapstructure:"search_path"`
		// LoadSizeMax is the size at or above which files are treated as absent.
		LoadSizeMax int64 `json:"loadsize_max" mapstructure:"loadsize_max"`
		// Extensions lists the extensions probed for each module form.
		Extensions ExtensionsConfig `json:"extensions" mapstructure:"extensions"`
		// Forms enables or disables each module form.
		Forms FormsConfig `json:"forms" mapstructure:"forms"`
		// Native configures the WebAssembly extension runtime.
		Native NativeConfig `json:"native" mapstructure:"native"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// ExtensionsConfig lists the extensions probed per form, in priority order.
	ExtensionsConfig struct {
		Source   []Extension `json:"source" mapstructure:"source"`
		Bytecode []Extension `json:"bytecode" mapstructure:"bytecode"`
		Native   []Extension `json:"native" mapstructure:"native"`
	}

	// FormsConfig switches module forms on and off.
	FormsConfig struct {
		Source   bool `json:"source" mapstructure:"source"`
		Bytecode bool `json:"bytecode" mapstructure:"bytecode"`
		Native   bool `json:"native" mapstructure:"native"`
	}

	// NativeConfig configures native extensions.
	NativeConfig struct {
		// MemoryLimitPages caps linear memory in 64 KiB pages; 0 keeps the runtime default.
		MemoryLimitPages uint32 `json:"memory_limit_pages" mapstructure:"memory_limit_pages"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// String returns the string representation of the Extension.
func (x Extension) String() string { return string(x) }

// IsValid returns whether the Extension is a dot followed by at least one
// character that is neither a dot nor a path separator.
func (x Extension) IsValid() (bool, []error) {
	s := string(x)
	if len(s) < 2 || s[0] != '.' || strings.ContainsAny(s[1:], `./\`) {
		return false, []error{&InvalidExtensionError{Value: x}}
	}
	return true, nil
}

// Error implements the error interface for InvalidExtensionError.
func (e *InvalidExtensionError) Error() string {
	return fmt.Sprintf("invalid extension %q: must look like \".ext\"", e.Value)
}

// Unwrap returns ErrInvalidExtension for errors.Is() compatibility.
func (e *InvalidExtensionError) Unwrap() error { return ErrInvalidExtension }

// String returns the string representation of the SearchPathEntry.
func (p SearchPathEntry) String() string { return string(p) }

// IsValid returns whether the SearchPathEntry is non-empty and not whitespace-only.
func (p SearchPathEntry) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidSearchPathEntryError{Value: p}}
	}
	return true, nil
}

// IsBundle reports whether the entry names a .zip bundle rather than a directory.
func (p SearchPathEntry) IsBundle() bool {
	return strings.EqualFold(filepath.Ext(strings.TrimSpace(string(p))), ".zip")
}

// Error implements the error interface for InvalidSearchPathEntryError.
func (e *InvalidSearchPathEntryError) Error() string {
	return fmt.Sprintf("invalid search path entry %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidSearchPathEntry for errors.Is() compatibility.
func (e *InvalidSearchPathEntryError) Unwrap() error { return ErrInvalidSearchPathEntry }

// Error implements the error interface for InvalidLoadSizeMaxError.
func (e *InvalidLoadSizeMaxError) Error() string {
	return fmt.Sprintf("invalid load size limit %d: must be positive", e.Value)
}

// Unwrap returns ErrInvalidLoadSizeMax for errors.Is() compatibility.
func (e *InvalidLoadSizeMaxError) Unwrap() error { return ErrInvalidLoadSizeMax }

// IsValid returns whether every listed extension is valid.
func (c ExtensionsConfig) IsValid() (bool, []error) {
	var errs []error
	for _, list := range [][]Extension{c.Source, c.Bytecode, c.Native} {
		for _, x := range list {
			if valid, fieldErrs := x.IsValid(); !valid {
				errs = append(errs, fieldErrs...)
			}
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidExtensionsConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidExtensionsConfigError.
func (e *InvalidExtensionsConfigError) Error() string {
	return fmt.Sprintf("invalid extensions config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidExtensionsConfig for errors.Is() compatibility.
func (e *InvalidExtensionsConfigError) Unwrap() error { return ErrInvalidExtensionsConfig }

// IsValid returns whether the memory limit fits in a 32-bit address space.
func (c NativeConfig) IsValid() (bool, []error) {
	if c.MemoryLimitPages > maxMemoryLimitPages {
		return false, []error{&InvalidNativeConfigError{FieldErrors: []error{
			fmt.Errorf("memory_limit_pages %d exceeds %d", c.MemoryLimitPages, maxMemoryLimitPages),
		}}}
	}
	return true, nil
}

// Error implements the error interface for InvalidNativeConfigError.
func (e *InvalidNativeConfigError) Error() string {
	return fmt.Sprintf("invalid native config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidNativeConfig for errors.Is() compatibility.
func (e *InvalidNativeConfigError) Unwrap() error { return ErrInvalidNativeConfig }

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to each SearchPath entry, Extensions, Native and UI.
// Forms has only bool fields and needs no validation.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for _, entry := range c.SearchPath {
		if valid, fieldErrs := entry.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if c.LoadSizeMax <= 0 {
		errs = append(errs, &InvalidLoadSizeMaxError{Value: c.LoadSizeMax})
	}
	if valid, fieldErrs := c.Extensions.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Native.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Strings converts an extension list for the loader and runtime packages.
func Strings(list []Extension) []string {
	out := make([]string, len(list))
	for i, x := range list {
		out[i] = string(x)
	}
	return out
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		SearchPath:  []SearchPathEntry{},
		LoadSizeMax: DefaultLoadSizeMax,
		Extensions: ExtensionsConfig{
			Source:   []Extension{defaultSourceExt},
			Bytecode: []Extension{defaultBytecodeExt},
			Native:   []Extension{defaultNativeExt},
		},
		Forms: FormsConfig{
			Source:   true,
			Bytecode: true,
			Native:   true,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
