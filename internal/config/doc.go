// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/requireplus/config.cue (or the XDG equivalent on
// Linux, ~/Library/Application Support/requireplus/config.cue on macOS,
// %APPDATA%\requireplus\config.cue on Windows), falling back to ./config.cue.
// Values can be overridden with REQUIREPLUS_* environment variables.
//
// The configuration controls the module search path, the load size limit, the
// file extensions probed for each module form, which forms are enabled, the
// native extension memory limit and UI settings. Files are validated against
// the embedded CUE schema (config_schema.cue).
package config
