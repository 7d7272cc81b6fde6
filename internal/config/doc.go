// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is read from the first of: the file named by --config, .depshed.cue in the
// scan root, and config.cue in the user config directory ($XDG_CONFIG_HOME/depshed on Linux,
// ~/Library/Application Support/depshed on macOS, %APPDATA%\depshed on Windows). Omitted
// fields keep their defaults and DEPSHED_* environment variables override both.
//
// Files are validated against an embedded CUE schema (config_schema.cue) before they are
// merged, so type errors are reported with the offending field path.
package config
