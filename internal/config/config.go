// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/depshed/depshed/internal/issue"
	"github.com/depshed/depshed/pkg/signature"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "depshed"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFileName is the per-repository config file in the scan root.
	LocalConfigFileName = ".depshed.cue"
	// EnvPrefix prefixes environment overrides (DEPSHED_UI_FORMAT=json).
	EnvPrefix = "DEPSHED"
)

// ErrConfigExists is returned by WriteDefault when the target already exists.
var ErrConfigExists = errors.New("config file already exists")

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the depshed configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		// XDG_CONFIG_HOME takes precedence when set.
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, "Library", "Application Support")
		}
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

// UserConfigPath returns the path of the per-user config file.
func UserConfigPath(configDirPath string) (string, error) {
	cfgDir, err := configDirWithOverride(configDirPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// locate returns the file loadWithOptions reads, or "" when only defaults
// apply. Lookup order: explicit file, scan root, user config directory.
func locate(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.New(issue.OpLoadConfig, opts.ConfigFilePath, fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				About(issue.ConfigLoadFailedId).
				Hint("Verify the file path is correct",
					"Check that the file exists and is readable",
					"Use 'depshed config show' to see the default configuration")
		}
		return opts.ConfigFilePath, nil
	}

	if opts.ScanRoot != "" {
		local := filepath.Join(opts.ScanRoot, LocalConfigFileName)
		if fileExists(local) {
			return local, nil
		}
	}

	userPath, err := UserConfigPath(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if fileExists(userPath) {
		return userPath, nil
	}

	return "", nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	if err := opts.Validate(); err != nil {
		return nil, "", err
	}

	v := newViper()

	resolvedPath, err := locate(opts)
	if err != nil {
		return nil, "", err
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.New(issue.OpLoadConfig, resolvedPath, err).
				About(issue.ConfigLoadFailedId).
				Hint("Check that the file contains valid CUE syntax",
					"Verify the configuration values match the expected schema")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		joined := errors.Join(errs...)
		id := issue.ConfigLoadFailedId
		if errors.Is(joined, signature.ErrInvalidRule) {
			id = issue.RuleInvalidId
		}
		return nil, "", issue.New(issue.OpValidateConfig, resolvedPath, joined).
			About(id).
			Hint("Check the values reported above")
	}
	if _, err := cfg.Catalog(); err != nil {
		return nil, "", issue.New(issue.OpValidateConfig, resolvedPath, err).
			About(issue.RuleInvalidId).
			Hint("Compare the rule with 'depshed config dump'")
	}

	return &cfg, resolvedPath, nil
}

// newViper returns a Viper instance carrying every default and reading
// DEPSHED_* environment overrides.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("source_roots.main", defaults.SourceRoots.Main)
	v.SetDefault("source_roots.test", defaults.SourceRoots.Test)
	v.SetDefault("markers", defaults.Markers)
	v.SetDefault("extensions", defaults.Extensions)
	v.SetDefault("exclude", defaults.Exclude)
	v.SetDefault("use_gitignore", defaults.UseGitignore)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("rule.name", defaults.Rule.Name)
	v.SetDefault("rule.coordinates", defaults.Rule.Coordinates)
	v.SetDefault("rule.blocking_types", defaults.Rule.BlockingTypes)
	v.SetDefault("rule.blocking_annotations", defaults.Rule.BlockingAnnotations)
	v.SetDefault("rule.blocking_packages", defaults.Rule.BlockingPackages)
	v.SetDefault("rule.neutral_shims", defaults.Rule.NeutralShims)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.format", defaults.UI.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
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
// and merges its contents into Viper.
//
// Config decodes to map[string]any rather than a struct so that Viper keeps
// defaults for omitted fields and environment overrides still apply. Fields
// are optional, hence Concrete(false).
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := checkFileSize(data, maxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// WriteDefault writes GenerateCUE(DefaultConfig()) to path, creating parent
// directories. An existing file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%s: %w", path, ErrConfigExists)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// depshed configuration\n")
	sb.WriteString("// Place as .depshed.cue in a repository root or as config.cue in the user config directory.\n\n")

	sb.WriteString("source_roots: {\n")
	writeCUEList(&sb, "\t", "main", sourceRootStrings(cfg.SourceRoots.Main))
	writeCUEList(&sb, "\t", "test", sourceRootStrings(cfg.SourceRoots.Test))
	sb.WriteString("}\n\n")

	writeCUEList(&sb, "", "markers", cfg.Markers)
	writeCUEList(&sb, "", "extensions", cfg.Extensions)
	writeCUEList(&sb, "", "exclude", cfg.Exclude)
	fmt.Fprintf(&sb, "use_gitignore: %v\n", cfg.UseGitignore)
	fmt.Fprintf(&sb, "workers: %d\n", cfg.Workers)

	sb.WriteString("\nrule: {\n")
	fmt.Fprintf(&sb, "\tname: %q\n", cfg.Rule.Name)
	writeCUEList(&sb, "\t", "coordinates", cfg.Rule.Coordinates)
	writeCUEList(&sb, "\t", "blocking_types", cfg.Rule.BlockingTypes)
	writeCUEList(&sb, "\t", "blocking_annotations", cfg.Rule.BlockingAnnotations)
	writeCUEList(&sb, "\t", "blocking_packages", cfg.Rule.BlockingPackages)
	writeCUEList(&sb, "\t", "neutral_shims", cfg.Rule.NeutralShims)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tformat: %q\n", cfg.UI.Format)
	sb.WriteString("}\n")

	return sb.String()
}

func writeCUEList(sb *strings.Builder, indent, field string, values []string) {
	if len(values) == 0 {
		fmt.Fprintf(sb, "%s%s: []\n", indent, field)
		return
	}
	fmt.Fprintf(sb, "%s%s: [\n", indent, field)
	for _, v := range values {
		fmt.Fprintf(sb, "%s\t%q,\n", indent, v)
	}
	fmt.Fprintf(sb, "%s]\n", indent)
}

func sourceRootStrings(paths []SourceRootPath) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, p.String())
	}
	return out
}
