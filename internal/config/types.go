// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

const (
	// FormatText renders a styled terminal report.
	FormatText OutputFormat = "text"
	// FormatMarkdown renders the report as Markdown through glamour.
	FormatMarkdown OutputFormat = "markdown"
	// FormatJSON renders the report as indented JSON.
	FormatJSON OutputFormat = "json"
	// FormatYAML renders the report as YAML.
	FormatYAML OutputFormat = "yaml"
	// FormatTOML renders the report as TOML.
	FormatTOML OutputFormat = "toml"

	// maxWorkers bounds the extraction pool.
	maxWorkers = 256
)

var (
	// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidSourceRootPath is returned when a SourceRootPath is empty, absolute or escapes its module.
	ErrInvalidSourceRootPath = errors.New("invalid source root path")
	// ErrInvalidWorkers is returned when the worker count is out of range.
	ErrInvalidWorkers = errors.New("invalid worker count")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// OutputFormat selects how reports are rendered.
	OutputFormat string

	// InvalidOutputFormatError is returned when an OutputFormat value is not recognized.
	// It wraps ErrInvalidOutputFormat for errors.Is() compatibility.
	InvalidOutputFormatError struct {
		Value OutputFormat
	}

	// SourceRootPath is a slash-separated path relative to a module directory,
	// such as "src/main/java".
	SourceRootPath string

	// InvalidSourceRootPathError is returned when a SourceRootPath is empty,
	// absolute, or contains "..".
	InvalidSourceRootPathError struct {
		Value SourceRootPath
	}

	// InvalidWorkersError is returned when Workers is negative or above the limit.
	InvalidWorkersError struct {
		Value int
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
		// SourceRoots lists the main and test source roots of a module.
		SourceRoots SourceRootsConfig `json:"source_roots" mapstructure:"source_roots"`
		// Markers are file names that make their directory a module root.
		Markers []string `json:"markers" mapstructure:"markers"`
		// Extensions select the source files that are read.
		Extensions []string `json:"extensions" mapstructure:"extensions"`
		// Exclude holds gitignore-style patterns relative to the scan root.
		Exclude []string `json:"exclude" mapstructure:"exclude"`
		// UseGitignore honors the scan root's .gitignore.
		UseGitignore bool `json:"use_gitignore" mapstructure:"use_gitignore"`
		// Workers bounds concurrent source reads; 0 uses one per CPU.
		Workers int `json:"workers" mapstructure:"workers"`
		// Rule names the dependency and the signatures that keep it alive.
		Rule RuleConfig `json:"rule" mapstructure:"rule"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// SourceRootsConfig separates production and test source roots.
	SourceRootsConfig struct {
		Main []SourceRootPath `json:"main" mapstructure:"main"`
		Test []SourceRootPath `json:"test" mapstructure:"test"`
	}

	// RuleConfig is the configurable form of signature.Rule.
	RuleConfig struct {
		Name                string   `json:"name" mapstructure:"name"`
		Coordinates         []string `json:"coordinates" mapstructure:"coordinates"`
		BlockingTypes       []string `json:"blocking_types" mapstructure:"blocking_types"`
		BlockingAnnotations []string `json:"blocking_annotations" mapstructure:"blocking_annotations"`
		BlockingPackages    []string `json:"blocking_packages" mapstructure:"blocking_packages"`
		NeutralShims        []string `json:"neutral_shims" mapstructure:"neutral_shims"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging and error chains
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// Format is the default report format
		Format OutputFormat `json:"format" mapstructure:"format"`
	}
)

// OutputFormats lists every supported report format.
func OutputFormats() []OutputFormat {
	return []OutputFormat{FormatText, FormatMarkdown, FormatJSON, FormatYAML, FormatTOML}
}

// String returns the string representation of the OutputFormat.
func (f OutputFormat) String() string { return string(f) }

// IsValid returns whether the OutputFormat is one of the defined formats,
// and a list of validation errors if it is not.
func (f OutputFormat) IsValid() (bool, []error) {
	switch f {
	case FormatText, FormatMarkdown, FormatJSON, FormatYAML, FormatTOML:
		return true, nil
	default:
		return false, []error{&InvalidOutputFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidOutputFormatError.
func (e *InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: text, markdown, json, yaml, toml)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidOutputFormatError) Unwrap() error { return ErrInvalidOutputFormat }

// String returns the string representation of the SourceRootPath.
func (p SourceRootPath) String() string { return string(p) }

// IsValid returns whether the SourceRootPath is a non-empty relative path
// that stays inside its module.
func (p SourceRootPath) IsValid() (bool, []error) {
	s := strings.TrimSpace(string(p))
	if s == "" || strings.HasPrefix(s, "/") || strings.Contains(s, `\`) {
		return false, []error{&InvalidSourceRootPathError{Value: p}}
	}
	for _, seg := range strings.Split(path.Clean(s), "/") {
		if seg == ".." || seg == "." {
			return false, []error{&InvalidSourceRootPathError{Value: p}}
		}
	}
	return true, nil
}

// Error implements the error interface for InvalidSourceRootPathError.
func (e *InvalidSourceRootPathError) Error() string {
	return fmt.Sprintf("invalid source root %q: must be a relative slash-separated path inside the module", e.Value)
}

// Unwrap returns ErrInvalidSourceRootPath for errors.Is() compatibility.
func (e *InvalidSourceRootPathError) Unwrap() error { return ErrInvalidSourceRootPath }

// Error implements the error interface for InvalidWorkersError.
func (e *InvalidWorkersError) Error() string {
	return fmt.Sprintf("invalid worker count %d (valid: 0..%d)", e.Value, maxWorkers)
}

// Unwrap returns ErrInvalidWorkers for errors.Is() compatibility.
func (e *InvalidWorkersError) Unwrap() error { return ErrInvalidWorkers }

// IsValid returns whether the UIConfig has valid fields.
// It delegates to Format.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Format.IsValid(); !valid {
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

// IsValid returns whether the Config has valid fields. The rule section is
// checked separately by Catalog, which reports conflicts between its lists.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for _, p := range c.SourceRoots.All() {
		if valid, fieldErrs := p.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if c.Workers < 0 || c.Workers > maxWorkers {
		errs = append(errs, &InvalidWorkersError{Value: c.Workers})
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
	if len(e.FieldErrors) == 1 {
		return "invalid config: " + e.FieldErrors[0].Error()
	}
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// All returns main roots followed by test roots.
func (c SourceRootsConfig) All() []SourceRootPath {
	out := make([]SourceRootPath, 0, len(c.Main)+len(c.Test))
	out = append(out, c.Main...)
	return append(out, c.Test...)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		SourceRoots: SourceRootsConfig{
			Main: []SourceRootPath{"src/main/java", "src/main/kotlin"},
			Test: []SourceRootPath{"src/test/java", "src/test/kotlin"},
		},
		Markers:      []string{"pom.xml", "build.gradle", "build.gradle.kts", "settings.gradle", "settings.gradle.kts"},
		Extensions:   []string{".java", ".kt", ".kts", ".groovy"},
		Exclude:      []string{},
		UseGitignore: true,
		Workers:      0, // one per CPU
		Rule:         defaultRuleConfig(),
		UI: UIConfig{
			Verbose: false,
			Format:  FormatText,
		},
	}
}
