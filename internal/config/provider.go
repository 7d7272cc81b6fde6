// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLoadOptions is the sentinel error wrapped by InvalidLoadOptionsError.
var ErrInvalidLoadOptions = errors.New("invalid load options")

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath string
		// ConfigDirPath overrides the user config directory lookup when set.
		ConfigDirPath string
		// ScanRoot is searched for a .depshed.cue file when set.
		ScanRoot string
	}

	// InvalidLoadOptionsError is returned when a LoadOptions path is
	// whitespace-only. It wraps ErrInvalidLoadOptions for errors.Is().
	InvalidLoadOptionsError struct {
		FieldErrors []error
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
		// Source reports the file Load would read, or "" when only defaults apply.
		Source(opts LoadOptions) (string, error)
	}

	fileProvider struct{}
)

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Source resolves the config file without reading it.
func (p *fileProvider) Source(opts LoadOptions) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	return locate(opts)
}

// Validate rejects whitespace-only paths; empty paths mean "not set".
func (o LoadOptions) Validate() error {
	var errs []error
	check := func(field, value string) {
		if value != "" && strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%s must not be whitespace-only", field))
		}
	}
	check("config file path", o.ConfigFilePath)
	check("config dir path", o.ConfigDirPath)
	check("scan root", o.ScanRoot)
	if len(errs) > 0 {
		return &InvalidLoadOptionsError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidLoadOptionsError.
func (e *InvalidLoadOptionsError) Error() string {
	return fmt.Sprintf("invalid load options: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidLoadOptions for errors.Is() compatibility.
func (e *InvalidLoadOptionsError) Unwrap() error { return ErrInvalidLoadOptions }
