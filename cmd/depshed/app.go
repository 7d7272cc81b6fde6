// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/depshed/depshed/internal/config"
	"github.com/depshed/depshed/internal/issue"
	"github.com/depshed/depshed/internal/scan"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root
	// for the CLI layer: Cobra handlers receive an App and delegate through its
	// service interfaces.
	App struct {
		Config ConfigProvider
		Scans  ScanService
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Scans  ScanService
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
		Source(opts config.LoadOptions) (string, error)
	}

	// ScanRequest captures the inputs of one analyze or prune invocation.
	ScanRequest struct {
		// Root is the repository directory to scan.
		Root string
		// ConfigPath is the explicit --config flag value.
		ConfigPath string
		// Apply edits descriptors; false is a dry run.
		Apply bool
		// Workers overrides the configured worker count when positive.
		Workers int
		// Verbose enables per-reference debug logging.
		Verbose bool
	}

	// ScanResult is the report together with the configuration that produced it.
	ScanResult struct {
		Report *scan.Report
		Config *config.Config
	}

	// ScanService runs a scan. Implementations log progress but leave report
	// rendering to the CLI layer.
	ScanService interface {
		Scan(ctx context.Context, req ScanRequest) (ScanResult, error)
	}

	scanService struct {
		config ConfigProvider
		stderr io.Writer
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Scans == nil {
		deps.Scans = &scanService{config: deps.Config, stderr: deps.Stderr}
	}

	return &App{
		Config: deps.Config,
		Scans:  deps.Scans,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}, nil
}

// Scan loads configuration for req.Root, builds the catalog and runs the scanner.
func (s *scanService) Scan(ctx context.Context, req ScanRequest) (ScanResult, error) {
	root := req.Root
	if root == "" {
		root = "."
	}

	info, err := os.Stat(root)
	if err == nil && !info.IsDir() {
		err = fmt.Errorf("%s: %w", root, scan.ErrNotDirectory)
	}
	if err != nil {
		return ScanResult{}, scanRootError(root, err)
	}

	cfg, err := s.config.Load(ctx, config.LoadOptions{ConfigFilePath: req.ConfigPath, ScanRoot: root})
	if err != nil {
		return ScanResult{}, configError(err)
	}
	if req.Workers > 0 {
		cfg.Workers = req.Workers
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return ScanResult{}, issue.New(issue.OpValidateConfig, req.ConfigPath, err).About(issue.RuleInvalidId)
	}

	logger := newLogger(s.stderr, req.Verbose || cfg.UI.Verbose)
	report, err := scan.New(catalog, cfg.ScanOptions(logger, req.Apply)).Run(ctx, root)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return ScanResult{}, err
		}
		return ScanResult{}, scanRootError(root, err)
	}

	return ScanResult{Report: report, Config: cfg}, nil
}
