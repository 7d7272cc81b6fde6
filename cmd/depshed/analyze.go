// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/depshed/depshed/internal/issue"
	"github.com/depshed/depshed/internal/scan"

	"github.com/spf13/cobra"
)

// scanFlags holds the flags shared by analyze and prune.
type scanFlags struct {
	failOnRetain bool
	workers      int
}

// newAnalyzeCommand creates `depshed analyze`, the dry-run scan.
func newAnalyzeCommand(app *App, root *rootFlags) *cobra.Command {
	flags := &scanFlags{}
	analyzeCmd := &cobra.Command{
		Use:   "analyze [root]",
		Short: "Report which modules still use the dependency",
		Long: `Scan the repository and report, per build descriptor, whether the
configured dependency is still needed. No files are modified.

The scan root defaults to the current directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, app, root, flags, args, false)
		},
	}
	bindScanFlags(analyzeCmd, flags)
	return analyzeCmd
}

// newPruneCommand creates `depshed prune`, which edits descriptors.
func newPruneCommand(app *App, root *rootFlags) *cobra.Command {
	flags := &scanFlags{}
	pruneCmd := &cobra.Command{
		Use:   "prune [root]",
		Short: "Remove the dependency from modules that no longer use it",
		Long: `Scan the repository and delete the configured dependency from every
Maven or Gradle descriptor whose module no longer references it. Modules
that still reference it are reported and left untouched.

The scan root defaults to the current directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, app, root, flags, args, true)
		},
	}
	bindScanFlags(pruneCmd, flags)
	return pruneCmd
}

func bindScanFlags(cmd *cobra.Command, flags *scanFlags) {
	cmd.Flags().BoolVar(&flags.failOnRetain, "fail-on-retain", false, "exit with status 2 when any module still uses the dependency")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "number of source extraction workers (default from config, 0 = GOMAXPROCS)")
}

func runScan(cmd *cobra.Command, app *App, root *rootFlags, flags *scanFlags, args []string, apply bool) error {
	if flags.workers < 0 {
		return fmt.Errorf("--workers must not be negative, got %d", flags.workers)
	}

	req := ScanRequest{
		Root:       ".",
		ConfigPath: root.configPath,
		Apply:      apply,
		Workers:    flags.workers,
		Verbose:    root.verbose,
	}
	if len(args) > 0 {
		req.Root = args[0]
	}

	result, err := app.Scans.Scan(cmd.Context(), req)
	if err != nil {
		if issue.IssueOf(err) == 0 {
			return err
		}
		cmd.SilenceErrors = true
		writeFailure(app.stderr, err, root.verbose)
		return &ExitError{Code: ExitFailure, Err: err}
	}

	format, err := resolveFormat(root.format, result.Config)
	if err != nil {
		return err
	}
	if err := renderReport(app.stdout, result.Report, format); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	report := result.Report
	if report.HasFailures() {
		cmd.SilenceErrors = true
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("%d descriptor(s) could not be processed", report.Count(scan.StatusFailed))}
	}
	if flags.failOnRetain && report.HasRetained() {
		cmd.SilenceErrors = true
		return &ExitError{
			Code: ExitRetained,
			Err: fmt.Errorf("%d module(s) still use %s",
				report.Count(scan.StatusRetained), strings.Join(report.Coordinates, ", ")),
		}
	}
	return nil
}
