// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/depshed/depshed/internal/config"
	"github.com/depshed/depshed/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath string
	verbose    bool
	format     string
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "depshed",
		Short: "Remove build dependencies that no module still uses",
		Long: TitleStyle.Render("depshed") + SubtitleStyle.Render(" - Remove build dependencies that no module still uses") + `

depshed scans a Java/Kotlin repository, decides per module whether the
configured dependency is still referenced by source code, and deletes it
from the Maven or Gradle descriptor of every module that no longer needs it.

` + SubtitleStyle.Render("Examples:") + `
  depshed analyze                  Report which modules keep the dependency
  depshed analyze --format json    Same, as machine-readable JSON
  depshed prune ./services         Edit descriptors under ./services
  depshed config init --local      Write .depshed.cue in the current directory
  depshed explain scan-root-invalid`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is .depshed.cue in the scan root, then the user config directory)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.format, "format", "", "output format: text, markdown, json, yaml or toml (default from config)")

	rootCmd.AddCommand(newAnalyzeCommand(app, flags))
	rootCmd.AddCommand(newPruneCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))
	rootCmd.AddCommand(newExplainCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Execute builds the default App and runs the root command.
// This is called by main.main().
func Execute() {
	if code := run(); code != 0 {
		os.Exit(code)
	}
}

// run executes the CLI against os.Args and returns the process exit code.
func run() int {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return ExitFailure
	}

	// fang overrides rootCmd.Version, so the version goes through fang.WithVersion.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		return ExitFailure
	}
	return 0
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// resolveFormat returns the --format value when set, otherwise the
// configured default.
func resolveFormat(flag string, cfg *config.Config) (config.OutputFormat, error) {
	format := cfg.UI.Format
	if flag != "" {
		format = config.OutputFormat(flag)
	}
	if valid, errs := format.IsValid(); !valid {
		return "", errors.Join(errs...)
	}
	return format, nil
}
