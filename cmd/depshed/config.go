// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/depshed/depshed/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `depshed config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App, root *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage depshed configuration",
		Long: `Manage depshed configuration.

Configuration is read from the first of:
  - the file passed with --config
  - .depshed.cue in the scan root
  - the user config file:
      Linux: ~/.config/depshed/config.cue
      macOS: ~/Library/Application Support/depshed/config.cue
      Windows: %APPDATA%\depshed\config.cue

DEPSHED_* environment variables override file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show [root]",
		Short: "Show the effective configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, loadOptions(root, args))
		},
	})

	var force, local bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file with every default spelled out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app.stdout, local, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	initCmd.Flags().BoolVar(&local, "local", false, "write .depshed.cue in the current directory instead of the user config directory")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path [root]",
		Short: "Show configuration file paths",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app, loadOptions(root, args))
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump [root]",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), loadOptions(root, args))
			if err != nil {
				return err
			}

			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func loadOptions(root *rootFlags, args []string) config.LoadOptions {
	opts := config.LoadOptions{ConfigFilePath: root.configPath, ScanRoot: "."}
	if len(args) > 0 {
		opts.ScanRoot = args[0]
	}
	return opts
}

func showConfig(ctx context.Context, app *App, opts config.LoadOptions) error {
	cfg, err := app.Config.Load(ctx, opts)
	if err != nil {
		return err
	}
	source, err := app.Config.Source(opts)
	if err != nil {
		return err
	}

	w := app.stdout
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if source == "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), source)
	}
	fmt.Fprintln(w)

	writeList := func(indent, key string, values []string) {
		fmt.Fprintf(w, "%s%s:\n", indent, keyStyle.Render(key))
		if len(values) == 0 {
			fmt.Fprintf(w, "%s  %s\n", indent, SubtitleStyle.Render("(none configured)"))
			return
		}
		for _, v := range values {
			fmt.Fprintf(w, "%s  - %s\n", indent, valueStyle.Render(v))
		}
	}

	fmt.Fprintf(w, "%s:\n", keyStyle.Render("source_roots"))
	writeList("  ", "main", sourceRoots(cfg.SourceRoots.Main))
	writeList("  ", "test", sourceRoots(cfg.SourceRoots.Test))
	writeList("", "markers", cfg.Markers)
	writeList("", "extensions", cfg.Extensions)
	writeList("", "exclude", cfg.Exclude)
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("use_gitignore"), valueStyle.Render(fmt.Sprintf("%v", cfg.UseGitignore)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("workers"), valueStyle.Render(fmt.Sprintf("%d", cfg.Workers)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("rule"))
	fmt.Fprintf(w, "  %s: %s\n", keyStyle.Render("name"), valueStyle.Render(cfg.Rule.Name))
	writeList("  ", "coordinates", cfg.Rule.Coordinates)
	writeList("  ", "blocking_types", cfg.Rule.BlockingTypes)
	writeList("  ", "blocking_annotations", cfg.Rule.BlockingAnnotations)
	writeList("  ", "blocking_packages", cfg.Rule.BlockingPackages)
	writeList("  ", "neutral_shims", cfg.Rule.NeutralShims)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
	fmt.Fprintf(w, "  format: %s\n", valueStyle.Render(cfg.UI.Format.String()))

	return nil
}

func initConfig(w io.Writer, local, force bool) error {
	path := config.LocalConfigFileName
	if !local {
		userPath, err := config.UserConfigPath("")
		if err != nil {
			return err
		}
		path = userPath
	}

	if err := config.WriteDefault(path, force); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			return fmt.Errorf("%w (use --force to overwrite)", err)
		}
		return fmt.Errorf("failed to create config: %w", err)
	}

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	fmt.Fprintf(w, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath(app *App, opts config.LoadOptions) error {
	userPath, err := config.UserConfigPath("")
	if err != nil {
		return err
	}
	source, err := app.Config.Source(opts)
	if err != nil {
		return err
	}
	if source == "" {
		source = "(using defaults)"
	}

	fmt.Fprintf(app.stdout, "User config file: %s\n", userPath)
	fmt.Fprintf(app.stdout, "Local config file: %s\n", filepath.Join(opts.ScanRoot, config.LocalConfigFileName))
	fmt.Fprintf(app.stdout, "Active: %s\n", source)
	return nil
}

func sourceRoots(paths []config.SourceRootPath) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, strings.TrimSuffix(p.String(), "/"))
	}
	return out
}
