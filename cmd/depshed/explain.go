// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/depshed/depshed/internal/issue"

	"github.com/spf13/cobra"
)

// newExplainCommand creates `depshed explain`, the issue catalog browser.
func newExplainCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [issue]",
		Short: "Explain an error or diagnostic and how to fix it",
		Long: `Explain an error or diagnostic and how to fix it.

Without arguments, lists every known issue. Issue names appear in error
output and in report hints, e.g. 'depshed explain descriptor-malformed'.`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var names []string
			for _, entry := range issue.Values() {
				if strings.HasPrefix(entry.Name(), toComplete) {
					names = append(names, entry.Name()+"\t"+entry.Title())
				}
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				listIssues(app)
				return nil
			}
			return explainIssue(app, args[0])
		},
	}
}

func listIssues(app *App) {
	fmt.Fprintln(app.stdout, TitleStyle.Render("Known issues"))
	fmt.Fprintln(app.stdout)

	width := 0
	for _, entry := range issue.Values() {
		width = max(width, len(entry.Name()))
	}
	for _, entry := range issue.Values() {
		fmt.Fprintf(app.stdout, "  %s  %s\n",
			CmdStyle.Render(fmt.Sprintf("%-*s", width, entry.Name())),
			SubtitleStyle.Render(entry.Title()))
	}
}

func explainIssue(app *App, name string) error {
	entry, ok := issue.Lookup(name)
	if !ok {
		names := make([]string, 0, len(issue.Values()))
		for _, e := range issue.Values() {
			names = append(names, e.Name())
		}
		return fmt.Errorf("unknown issue %q (known issues: %s)", name, strings.Join(names, ", "))
	}

	rendered, err := entry.Render("dark")
	if err != nil {
		return fmt.Errorf("render issue %s: %w", entry.Name(), err)
	}
	fmt.Fprint(app.stdout, rendered)
	return nil
}
