// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/depshed/depshed/internal/config"
	"github.com/depshed/depshed/internal/issue"
	"github.com/depshed/depshed/internal/scan"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/term"
	"sigs.k8s.io/yaml"
)

// reportSection groups outcomes of one status in the text report.
type reportSection struct {
	status scan.Status
	title  string
	symbol string
	style  lipgloss.Style
}

var (
	renderMarkdown = glamour.Render

	// isTerminal reports whether w is an interactive terminal. Markdown is
	// only rendered through glamour for terminals; pipes get the raw text.
	isTerminal = func(w io.Writer) bool {
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd()))
	}

	reportSections = []reportSection{
		{scan.StatusRetained, "Retained", "●", WarningStyle},
		{scan.StatusRemoved, "Removed", "✓", SuccessStyle},
		{scan.StatusRemovable, "Removable", "○", SuccessStyle},
		{scan.StatusFailed, "Failed", "✗", ErrorStyle},
		{scan.StatusAbsent, "Not declared", "·", VerboseStyle},
	}
)

// renderReport writes r to w in the requested format.
func renderReport(w io.Writer, r *scan.Report, format config.OutputFormat) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case config.FormatJSON:
		data, err = json.MarshalIndent(r, "", "  ")
		data = append(data, '\n')
	case config.FormatYAML:
		data, err = yaml.Marshal(r)
	case config.FormatTOML:
		data, err = toml.Marshal(r)
	case config.FormatMarkdown:
		md := reportMarkdown(r)
		if isTerminal(w) {
			md, err = renderMarkdown(md, "dark")
		}
		data = []byte(md)
	default:
		writeTextReport(w, r)
		return nil
	}
	if err != nil {
		return fmt.Errorf("encode %s report: %w", format, err)
	}

	_, err = w.Write(data)
	return err
}

func writeTextReport(w io.Writer, r *scan.Report) {
	mode := "prune"
	if r.DryRun {
		mode = "analyze (dry run)"
	}
	fmt.Fprintln(w, TitleStyle.Render("depshed "+mode))
	fmt.Fprintf(w, "%s %s\n", SubtitleStyle.Render("Root:"), CmdStyle.Render(r.Root))
	fmt.Fprintf(w, "%s %s\n", SubtitleStyle.Render("Rule:"), r.Rule)
	fmt.Fprintf(w, "%s %s\n", SubtitleStyle.Render("Dependency:"), strings.Join(r.Coordinates, ", "))

	for _, section := range reportSections {
		outcomes := outcomesWithStatus(r, section.status)
		if len(outcomes) == 0 {
			continue
		}
		fmt.Fprintln(w, reportLabelStyle.Render(fmt.Sprintf("%s (%d)", section.title, len(outcomes))))
		for _, o := range outcomes {
			fmt.Fprintf(w, "  %s %s  %s\n",
				section.style.Render(section.symbol),
				reportModuleStyle.Render(o.Module.Label()),
				VerboseStyle.Render(o.Descriptor))
			for _, sig := range o.Signatures {
				fmt.Fprintf(w, "      uses %s\n", CmdStyle.Render(string(sig)))
			}
			for _, a := range o.Artifacts {
				fmt.Fprintf(w, "      in   %s\n", a)
			}
			for _, rm := range o.Removed {
				fmt.Fprintf(w, "      - %s (line %d)\n", rm.Coordinate, rm.Line)
			}
		}
	}

	if len(r.Diagnostics) > 0 {
		fmt.Fprintln(w, reportLabelStyle.Render(fmt.Sprintf("Diagnostics (%d)", len(r.Diagnostics))))
		for _, d := range r.Diagnostics {
			fmt.Fprintf(w, "  %s %s\n", severityStyle(d.Severity).Render(string(d.Severity)), diagnosticText(d))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d descriptor(s): %d retained, %d removed, %d removable, %d not declared, %d failed\n",
		len(r.Outcomes),
		r.Count(scan.StatusRetained),
		r.Count(scan.StatusRemoved),
		r.Count(scan.StatusRemovable),
		r.Count(scan.StatusAbsent),
		r.Count(scan.StatusFailed))

	for _, hint := range reportHints(r) {
		fmt.Fprintln(w, reportHintStyle.Render(hint))
	}
}

// reportHints suggests the next command: applying a dry run, or explaining
// the issue behind a diagnostic code.
func reportHints(r *scan.Report) []string {
	var hints []string
	if r.DryRun && r.Count(scan.StatusRemovable) > 0 {
		hints = append(hints, "Run 'depshed prune' to apply these removals.")
	}

	seen := make(map[string]bool)
	for _, d := range r.Diagnostics {
		entry, ok := issue.Lookup(strings.ReplaceAll(d.Code, "_", "-"))
		if !ok || seen[entry.Name()] {
			continue
		}
		seen[entry.Name()] = true
		hints = append(hints, fmt.Sprintf("Run 'depshed explain %s' for help with %s diagnostics.", entry.Name(), d.Code))
	}
	return hints
}

func reportMarkdown(r *scan.Report) string {
	var sb strings.Builder

	sb.WriteString("# depshed report\n\n")
	fmt.Fprintf(&sb, "- **Root:** `%s`\n", r.Root)
	fmt.Fprintf(&sb, "- **Rule:** %s\n", r.Rule)
	fmt.Fprintf(&sb, "- **Dependency:** `%s`\n", strings.Join(r.Coordinates, "`, `"))
	if r.DryRun {
		sb.WriteString("- **Mode:** dry run\n")
	} else {
		sb.WriteString("- **Mode:** prune\n")
	}

	sb.WriteString("\n| Module | Descriptor | Status | Details |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, o := range r.Outcomes {
		fmt.Fprintf(&sb, "| `%s` | `%s` | %s | %s |\n",
			o.Module.Label(), o.Descriptor, o.Status, escapeTableCell(outcomeDetails(o)))
	}

	if len(r.Diagnostics) > 0 {
		sb.WriteString("\n## Diagnostics\n\n")
		for _, d := range r.Diagnostics {
			fmt.Fprintf(&sb, "- **%s** %s\n", d.Severity, diagnosticText(d))
		}
	}

	return sb.String()
}

func outcomeDetails(o scan.Outcome) string {
	var parts []string
	for _, sig := range o.Signatures {
		parts = append(parts, "`"+string(sig)+"`")
	}
	for _, rm := range o.Removed {
		parts = append(parts, fmt.Sprintf("`%s` (line %d)", rm.Coordinate, rm.Line))
	}
	return strings.Join(parts, ", ")
}

func diagnosticText(d scan.Diagnostic) string {
	if d.Path == "" {
		return d.Message
	}
	return d.Path + ": " + d.Message
}

func escapeTableCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func outcomesWithStatus(r *scan.Report, st scan.Status) []scan.Outcome {
	var out []scan.Outcome
	for _, o := range r.Outcomes {
		if o.Status == st {
			out = append(out, o)
		}
	}
	return out
}

func severityStyle(s scan.Severity) lipgloss.Style {
	switch s {
	case scan.SeverityError:
		return ErrorStyle
	case scan.SeverityWarning:
		return WarningStyle
	default:
		return VerboseStyle
	}
}
