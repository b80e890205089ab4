package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const ruleWidth = 70

// Printer writes status lines and summaries. Styles are bound to the output
// writer, so colour is dropped when it is not a terminal.
type Printer struct {
	out     io.Writer
	heading lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	muted   lipgloss.Style
}

// NewPrinter constructs a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	renderer := lipgloss.NewRenderer(w)
	return &Printer{
		out:     w,
		heading: renderer.NewStyle().Bold(true),
		ok:      renderer.NewStyle().Foreground(lipgloss.Color("42")),
		warn:    renderer.NewStyle().Foreground(lipgloss.Color("220")),
		fail:    renderer.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		muted:   renderer.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

func (p *Printer) label(status Status) string {
	switch status {
	case StatusFail:
		return p.fail.Render(string(status))
	case StatusWarn:
		return p.warn.Render(string(status))
	default:
		return p.ok.Render(string(status))
	}
}

// Status prints "<STATUS> <command_id>[: reason]".
func (p *Printer) Status(status Status, commandID, reason string) {
	line := p.label(status) + " " + commandID
	if reason = strings.TrimSpace(reason); reason != "" {
		line += ": " + reason
	}
	fmt.Fprintln(p.out, line)
}

// Totals prints the aggregate "Passed / Warnings / Errors" line.
func (p *Printer) Totals(passed, warnings, errors int) {
	fmt.Fprintf(p.out, "Passed: %d / Warnings: %d / Errors: %d\n", passed, warnings, errors)
}

// RenderSummary writes summary to w.
func RenderSummary(w io.Writer, summary Summary) {
	NewPrinter(w).Summary(summary)
}

// Summary prints the full validation summary.
func (p *Printer) Summary(s Summary) {
	p.section("PLAYBOOK METADATA SUMMARY")
	fmt.Fprintf(p.out, "Total documents: %d\n", s.TotalDocuments)
	fmt.Fprintf(p.out, "Average confidence: %s\n", formatPercent(s.AverageConfidence))
	fmt.Fprintf(p.out, "Documents with errors: %d\n", s.DocumentsWithErrors)
	fmt.Fprintf(p.out, "Errors: %d\n", s.TotalErrors)
	fmt.Fprintf(p.out, "Warnings: %d\n", s.TotalWarnings)
	fmt.Fprintf(p.out, "Suggestions: %d\n", len(s.Suggestions))

	if len(s.Categories) > 0 {
		p.section("CATEGORIES")
		for _, row := range s.Categories {
			fmt.Fprintf(p.out, "  %-20s %3d\n", row.Category, row.Count)
		}
	}

	if len(s.Completeness) > 0 && s.TotalDocuments > 0 {
		p.section("FIELD COMPLETENESS")
		for _, row := range s.Completeness {
			fmt.Fprintf(p.out, "  %-20s %d/%d\n", row.Field, row.Present, row.Total)
		}
	}

	if len(s.Errors) > 0 {
		p.section("ERRORS")
		for _, issue := range s.Errors {
			fmt.Fprintf(p.out, "  %s %s: %s\n", p.label(StatusFail), issue.CommandID, issue.Message)
		}
	}

	if len(s.Warnings) > 0 {
		p.section("WARNINGS")
		for _, group := range s.Warnings {
			fmt.Fprintf(p.out, "  %s (%d)\n", group.Field, len(group.Issues))
			shown := group.Issues
			if s.MaxPerGroup > 0 && len(shown) > s.MaxPerGroup {
				shown = shown[:s.MaxPerGroup]
			}
			for _, issue := range shown {
				fmt.Fprintf(p.out, "    %s %s: %s\n", p.label(StatusWarn), issue.CommandID, issue.Message)
			}
			if hidden := len(group.Issues) - len(shown); hidden > 0 {
				fmt.Fprintln(p.out, p.muted.Render(fmt.Sprintf("    ... and %d more", hidden)))
			}
		}
	}

	if len(s.LowConfidence) > 0 {
		p.section(fmt.Sprintf("LOW CONFIDENCE (< %s)", formatPercent(s.LowConfidenceLimit)))
		for _, issue := range s.LowConfidence {
			fmt.Fprintf(p.out, "  %-30s %s\n", issue.CommandID, issue.Message)
		}
	}

	if len(s.Suggestions) > 0 {
		p.section("SUGGESTIONS")
		byField := map[string][]Suggestion{}
		var fields []string
		for _, suggestion := range s.Suggestions {
			if _, ok := byField[suggestion.Field]; !ok {
				fields = append(fields, suggestion.Field)
			}
			byField[suggestion.Field] = append(byField[suggestion.Field], suggestion)
		}
		sort.Strings(fields)
		for _, field := range fields {
			list := byField[field]
			fmt.Fprintf(p.out, "  %s (%d documents)\n", field, len(list))
			shown := list
			if s.MaxPerGroup > 0 && len(shown) > s.MaxPerGroup {
				shown = shown[:s.MaxPerGroup]
			}
			for _, suggestion := range shown {
				fmt.Fprintf(p.out, "    - %s: %s\n", suggestion.CommandID, suggestion.Text)
			}
			if hidden := len(list) - len(shown); hidden > 0 {
				fmt.Fprintln(p.out, p.muted.Render(fmt.Sprintf("    ... and %d more", hidden)))
			}
		}
	}

	fmt.Fprintln(p.out)
	p.Totals(s.Passed, s.WithWarnings, s.DocumentsWithErrors)
}

func (p *Printer) section(title string) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.heading.Render(title))
	fmt.Fprintln(p.out, strings.Repeat("-", ruleWidth))
}

func formatPercent(value float64) string {
	return fmt.Sprintf("%.2f%%", value*100)
}
