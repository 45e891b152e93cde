// Package tui prints tool summaries for humans.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/asfe/pkg/domain"
	"github.com/aretw0/asfe/pkg/gather"
)

// ReportMarkdown renders a gatherer report as a markdown table in kcal/mol.
func ReportMarkdown(report *gather.Report) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", report.Network.String())
	sb.WriteString("| molecule | dG (kcal/mol) | stdev (kcal/mol) | repeats | excluded |\n")
	sb.WriteString("|---|---:|---:|---:|---:|\n")
	for _, row := range report.Rows {
		dg, sd := gather.Absent, gather.Absent
		if row.Estimate != nil {
			v, err := row.Estimate.DG.To(domain.KilocaloriePerMole)
			if err != nil {
				return "", fmt.Errorf("%s: %w", row.Name, err)
			}
			e, err := row.Estimate.StdDev.To(domain.KilocaloriePerMole)
			if err != nil {
				return "", fmt.Errorf("%s: %w", row.Name, err)
			}
			dg, sd = fmt.Sprintf("%.2f", v.Magnitude), fmt.Sprintf("%.2f", e.Magnitude)
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %d | %d |\n", escapeCell(row.Name), dg, sd, row.Repeats, row.Excluded)
	}
	fmt.Fprintf(&sb, "\n%d complete, %d absent, %d failed units excluded.\n",
		report.Complete(), report.Absent(), report.Excluded())
	if len(report.NewlyResolved) > 0 {
		fmt.Fprintf(&sb, "\nNew since last run: %s\n", strings.Join(report.NewlyResolved, ", "))
	}
	return sb.String(), nil
}

// Descriptors may contain '|', which would split a table cell.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// PrintReport writes the report table to w. Terminals get a styled
// rendering; anything else gets the raw markdown.
func PrintReport(w io.Writer, report *gather.Report) error {
	md, err := ReportMarkdown(report)
	if err != nil {
		return err
	}
	if IsTerminal(w) {
		if out, err := NewRenderer()(md); err == nil {
			md = out
		}
	}
	_, err = io.WriteString(w, md)
	return err
}
