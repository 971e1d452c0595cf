package report

import (
	"fmt"
	"io"
	"strings"

	"codescope/internal/analysis"
)

// WriteText renders the human-readable run summary: totals, cycles,
// hotspots, duplicates, unused symbols and any analysis issues.
func WriteText(w io.Writer, summary *analysis.ProjectSummary) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyzed %d files (%d functions, %d classes, %d lines)\n",
		summary.Totals.Files, summary.Totals.Functions, summary.Totals.Classes, summary.Totals.Lines)

	fmt.Fprintf(&b, "\nComplexity distribution:\n")
	for _, bucket := range []string{"1-5", "6-10", "11-20", "21-50", "50+"} {
		fmt.Fprintf(&b, "  %-6s %d\n", bucket, summary.Complexity[bucket])
	}

	if len(summary.Cycles) > 0 {
		fmt.Fprintf(&b, "\nImport cycles (%d):\n", len(summary.Cycles))
		for _, cycle := range summary.Cycles {
			fmt.Fprintf(&b, "  %s\n", strings.Join(cycle, " -> "))
		}
	} else {
		fmt.Fprintf(&b, "\nNo import cycles.\n")
	}

	if len(summary.Hotspots) > 0 {
		fmt.Fprintf(&b, "\nHotspots:\n")
		for _, h := range summary.Hotspots {
			fmt.Fprintf(&b, "  %3d  %s\n", h.Score, h.File)
			for _, reason := range h.Reasons {
				fmt.Fprintf(&b, "         - %s\n", reason)
			}
		}
	}

	if len(summary.Duplicates) > 0 {
		fmt.Fprintf(&b, "\nDuplicated logic (%d clusters):\n", len(summary.Duplicates))
		for _, d := range summary.Duplicates {
			fmt.Fprintf(&b, "  [%s] %d lines in %d places:\n", d.Severity, d.Lines, len(d.Locations))
			for _, loc := range d.Locations {
				fmt.Fprintf(&b, "    %s:%d %s\n", loc.File, loc.StartLine, loc.Function)
			}
		}
	}

	if len(summary.Unused) > 0 {
		fmt.Fprintf(&b, "\nPossibly unused (%d):\n", len(summary.Unused))
		for _, u := range summary.Unused {
			fmt.Fprintf(&b, "  %s %s (%s)\n", u.Type, u.Item, u.File)
		}
	}

	if len(summary.Issues) > 0 {
		fmt.Fprintf(&b, "\nAnalysis issues (%d files skipped):\n", len(summary.Issues))
		for _, issue := range summary.Issues {
			fmt.Fprintf(&b, "  %s: %s failed: %s\n", issue.Path, issue.Stage, issue.Reason)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
