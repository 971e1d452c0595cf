package report

import (
	"fmt"
	"sort"
	"strings"

	"codescope/internal/analysis"
)

// WriteDOT renders the internal dependency graph in Graphviz format.
// Circular edges come out red so cycles are visible at a glance;
// external targets are grouped into a dashed cluster.
func WriteDOT(summary *analysis.ProjectSummary) string {
	var b strings.Builder

	b.WriteString("digraph dependencies {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=8];\n\n")

	internal := make(map[string]bool)
	external := make(map[string]bool)
	for _, f := range summary.Files {
		internal[f.Path] = true
	}
	for _, e := range summary.Dependencies {
		if e.External {
			external[e.To] = true
		}
	}

	if len(external) > 0 {
		b.WriteString("  subgraph cluster_external {\n")
		b.WriteString("    label=\"External\";\n")
		b.WriteString("    style=dashed;\n")
		names := make([]string, 0, len(external))
		for name := range external {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "    %q [shape=ellipse];\n", name)
		}
		b.WriteString("  }\n\n")
	}

	for _, e := range summary.Dependencies {
		attrs := []string{fmt.Sprintf("label=\"%d\"", e.Weight)}
		if e.Circular {
			attrs = append(attrs, "color=red", "penwidth=2")
		}
		if e.External {
			attrs = append(attrs, "style=dashed")
		}
		fmt.Fprintf(&b, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	b.WriteString("}\n")
	return b.String()
}
