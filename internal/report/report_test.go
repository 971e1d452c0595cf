package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codescope/internal/analysis"
	"codescope/internal/graph"
	"codescope/internal/metrics"
)

func sampleSummary() *analysis.ProjectSummary {
	return &analysis.ProjectSummary{
		Roots:  []string{"src"},
		Totals: analysis.Totals{Files: 2, Functions: 3, Classes: 1, Lines: 120},
		Files: []analysis.FileSummary{
			{Path: "src/a.js", Language: "javascript", Lines: 80},
			{Path: "src/b.js", Language: "javascript", Lines: 40},
		},
		Dependencies: []graph.Edge{
			{From: "src/a.js", To: "src/b.js", Kind: "import", Weight: 2, Circular: true},
			{From: "src/a.js", To: "lodash", Kind: "import", Weight: 1, External: true},
		},
		Cycles:   [][]string{{"src/a.js", "src/b.js", "src/a.js"}},
		Hotspots: []metrics.Hotspot{{File: "src/a.js", Score: 12, Reasons: []string{"mess has complexity 25"}}},
		Duplicates: []analysis.Duplicate{{
			Pattern:  "const $ = 0",
			Lines:    6,
			Severity: "warning",
			Locations: []analysis.DuplicateLocation{
				{File: "src/a.js", Function: "sum", StartLine: 3},
				{File: "src/b.js", Function: "total", StartLine: 9},
			},
		}},
		Unused:     []analysis.UnusedItem{{File: "src/b.js", Item: "orphan", Type: "function"}},
		Complexity: map[string]int{"1-5": 2, "6-10": 1},
		Issues:     []analysis.Issue{{Path: "src/broken.js", Stage: "parse", Reason: "unexpected token"}},
	}
}

func TestWriteJSON_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleSummary()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var decoded analysis.ProjectSummary
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.Totals.Files != 2 || len(decoded.Hotspots) != 1 {
		t.Errorf("Round trip lost data: %+v", decoded)
	}
}

func TestWriteJSONFile_CreatesParents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "summary.json")
	if err := WriteJSONFile(path, sampleSummary()); err != nil {
		t.Fatalf("WriteJSONFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected output file: %v", err)
	}
}

func TestWriteText_SectionsPresent(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleSummary()); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Analyzed 2 files",
		"Import cycles (1)",
		"src/a.js -> src/b.js -> src/a.js",
		"Hotspots:",
		"Duplicated logic",
		"Possibly unused",
		"Analysis issues (1 files skipped)",
		"src/broken.js: parse failed: unexpected token",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Missing %q in output:\n%s", want, out)
		}
	}
}

func TestWriteText_NoCycles(t *testing.T) {
	s := sampleSummary()
	s.Cycles = nil
	var buf bytes.Buffer
	if err := WriteText(&buf, s); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No import cycles.") {
		t.Error("Expected the no-cycles line")
	}
}

func TestWriteDOT(t *testing.T) {
	out := WriteDOT(sampleSummary())
	if !strings.HasPrefix(out, "digraph dependencies {") {
		t.Errorf("Unexpected header: %q", out[:40])
	}
	if !strings.Contains(out, `"src/a.js" -> "src/b.js" [label="2", color=red, penwidth=2];`) {
		t.Errorf("Circular edge not highlighted:\n%s", out)
	}
	if !strings.Contains(out, "cluster_external") {
		t.Error("Expected external cluster")
	}
	if !strings.Contains(out, `style=dashed];`) {
		t.Error("Expected dashed external edge")
	}
}
