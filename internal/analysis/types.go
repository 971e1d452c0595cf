// Package analysis merges per-file parse, metric and pattern results
// into the project-level summary the reporters serialize.
package analysis

import (
	"time"

	"codescope/internal/graph"
	"codescope/internal/metrics"
	"codescope/internal/parser"
	"codescope/internal/patterns"
)

// FileResult is everything one worker produced for one file.
type FileResult struct {
	File     *parser.File
	Quality  metrics.QualityMetrics
	Findings []patterns.Finding
}

// Issue records a file the run could not fully analyze. The run itself
// still succeeds; issues surface in their own report section.
type Issue struct {
	Path   string `json:"path"`
	Stage  string `json:"stage"` // "read" or "parse"
	Reason string `json:"reason"`
}

type DuplicateLocation struct {
	File      string `json:"file"`
	Function  string `json:"function"`
	StartLine int    `json:"start_line"`
}

// Duplicate is a cluster of structurally identical function bodies.
type Duplicate struct {
	Pattern   string              `json:"pattern"` // normalized signature excerpt
	Lines     int                 `json:"lines"`
	Locations []DuplicateLocation `json:"locations"`
	Severity  string              `json:"severity"`
}

type UnusedItem struct {
	File string `json:"file"`
	Item string `json:"item"`
	Type string `json:"type"` // "function" or "class"
}

type FileSummary struct {
	Path      string                 `json:"path"`
	Language  string                 `json:"language"`
	Lines     int                    `json:"lines"`
	Functions int                    `json:"functions"`
	Classes   int                    `json:"classes"`
	Quality   metrics.QualityMetrics `json:"quality"`
	Findings  []patterns.Finding     `json:"findings,omitempty"`
}

type Totals struct {
	Files     int `json:"files"`
	Functions int `json:"functions"`
	Classes   int `json:"classes"`
	Lines     int `json:"lines"`
}

// ProjectSummary is the top-level analysis artifact.
type ProjectSummary struct {
	GeneratedAt  time.Time          `json:"generated_at"`
	Roots        []string           `json:"roots"`
	Totals       Totals             `json:"totals"`
	Files        []FileSummary      `json:"files"`
	Dependencies []graph.Edge       `json:"dependencies"`
	Cycles       [][]string         `json:"cycles"`
	Hotspots     []metrics.Hotspot  `json:"hotspots"`
	Duplicates   []Duplicate        `json:"duplicates"`
	Unused       []UnusedItem       `json:"unused"`
	Complexity   map[string]int     `json:"complexity_distribution"`
	FanMetrics   map[string]graph.FanMetrics `json:"fan_metrics,omitempty"`
	Issues       []Issue            `json:"issues,omitempty"`
}
