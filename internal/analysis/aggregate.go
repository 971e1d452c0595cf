package analysis

import (
	"sort"
	"strings"
	"time"

	"codescope/internal/config"
	"codescope/internal/graph"
	"codescope/internal/metrics"
	"codescope/internal/parser"
)

// Aggregator runs single-threaded after the per-file workers finish. It
// owns the cross-file passes: call counts, class usage, duplicate
// clustering and unused detection.
type Aggregator struct {
	thresholds config.Thresholds
	engine     *metrics.Engine
}

func NewAggregator(t config.Thresholds) *Aggregator {
	return &Aggregator{thresholds: t, engine: metrics.NewEngine(t)}
}

// Aggregate merges worker results and the resolved graph into the final
// summary. Results may arrive in any order; output ordering is by path
// throughout.
func (a *Aggregator) Aggregate(roots []string, results []*FileResult, g *graph.Graph, issues []Issue) *ProjectSummary {
	sort.Slice(results, func(i, j int) bool {
		return results[i].File.Path < results[j].File.Path
	})

	a.applyCallCounts(results)
	a.applyClassUsage(results)

	var allFunctions []parser.Function
	var files []*parser.File
	summaries := make([]FileSummary, 0, len(results))
	totals := Totals{}
	for _, res := range results {
		f := res.File
		files = append(files, f)
		allFunctions = append(allFunctions, f.Functions...)
		totals.Files++
		totals.Functions += len(f.Functions)
		totals.Classes += len(f.Classes)
		totals.Lines += f.LineCount
		summaries = append(summaries, FileSummary{
			Path:      f.Path,
			Language:  f.Language,
			Lines:     f.LineCount,
			Functions: len(f.Functions),
			Classes:   len(f.Classes),
			Quality:   res.Quality,
			Findings:  res.Findings,
		})
	}

	cycles := g.DetectCycles()
	if cycles == nil {
		cycles = [][]string{}
	}

	sort.Slice(issues, func(i, j int) bool { return issues[i].Path < issues[j].Path })

	return &ProjectSummary{
		GeneratedAt:  time.Now().UTC(),
		Roots:        roots,
		Totals:       totals,
		Files:        summaries,
		Dependencies: g.Edges(),
		Cycles:       cycles,
		Hotspots:     a.engine.Hotspots(files),
		Duplicates:   a.findDuplicates(results),
		Unused:       a.findUnused(results),
		Complexity:   metrics.Distribution(allFunctions),
		FanMetrics:   g.FanMetrics(),
		Issues:       issues,
	}
}

// applyCallCounts tallies how often each function name is called across
// the whole project. Name collisions across files merge, which
// overcounts; for unused detection only the zero bucket matters.
func (a *Aggregator) applyCallCounts(results []*FileResult) {
	calls := make(map[string]int)
	for _, res := range results {
		for i := range res.File.Functions {
			for _, callee := range res.File.Functions[i].Callees {
				calls[callee]++
			}
		}
	}
	for _, res := range results {
		for i := range res.File.Functions {
			fn := &res.File.Functions[i]
			fn.CallCount = calls[fn.Name]
		}
	}
}

func (a *Aggregator) applyClassUsage(results []*FileResult) {
	usage := make(map[string]int)
	for _, res := range results {
		for _, inst := range res.File.Instantiations {
			usage[inst]++
		}
		for _, cls := range res.File.Classes {
			for _, parent := range cls.Extends {
				usage[parent]++
			}
			for _, iface := range cls.Implements {
				usage[iface]++
			}
		}
	}
	for _, res := range results {
		for i := range res.File.Classes {
			cls := &res.File.Classes[i]
			cls.UsageCount = usage[cls.Name]
		}
	}
}

// findUnused reports private functions nobody calls and private classes
// with no usage and no inheritance relationships. Exported symbols are
// assumed to have callers outside the scan set; entry points and
// constructors are always kept.
func (a *Aggregator) findUnused(results []*FileResult) []UnusedItem {
	items := []UnusedItem{}
	for _, res := range results {
		for i := range res.File.Functions {
			fn := &res.File.Functions[i]
			if fn.Exported || fn.CallCount > 0 || fn.Class != "" {
				continue
			}
			if isEntryPoint(fn.Name) {
				continue
			}
			items = append(items, UnusedItem{File: fn.File, Item: fn.Name, Type: "function"})
		}
		for i := range res.File.Classes {
			cls := &res.File.Classes[i]
			if cls.Exported || cls.UsageCount > 0 {
				continue
			}
			// any inheritance relationship keeps the class: a subclass is
			// reachable wherever its base is consumed
			if len(cls.Extends) > 0 || len(cls.Implements) > 0 {
				continue
			}
			items = append(items, UnusedItem{File: cls.File, Item: cls.Name, Type: "class"})
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].File != items[j].File {
			return items[i].File < items[j].File
		}
		return items[i].Item < items[j].Item
	})
	return items
}

func isEntryPoint(name string) bool {
	switch name {
	case "main", "init", "constructor", "__init__", "__main__":
		return true
	}
	return strings.HasPrefix(name, "Test") || strings.HasPrefix(name, "test_")
}
