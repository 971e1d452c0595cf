package metrics

import (
	"fmt"
	"sort"

	"codescope/internal/parser"
)

// Hotspot is a file whose accumulated structural problems cross the
// reporting threshold.
type Hotspot struct {
	File    string   `json:"file"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// Score accumulates a file's problem weight. Each finding contributes
// proportionally to how far it exceeds its threshold, so a function of
// complexity 30 weighs more than one of complexity 12.
func (e *Engine) Score(f *parser.File) (int, []string) {
	t := e.thresholds
	score := 0
	var reasons []string

	for _, fn := range f.Functions {
		if fn.Complexity > t.HighComplexity {
			score += fn.Complexity - t.HighComplexity
			reasons = append(reasons, fmt.Sprintf("%s has complexity %d", fn.Name, fn.Complexity))
		}
		if fn.LOC > t.LongMethodLines {
			score += 2
			reasons = append(reasons, fmt.Sprintf("%s is %d lines long", fn.Name, fn.LOC))
		}
		if fn.ParamCount > t.LongParamCount {
			score += 2
			reasons = append(reasons, fmt.Sprintf("%s takes %d parameters", fn.Name, fn.ParamCount))
		}
		if fn.Nesting > t.DeepNesting {
			score += 1
			reasons = append(reasons, fmt.Sprintf("%s nests %d levels deep", fn.Name, fn.Nesting))
		}
	}

	for _, cls := range f.Classes {
		if cls.MethodCount() > t.LargeClassMethod {
			score += 3
			reasons = append(reasons, fmt.Sprintf("%s has %d methods", cls.Name, cls.MethodCount()))
		}
		if cls.Coupling > 0.7 {
			score += 3
			reasons = append(reasons, fmt.Sprintf("%s is tightly coupled (%.2f)", cls.Name, cls.Coupling))
		}
		if len(cls.Methods) > 1 && cls.Cohesion < 0.3 {
			score += 2
			reasons = append(reasons, fmt.Sprintf("%s has low cohesion (%.2f)", cls.Name, cls.Cohesion))
		}
	}

	if f.LineCount > t.LargeFileLines {
		score += 3
		reasons = append(reasons, fmt.Sprintf("file is %d lines long", f.LineCount))
	}

	return score, reasons
}

// Hotspots ranks the given files, keeps those at or above the minimum
// score, and returns at most the configured top N. Ties break on path so
// repeated runs over the same tree produce identical output.
func (e *Engine) Hotspots(files []*parser.File) []Hotspot {
	var spots []Hotspot
	for _, f := range files {
		score, reasons := e.Score(f)
		if score >= e.thresholds.HotspotMinScore {
			spots = append(spots, Hotspot{File: f.Path, Score: score, Reasons: reasons})
		}
	}

	sort.Slice(spots, func(i, j int) bool {
		if spots[i].Score != spots[j].Score {
			return spots[i].Score > spots[j].Score
		}
		return spots[i].File < spots[j].File
	})

	if n := e.thresholds.HotspotTopN; n > 0 && len(spots) > n {
		spots = spots[:n]
	}
	return spots
}
