// Package metrics computes per-function complexity, per-class cohesion
// and coupling estimates, and file-level quality scores from the
// structural model. All scores are total functions: empty input yields
// neutral values, never an error.
//
// Documented maintainability penalties (baseline 100, clamped to [0,100]):
//
//	file longer than the large-file threshold      -15
//	each long method                                -3 (capped at -15)
//	each high-complexity function                   -2 (capped at -20)
//	each large class                               -10 (capped at -20)
//	class coupling above 0.7                       -10
//	function nesting beyond the deep threshold      -2 each (capped at -8)
//	comment ratio of at least 10%                   +5
package metrics

import (
	"regexp"
	"strings"

	"codescope/internal/config"
	"codescope/internal/parser"
	"codescope/internal/util"
)

// QualityMetrics are the file-level scores, each normalized to 0-10.
type QualityMetrics struct {
	Complexity      float64 `json:"complexity"`
	Maintainability float64 `json:"maintainability"`
	Testability     float64 `json:"testability"`
	Readability     float64 `json:"readability"`
	Performance     float64 `json:"performance"`
}

type Engine struct {
	thresholds config.Thresholds
}

func NewEngine(t config.Thresholds) *Engine {
	return &Engine{thresholds: t}
}

// AnalyzeFile fills the derived fields of the structural model in place
// (function complexity and nesting, class cohesion and coupling) and
// returns the file-level quality scores.
func (e *Engine) AnalyzeFile(f *parser.File) QualityMetrics {
	if f == nil {
		return neutralQuality()
	}

	for i := range f.Functions {
		fn := &f.Functions[i]
		fn.Complexity = Cyclomatic(fn.Body, f.Language)
		fn.Nesting = NestingDepth(fn.Body, f.Language)
	}
	for i := range f.Classes {
		cls := &f.Classes[i]
		cls.Cohesion = ClassCohesion(cls, f.Functions)
		cls.Coupling = ClassCoupling(cls, f.Functions)
	}

	return e.quality(f)
}

var (
	branchWordRe  = regexp.MustCompile(`\b(if|for|while|case|catch|elif|except|when)\b`)
	logicalWordRe = regexp.MustCompile(`\b(and|or)\b`)
)

// Cyclomatic is the additive approximation the glossary defines:
// 1 + branch keyword occurrences + short-circuit/ternary operators.
func Cyclomatic(body, language string) int {
	if strings.TrimSpace(body) == "" {
		return 1
	}

	complexity := 1 + len(branchWordRe.FindAllString(body, -1))
	complexity += strings.Count(body, "&&")
	complexity += strings.Count(body, "||")

	switch language {
	case "python":
		complexity += len(logicalWordRe.FindAllString(body, -1))
	case "go":
		// no ternary operator
	default:
		complexity += countTernary(body)
	}
	return complexity
}

// countTernary counts `cond ? a : b` operators, ignoring optional
// chaining (`?.`) and nullish coalescing (`??`).
func countTernary(body string) int {
	count := 0
	for i := 0; i < len(body); i++ {
		if body[i] != '?' {
			continue
		}
		if i+1 < len(body) && (body[i+1] == '?' || body[i+1] == '.') {
			i++
			continue
		}
		count++
	}
	return count
}

// NestingDepth reports the maximum block depth inside a body: brace depth
// for the C family, indentation steps for Python.
func NestingDepth(body, language string) int {
	if language == "python" {
		return indentDepth(body)
	}

	depth, maxDepth := 0, 0
	inString := byte(0)
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if inString != 0 {
			if ch == '\\' {
				i++
			} else if ch == inString {
				inString = 0
			}
			continue
		}
		switch ch {
		case '"', '\'', '`':
			inString = ch
		case '{':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case '}':
			depth--
		}
	}
	// the body's own braces do not count as nesting
	if maxDepth > 0 {
		maxDepth--
	}
	return maxDepth
}

func indentDepth(body string) int {
	base := -1
	maxDepth := 0
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := 0
		for _, ch := range line {
			if ch == ' ' {
				indent++
			} else if ch == '\t' {
				indent += 4
			} else {
				break
			}
		}
		level := indent / 4
		if base == -1 || level < base {
			base = level
		}
		if level-base > maxDepth {
			maxDepth = level - base
		}
	}
	return maxDepth
}

// Maintainability returns the 0-100 index using the documented penalties.
func (e *Engine) Maintainability(f *parser.File) float64 {
	if f == nil {
		return 100
	}
	t := e.thresholds
	score := 100.0

	if f.LineCount > t.LargeFileLines {
		score -= 15
	}

	longMethodPenalty := 0.0
	complexityPenalty := 0.0
	nestingPenalty := 0.0
	for _, fn := range f.Functions {
		if fn.LOC > t.LongMethodLines {
			longMethodPenalty += 3
		}
		if fn.Complexity > t.HighComplexity {
			complexityPenalty += 2
		}
		if fn.Nesting > t.DeepNesting {
			nestingPenalty += 2
		}
	}
	score -= min(longMethodPenalty, 15)
	score -= min(complexityPenalty, 20)
	score -= min(nestingPenalty, 8)

	classPenalty := 0.0
	for _, cls := range f.Classes {
		if cls.MethodCount() > t.LargeClassMethod {
			classPenalty += 10
		}
		if cls.Coupling > 0.7 {
			score -= 10
		}
	}
	score -= min(classPenalty, 20)

	if f.LineCount > 0 && float64(f.CommentLines)/float64(f.LineCount) >= 0.1 {
		score += 5
	}

	return util.Clamp(score, 0, 100)
}

func (e *Engine) quality(f *parser.File) QualityMetrics {
	if len(f.Functions) == 0 && len(f.Classes) == 0 {
		q := neutralQuality()
		q.Maintainability = e.Maintainability(f) / 10
		return q
	}

	t := e.thresholds
	var totalComplexity, totalParams, totalLOC, maxNesting float64
	longMethods := 0
	for _, fn := range f.Functions {
		totalComplexity += float64(fn.Complexity)
		totalParams += float64(fn.ParamCount)
		totalLOC += float64(fn.LOC)
		if float64(fn.Nesting) > maxNesting {
			maxNesting = float64(fn.Nesting)
		}
		if fn.LOC > t.LongMethodLines {
			longMethods++
		}
	}

	avgComplexity, avgParams, avgLOC := 0.0, 0.0, 0.0
	if n := float64(len(f.Functions)); n > 0 {
		avgComplexity = totalComplexity / n
		avgParams = totalParams / n
		avgLOC = totalLOC / n
	}

	maxCoupling := 0.0
	for _, cls := range f.Classes {
		if cls.Coupling > maxCoupling {
			maxCoupling = cls.Coupling
		}
	}

	commentRatio := 0.0
	if f.LineCount > 0 {
		commentRatio = float64(f.CommentLines) / float64(f.LineCount)
	}

	return QualityMetrics{
		Complexity:      util.Clamp(10-(avgComplexity-1), 0, 10),
		Maintainability: e.Maintainability(f) / 10,
		Testability:     util.Clamp(10-0.5*avgParams-3*maxCoupling-0.5*maxNesting, 0, 10),
		Readability:     util.Clamp(10-1.5*float64(longMethods)-avgLOC/10+5*commentRatio, 0, 10),
		Performance:     util.Clamp(10-maxNesting, 0, 10),
	}
}

func neutralQuality() QualityMetrics {
	return QualityMetrics{
		Complexity:      10,
		Maintainability: 10,
		Testability:     10,
		Readability:     10,
		Performance:     10,
	}
}

// Distribution buckets every function complexity into the fixed ranges
// used for hotspot visualization.
func Distribution(functions []parser.Function) map[string]int {
	buckets := map[string]int{
		"1-5":   0,
		"6-10":  0,
		"11-20": 0,
		"21-50": 0,
		"50+":   0,
	}
	for _, fn := range functions {
		c := fn.Complexity
		switch {
		case c <= 5:
			buckets["1-5"]++
		case c <= 10:
			buckets["6-10"]++
		case c <= 20:
			buckets["11-20"]++
		case c <= 50:
			buckets["21-50"]++
		default:
			buckets["50+"]++
		}
	}
	return buckets
}
