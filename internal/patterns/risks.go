package patterns

import (
	"fmt"
	"regexp"
	"strings"

	"codescope/internal/config"
	"codescope/internal/parser"
)

// InjectionRule flags query or exec calls whose argument is assembled by
// string concatenation or interpolation. It cannot see the value's
// origin, so the confidence stays below certainty.
type InjectionRule struct{}

func (r *InjectionRule) Name() string       { return "injection-risk" }
func (r *InjectionRule) Category() Category { return CategorySecurity }

var sinkCallRe = regexp.MustCompile(`(?i)\b(query|execute|exec|raw)\s*\(([^)]*)`)

func (r *InjectionRule) Detect(f *parser.File, _ config.Thresholds) []Finding {
	var findings []Finding
	for i := range f.Functions {
		fn := &f.Functions[i]
		for _, m := range sinkCallRe.FindAllStringSubmatch(fn.Body, -1) {
			args := m[2]
			if !dynamicString(args) {
				continue
			}
			findings = append(findings, Finding{
				Line:        fn.StartLine,
				Subject:     fn.Name,
				Message:     fmt.Sprintf("%s builds a %s argument from dynamic strings", fn.Name, strings.ToLower(m[1])),
				Confidence:  0.7,
				Remediation: "Use parameterized queries or prepared statements",
			})
			break
		}
	}
	return findings
}

// dynamicString reports whether a call argument looks assembled at
// runtime: concatenation, template interpolation or printf-style
// formatting.
func dynamicString(args string) bool {
	return strings.Contains(args, "+") ||
		strings.Contains(args, "${") ||
		strings.Contains(args, "%s") ||
		strings.Contains(args, ".format(") ||
		strings.Contains(args, "f\"") ||
		strings.Contains(args, "f'")
}

// QueryInLoopRule flags the N+1 shape: a data-access call issued from
// inside a loop body.
type QueryInLoopRule struct{}

func (r *QueryInLoopRule) Name() string       { return "query-in-loop" }
func (r *QueryInLoopRule) Category() Category { return CategoryPerformance }

var (
	loopStartRe = regexp.MustCompile(`(?m)^\s*(for|while)\b|\.(forEach|map)\s*\(`)
	dataCallRe  = regexp.MustCompile(`(?i)\b(query|execute|find|fetch|select|get_object|findOne|findAll)\s*\(`)
)

func (r *QueryInLoopRule) Detect(f *parser.File, _ config.Thresholds) []Finding {
	var findings []Finding
	for i := range f.Functions {
		fn := &f.Functions[i]
		loop := loopStartRe.FindStringIndex(fn.Body)
		if loop == nil {
			continue
		}
		// only calls issued after the loop opens count
		call := dataCallRe.FindStringIndex(fn.Body[loop[1]:])
		if call == nil {
			continue
		}
		findings = append(findings, Finding{
			Line:        fn.StartLine,
			Subject:     fn.Name,
			Message:     fmt.Sprintf("%s issues a data-access call inside a loop", fn.Name),
			Confidence:  0.6,
			Remediation: "Batch the query before the loop or prefetch the related records",
		})
	}
	return findings
}
