package patterns

import (
	"fmt"

	"codescope/internal/config"
	"codescope/internal/parser"
)

// GodObjectRule flags classes with more methods than the configured
// large-class threshold.
type GodObjectRule struct{}

func (r *GodObjectRule) Name() string       { return "god-object" }
func (r *GodObjectRule) Category() Category { return CategoryAntiPattern }

func (r *GodObjectRule) Detect(f *parser.File, t config.Thresholds) []Finding {
	var findings []Finding
	for i := range f.Classes {
		cls := &f.Classes[i]
		if cls.MethodCount() <= t.LargeClassMethod {
			continue
		}
		findings = append(findings, Finding{
			Line:        cls.StartLine,
			Subject:     cls.Name,
			Message:     fmt.Sprintf("%s has %d methods (limit %d)", cls.Name, cls.MethodCount(), t.LargeClassMethod),
			Confidence:  0.9,
			Remediation: "Split responsibilities into smaller collaborating types",
		})
	}
	return findings
}

// LongMethodRule flags functions longer than the configured line limit.
type LongMethodRule struct{}

func (r *LongMethodRule) Name() string       { return "long-method" }
func (r *LongMethodRule) Category() Category { return CategoryAntiPattern }

func (r *LongMethodRule) Detect(f *parser.File, t config.Thresholds) []Finding {
	var findings []Finding
	for i := range f.Functions {
		fn := &f.Functions[i]
		if fn.LOC <= t.LongMethodLines {
			continue
		}
		findings = append(findings, Finding{
			Line:        fn.StartLine,
			Subject:     fn.Name,
			Message:     fmt.Sprintf("%s is %d lines long (limit %d)", fn.Name, fn.LOC, t.LongMethodLines),
			Confidence:  1,
			Remediation: "Extract cohesive steps into smaller functions",
		})
	}
	return findings
}

// LongParameterListRule flags functions taking more parameters than the
// configured limit. A function can trip this and LongMethodRule at once;
// both findings are reported.
type LongParameterListRule struct{}

func (r *LongParameterListRule) Name() string       { return "long-parameter-list" }
func (r *LongParameterListRule) Category() Category { return CategoryAntiPattern }

func (r *LongParameterListRule) Detect(f *parser.File, t config.Thresholds) []Finding {
	var findings []Finding
	for i := range f.Functions {
		fn := &f.Functions[i]
		if fn.ParamCount <= t.LongParamCount {
			continue
		}
		findings = append(findings, Finding{
			Line:        fn.StartLine,
			Subject:     fn.Name,
			Message:     fmt.Sprintf("%s takes %d parameters (limit %d)", fn.Name, fn.ParamCount, t.LongParamCount),
			Confidence:  1,
			Remediation: "Group related parameters into a single options value",
		})
	}
	return findings
}

// DeepNestingRule flags functions whose block depth exceeds the
// configured threshold.
type DeepNestingRule struct{}

func (r *DeepNestingRule) Name() string       { return "deep-nesting" }
func (r *DeepNestingRule) Category() Category { return CategoryAntiPattern }

func (r *DeepNestingRule) Detect(f *parser.File, t config.Thresholds) []Finding {
	var findings []Finding
	for i := range f.Functions {
		fn := &f.Functions[i]
		if fn.Nesting <= t.DeepNesting {
			continue
		}
		findings = append(findings, Finding{
			Line:        fn.StartLine,
			Subject:     fn.Name,
			Message:     fmt.Sprintf("%s nests %d levels deep (limit %d)", fn.Name, fn.Nesting, t.DeepNesting),
			Confidence:  1,
			Remediation: "Use early returns or extract the inner blocks",
		})
	}
	return findings
}
