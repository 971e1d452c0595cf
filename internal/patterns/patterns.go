// Package patterns runs detection rules over parsed files. Rules are
// pure functions of the structural model: they never re-read source and
// never fail, they just emit findings with a confidence score.
package patterns

import (
	"sort"

	"codescope/internal/config"
	"codescope/internal/parser"
	"codescope/internal/util"
)

type Category string

const (
	CategoryDesignPattern Category = "design-pattern"
	CategoryAntiPattern   Category = "anti-pattern"
	CategorySecurity      Category = "security"
	CategoryPerformance   Category = "performance"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Finding is one rule hit. Subject is the function or class the rule
// matched; Line points at its declaration.
type Finding struct {
	Rule        string   `json:"rule"`
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	File        string   `json:"file"`
	Line        int      `json:"line"`
	Subject     string   `json:"subject"`
	Message     string   `json:"message"`
	Confidence  float64  `json:"confidence"`
	Remediation string   `json:"remediation,omitempty"`
}

// Rule inspects one file at a time. Implementations must not mutate the
// file and must tolerate partially populated models.
type Rule interface {
	Name() string
	Category() Category
	Detect(f *parser.File, t config.Thresholds) []Finding
}

// Registry holds the enabled rule set for a run.
type Registry struct {
	rules      []Rule
	thresholds config.Thresholds
}

// NewRegistry builds the default rule set, dropping rules the
// configuration disables by name.
func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{thresholds: cfg.Thresholds}
	for _, rule := range defaultRules() {
		if cfg.RuleEnabled(rule.Name()) {
			r.rules = append(r.rules, rule)
		}
	}
	return r
}

func defaultRules() []Rule {
	return []Rule{
		&SingletonRule{},
		&FactoryRule{},
		&ObserverRule{},
		&GodObjectRule{},
		&LongMethodRule{},
		&LongParameterListRule{},
		&DeepNestingRule{},
		&InjectionRule{},
		&QueryInLoopRule{},
	}
}

// Rules reports the active rule names, sorted.
func (r *Registry) Rules() []string {
	names := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		names = append(names, rule.Name())
	}
	sort.Strings(names)
	return names
}

// Detect runs every enabled rule against the file. Findings come back
// ordered by line, then rule name, and confidence is always in [0,1].
func (r *Registry) Detect(f *parser.File) []Finding {
	var findings []Finding
	for _, rule := range r.rules {
		for _, finding := range rule.Detect(f, r.thresholds) {
			finding.Rule = rule.Name()
			finding.Category = rule.Category()
			finding.File = f.Path
			finding.Confidence = util.Clamp(finding.Confidence, 0, 1)
			if finding.Severity == "" {
				finding.Severity = defaultSeverity(finding.Category)
			}
			findings = append(findings, finding)
		}
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		return findings[i].Rule < findings[j].Rule
	})
	return findings
}

func defaultSeverity(c Category) Severity {
	switch c {
	case CategorySecurity:
		return SeverityCritical
	case CategoryDesignPattern:
		return SeverityInfo
	default:
		return SeverityWarning
	}
}
