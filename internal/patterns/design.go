package patterns

import (
	"fmt"
	"regexp"
	"strings"

	"codescope/internal/config"
	"codescope/internal/parser"
)

// SingletonRule looks for the classic shape: a static accessor that
// constructs the class itself, usually guarded by a cached instance
// field and a hidden constructor. Confidence climbs with each signal:
// a bare constructing accessor scores 0.45, a caching accessor 0.6,
// and caching plus a private constructor 0.8.
type SingletonRule struct{}

func (r *SingletonRule) Name() string       { return "singleton" }
func (r *SingletonRule) Category() Category { return CategoryDesignPattern }

func (r *SingletonRule) Detect(f *parser.File, _ config.Thresholds) []Finding {
	var findings []Finding
	for i := range f.Classes {
		cls := &f.Classes[i]
		accessor := r.staticAccessor(cls, f.Functions)
		if accessor == nil {
			continue
		}

		caches := r.cachesInstance(cls, accessor)
		private := r.privateConstructor(cls)
		confidence := 0.45
		if private {
			confidence = 0.5
		}
		if caches {
			confidence = 0.6
			if private {
				confidence = 0.8
			}
		}
		findings = append(findings, Finding{
			Line:        cls.StartLine,
			Subject:     cls.Name,
			Message:     fmt.Sprintf("%s exposes a singleton accessor %s", cls.Name, accessor.Name),
			Confidence:  confidence,
			Remediation: "Consider dependency injection instead of a process-global instance",
		})
	}
	return findings
}

// staticAccessor finds a static method whose body constructs or returns
// the owning class.
func (r *SingletonRule) staticAccessor(cls *parser.Class, functions []parser.Function) *parser.Function {
	static := make(map[string]bool, len(cls.StaticMethods))
	for _, m := range cls.StaticMethods {
		static[m] = true
	}

	for i := range functions {
		fn := &functions[i]
		if fn.Class != cls.Name {
			continue
		}
		if !fn.Static && !static[fn.Name] && !strings.HasPrefix(fn.Name, "get_instance") {
			continue
		}
		if strings.Contains(fn.Body, "new "+cls.Name) ||
			strings.Contains(fn.Body, cls.Name+"(") ||
			strings.Contains(fn.Body, "cls(") {
			return fn
		}
	}
	return nil
}

func (r *SingletonRule) cachesInstance(cls *parser.Class, accessor *parser.Function) bool {
	if strings.Contains(accessor.Body, cls.Name+".instance") ||
		strings.Contains(accessor.Body, cls.Name+"._instance") ||
		strings.Contains(accessor.Body, "cls._instance") ||
		strings.Contains(accessor.Body, "this.instance") {
		return true
	}
	for _, prop := range cls.Properties {
		if strings.Contains(strings.ToLower(prop), "instance") &&
			strings.Contains(accessor.Body, prop) {
			return true
		}
	}
	return false
}

// privateConstructor reports the hidden-constructor half of the shape:
// an explicit private constructor in the class body, or the
// underscore-prefixed cached-slot convention Python uses instead.
func (r *SingletonRule) privateConstructor(cls *parser.Class) bool {
	if strings.Contains(cls.Body, "private constructor") ||
		strings.Contains(cls.Body, "private "+cls.Name+"(") {
		return true
	}
	for _, prop := range cls.Properties {
		if strings.HasPrefix(prop, "_") && strings.Contains(strings.ToLower(prop), "instance") {
			return true
		}
	}
	return false
}

// FactoryRule flags functions that branch between two or more distinct
// constructor calls, the conditional-creation shape of a factory.
type FactoryRule struct{}

func (r *FactoryRule) Name() string       { return "factory" }
func (r *FactoryRule) Category() Category { return CategoryDesignPattern }

var (
	factoryCtorRe   = regexp.MustCompile(`\bnew\s+([A-Z][A-Za-z0-9_]*)`)
	factoryBranchRe = regexp.MustCompile(`\b(if|switch|case|elif|match|when)\b`)
)

func (r *FactoryRule) Detect(f *parser.File, _ config.Thresholds) []Finding {
	var findings []Finding
	for i := range f.Functions {
		fn := &f.Functions[i]
		if !factoryBranchRe.MatchString(fn.Body) {
			continue
		}
		distinct := map[string]bool{}
		for _, m := range factoryCtorRe.FindAllStringSubmatch(fn.Body, -1) {
			distinct[m[1]] = true
		}
		if len(distinct) < 2 {
			continue
		}
		findings = append(findings, Finding{
			Line:       fn.StartLine,
			Subject:    fn.Name,
			Message:    fmt.Sprintf("%s conditionally constructs %d different types", fn.Name, len(distinct)),
			Confidence: 0.7,
		})
	}
	return findings
}

// ObserverRule flags classes that keep a listener collection next to
// subscribe and notify operations. A matching unsubscribe raises the
// confidence from 0.6 to 0.8.
type ObserverRule struct{}

func (r *ObserverRule) Name() string       { return "observer" }
func (r *ObserverRule) Category() Category { return CategoryDesignPattern }

var listenerPropRe = regexp.MustCompile(`(?i)(listener|observer|subscriber|handler|callback)s?$`)

func (r *ObserverRule) Detect(f *parser.File, _ config.Thresholds) []Finding {
	var findings []Finding
	for i := range f.Classes {
		cls := &f.Classes[i]
		if !r.hasListenerCollection(cls) {
			continue
		}

		var hasAdd, hasNotify, hasRemove bool
		for _, m := range append(append([]string{}, cls.Methods...), cls.StaticMethods...) {
			lower := strings.ToLower(m)
			switch {
			case strings.HasPrefix(lower, "add") || strings.HasPrefix(lower, "subscribe") ||
				strings.HasPrefix(lower, "on") || strings.HasPrefix(lower, "register"):
				hasAdd = true
			case strings.HasPrefix(lower, "notify") || strings.HasPrefix(lower, "emit") ||
				strings.HasPrefix(lower, "publish") || strings.HasPrefix(lower, "dispatch") ||
				strings.HasPrefix(lower, "fire"):
				hasNotify = true
			case strings.HasPrefix(lower, "remove") || strings.HasPrefix(lower, "unsubscribe") ||
				strings.HasPrefix(lower, "off") || strings.HasPrefix(lower, "unregister"):
				hasRemove = true
			}
		}
		if !hasAdd || !hasNotify {
			continue
		}

		confidence := 0.6
		if hasRemove {
			confidence = 0.8
		}
		findings = append(findings, Finding{
			Line:       cls.StartLine,
			Subject:    cls.Name,
			Message:    fmt.Sprintf("%s maintains a listener collection with subscribe/notify methods", cls.Name),
			Confidence: confidence,
		})
	}
	return findings
}

func (r *ObserverRule) hasListenerCollection(cls *parser.Class) bool {
	for _, prop := range cls.Properties {
		if listenerPropRe.MatchString(prop) {
			return true
		}
	}
	return false
}
