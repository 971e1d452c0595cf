package metrics

import (
	"strings"

	"codescope/internal/parser"
)

// ClassCohesion estimates how much of a class's state its methods
// actually touch: the share of methods that reference at least one own
// property or call a sibling method. 1.0 for classes with no methods
// (nothing can be incohesive).
func ClassCohesion(cls *parser.Class, functions []parser.Function) float64 {
	methods := classMethods(cls, functions)
	if len(methods) == 0 {
		return 1
	}

	siblings := make(map[string]bool, len(cls.Methods)+len(cls.StaticMethods))
	for _, m := range cls.Methods {
		siblings[m] = true
	}
	for _, m := range cls.StaticMethods {
		siblings[m] = true
	}

	touching := 0
	for _, fn := range methods {
		if referencesOwnState(fn, cls, siblings) {
			touching++
		}
	}
	return float64(touching) / float64(len(methods))
}

// ClassCoupling estimates dependence on the outside world: the number of
// distinct callees that are neither sibling methods nor own properties,
// scaled into [0,1] with saturation at fifteen external references.
func ClassCoupling(cls *parser.Class, functions []parser.Function) float64 {
	internal := make(map[string]bool)
	for _, m := range cls.Methods {
		internal[m] = true
	}
	for _, m := range cls.StaticMethods {
		internal[m] = true
	}
	for _, p := range cls.Properties {
		internal[p] = true
	}

	external := make(map[string]bool)
	for _, fn := range classMethods(cls, functions) {
		for _, callee := range fn.Callees {
			if !internal[callee] {
				external[callee] = true
			}
		}
	}

	coupling := float64(len(external)) / 15.0
	if coupling > 1 {
		coupling = 1
	}
	return coupling
}

func classMethods(cls *parser.Class, functions []parser.Function) []parser.Function {
	var out []parser.Function
	for _, fn := range functions {
		if fn.Class == cls.Name {
			out = append(out, fn)
		}
	}
	return out
}

func referencesOwnState(fn parser.Function, cls *parser.Class, siblings map[string]bool) bool {
	for _, prop := range cls.Properties {
		if strings.Contains(fn.Body, "this."+prop) ||
			strings.Contains(fn.Body, "self."+prop) ||
			strings.Contains(fn.Body, "."+prop) {
			return true
		}
	}
	for _, callee := range fn.Callees {
		if callee != fn.Name && siblings[callee] {
			return true
		}
	}
	return false
}
