package parser

import (
	"regexp"
	"strings"
)

var callRe = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

// Keywords that look like calls in body text but are control flow or
// built-in syntax. Shared across the C-family languages we extract.
var callKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"return": true, "function": true, "super": true, "constructor": true,
	"typeof": true, "new": true, "do": true, "with": true, "await": true,
	"def": true, "elif": true, "except": true, "lambda": true, "print": true,
	"func": true, "go": true, "defer": true, "select": true, "range": true,
	"case": true, "not": true, "and": true, "or": true, "assert": true,
}

// extractCallNames pulls callee names out of a function body. A heuristic
// token scan is enough here: the aggregator only needs names to count
// cross-file references, not resolved symbols.
func extractCallNames(body string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range callRe.FindAllStringSubmatch(body, -1) {
		name := m[1]
		if callKeywords[name] || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

var newExprRe = regexp.MustCompile(`\bnew\s+([A-Za-z_][A-Za-z0-9_]*)`)

// extractInstantiations finds constructor uses in raw source, used to
// compute per-class usage counts across the project.
func extractInstantiations(source string) []string {
	var out []string
	for _, m := range newExprRe.FindAllStringSubmatch(source, -1) {
		out = append(out, m[1])
	}
	return out
}

// isUpperCamel reports whether a name follows class-style naming.
func isUpperCamel(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	return c >= 'A' && c <= 'Z'
}

// relativeImport reports whether an import target points inside the
// scanned tree rather than at an external package.
func relativeImport(target string) bool {
	return strings.HasPrefix(target, "./") || strings.HasPrefix(target, "../") ||
		strings.HasPrefix(target, ".")
}
