package analysis

import (
	"regexp"
	"sort"
	"strings"
)

// Duplicate clustering compares normalized function bodies: comments
// stripped, literals and identifiers replaced by placeholders, blank
// lines dropped. Two bodies with the same normalized form are
// structural clones even when every name differs.

var (
	lineCommentRe  = regexp.MustCompile(`(//|#).*`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	stringLitRe    = regexp.MustCompile(`"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'|` + "`[^`]*`")
	numberLitRe    = regexp.MustCompile(`\b\d+(\.\d+)?\b`)
	identifierRe   = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*\b`)
)

var structuralKeywords = map[string]bool{
	"if": true, "else": true, "elif": true, "for": true, "while": true,
	"switch": true, "case": true, "break": true, "continue": true,
	"return": true, "try": true, "catch": true, "except": true,
	"finally": true, "throw": true, "raise": true, "new": true,
	"function": true, "def": true, "class": true, "const": true,
	"let": true, "var": true, "in": true, "of": true, "range": true,
	"and": true, "or": true, "not": true, "nil": true, "null": true,
	"none": true, "true": true, "false": true, "await": true,
	"async": true, "yield": true, "go": true, "defer": true,
	"func": true, "type": true, "struct": true, "map": true,
}

// normalizeBody produces the structural signature of a function body.
// The second return value is the number of surviving lines.
func normalizeBody(body string) (string, int) {
	s := blockCommentRe.ReplaceAllString(body, "")
	s = lineCommentRe.ReplaceAllString(s, "")
	s = stringLitRe.ReplaceAllString(s, `"s"`)
	s = numberLitRe.ReplaceAllString(s, "0")
	s = identifierRe.ReplaceAllStringFunc(s, func(word string) string {
		if structuralKeywords[strings.ToLower(word)] {
			return strings.ToLower(word)
		}
		return "$"
	})

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), len(lines)
}

func (a *Aggregator) findDuplicates(results []*FileResult) []Duplicate {
	type entry struct {
		loc   DuplicateLocation
		lines int
	}
	clusters := make(map[string][]entry)

	for _, res := range results {
		for i := range res.File.Functions {
			fn := &res.File.Functions[i]
			normalized, lines := normalizeBody(fn.Body)
			if lines < a.thresholds.DuplicateMinLine {
				continue
			}
			clusters[normalized] = append(clusters[normalized], entry{
				loc: DuplicateLocation{
					File:      fn.File,
					Function:  fn.Name,
					StartLine: fn.StartLine,
				},
				lines: lines,
			})
		}
	}

	duplicates := []Duplicate{}
	for normalized, entries := range clusters {
		if len(entries) < 2 {
			continue
		}
		locations := make([]DuplicateLocation, 0, len(entries))
		for _, e := range entries {
			locations = append(locations, e.loc)
		}
		sort.Slice(locations, func(i, j int) bool {
			if locations[i].File != locations[j].File {
				return locations[i].File < locations[j].File
			}
			return locations[i].StartLine < locations[j].StartLine
		})
		duplicates = append(duplicates, Duplicate{
			Pattern:   excerpt(normalized),
			Lines:     entries[0].lines,
			Locations: locations,
			Severity:  duplicateSeverity(len(entries), entries[0].lines),
		})
	}

	sort.Slice(duplicates, func(i, j int) bool {
		if duplicates[i].Locations[0].File != duplicates[j].Locations[0].File {
			return duplicates[i].Locations[0].File < duplicates[j].Locations[0].File
		}
		return duplicates[i].Locations[0].StartLine < duplicates[j].Locations[0].StartLine
	})
	return duplicates
}

// duplicateSeverity grades a cluster by spread and size: three or more
// copies, or a long body, is worth more attention than a short pair.
func duplicateSeverity(copies, lines int) string {
	if copies > 2 || lines > 25 {
		return "critical"
	}
	return "warning"
}

func excerpt(normalized string) string {
	const maxLines = 3
	lines := strings.Split(normalized, "\n")
	if len(lines) <= maxLines {
		return normalized
	}
	return strings.Join(lines[:maxLines], "\n") + "\n..."
}
