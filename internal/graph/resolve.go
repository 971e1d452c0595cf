package graph

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"codescope/internal/parser"
)

// resolver maps raw import targets onto canonical scanned paths.
// Comparison happens on slash-normalized paths; the returned value is
// always the original key from the file set.
type resolver struct {
	by                map[string]string   // slashed path -> canonical path
	filesInDir        map[string][]string // slashed dir -> sorted slashed files
	sortedSlashedKeys []string
}

var scriptExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

func newResolver(files map[string]*parser.File) *resolver {
	r := &resolver{
		by:         make(map[string]string, len(files)),
		filesInDir: make(map[string][]string, len(files)),
	}
	for p := range files {
		slashed := filepath.ToSlash(p)
		r.by[slashed] = p
		dir := path.Dir(slashed)
		r.filesInDir[dir] = append(r.filesInDir[dir], slashed)
		r.sortedSlashedKeys = append(r.sortedSlashedKeys, slashed)
	}
	for dir := range r.filesInDir {
		sort.Strings(r.filesInDir[dir])
	}
	sort.Strings(r.sortedSlashedKeys)
	return r
}

func (r *resolver) resolve(file *parser.File, imp *parser.Import) (string, bool) {
	switch file.Language {
	case "python":
		return r.resolvePython(file, imp)
	case "go":
		return r.resolveGo(imp.Target)
	default:
		return r.resolveScript(file, imp)
	}
}

// resolveScript handles the JS/TS family: relative specifiers resolve
// against the importing file's directory, trying the source extensions
// and index files; bare specifiers are package imports and stay external.
func (r *resolver) resolveScript(file *parser.File, imp *parser.Import) (string, bool) {
	if !imp.IsRelative {
		return "", false
	}

	base := path.Dir(filepath.ToSlash(file.Path))
	joined := path.Clean(path.Join(base, imp.Target))

	candidates := []string{joined}
	for _, ext := range scriptExtensions {
		candidates = append(candidates, joined+ext)
	}
	for _, ext := range scriptExtensions {
		candidates = append(candidates, path.Join(joined, "index"+ext))
	}

	for _, c := range candidates {
		if canonical, ok := r.by[c]; ok {
			return canonical, true
		}
	}
	return "", false
}

// resolvePython handles both relative imports (`from .models import X`,
// leading dots climb directories) and absolute dotted module paths,
// which match on path suffix against the scan set.
func (r *resolver) resolvePython(file *parser.File, imp *parser.Import) (string, bool) {
	target := imp.Target
	if imp.IsRelative || strings.HasPrefix(target, ".") {
		dots := 0
		for dots < len(target) && target[dots] == '.' {
			dots++
		}
		base := path.Dir(filepath.ToSlash(file.Path))
		for i := 1; i < dots; i++ {
			base = path.Dir(base)
		}
		rest := strings.ReplaceAll(target[dots:], ".", "/")
		joined := base
		if rest != "" {
			joined = path.Join(base, rest)
		}
		for _, c := range []string{joined + ".py", path.Join(joined, "__init__.py")} {
			if canonical, ok := r.by[c]; ok {
				return canonical, true
			}
		}
		return "", false
	}

	rel := strings.ReplaceAll(target, ".", "/")
	for _, suffix := range []string{rel + ".py", rel + "/__init__.py"} {
		if canonical, ok := r.bySuffix(suffix); ok {
			return canonical, true
		}
	}
	return "", false
}

// resolveGo matches the import path against scanned directories by
// suffix and picks the package's lexically first file, so repeated runs
// produce the same edge target.
func (r *resolver) resolveGo(target string) (string, bool) {
	var dirs []string
	for dir := range r.filesInDir {
		if dir == target || strings.HasSuffix(dir, "/"+target) {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return "", false
	}
	sort.Strings(dirs)
	for _, f := range r.filesInDir[dirs[0]] {
		if strings.HasSuffix(f, ".go") {
			return r.by[f], true
		}
	}
	return "", false
}

func (r *resolver) bySuffix(suffix string) (string, bool) {
	for _, slashed := range r.sortedSlashedKeys {
		if slashed == suffix || strings.HasSuffix(slashed, "/"+suffix) {
			return r.by[slashed], true
		}
	}
	return "", false
}
