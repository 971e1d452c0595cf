package parser

import (
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type PythonExtractor struct{}

var selfAttrRe = regexp.MustCompile(`self\.([A-Za-z_][A-Za-z0-9_]*)\s*=`)

func (e *PythonExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: "python",
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_statement":      e.extractImport,
		"import_from_statement": e.extractFromImport,
		"function_definition":   e.extractFunction,
		"class_definition":      e.extractClass,
	})
	engine.Walk(ctx, root)

	// Python instantiates without `new`; count Capitalized calls instead.
	for _, m := range callRe.FindAllStringSubmatch(string(source), -1) {
		if isUpperCamel(m[1]) && !callKeywords[m[1]] {
			file.Instantiations = append(file.Instantiations, m[1])
		}
	}
	return file, nil
}

func (e *PythonExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) bool {
	line := ctx.StartLine(node)
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			target := ctx.Text(child)
			ctx.File.Imports = append(ctx.File.Imports, Import{
				File:       ctx.File.Path,
				Target:     target,
				Line:       line,
				IsRelative: relativeImport(target),
			})
		case "aliased_import":
			if name := ctx.ChildText(child, "dotted_name"); name != "" {
				ctx.File.Imports = append(ctx.File.Imports, Import{
					File:       ctx.File.Path,
					Target:     name,
					Line:       line,
					IsRelative: relativeImport(name),
				})
			}
		}
	}
	return true
}

func (e *PythonExtractor) extractFromImport(ctx *ExtractionContext, node *sitter.Node) bool {
	line := ctx.StartLine(node)
	var target string
	var items []string

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			if target == "" {
				target = ctx.Text(child)
			} else {
				items = append(items, ctx.Text(child))
			}
		case "relative_import":
			if target == "" {
				target = ctx.Text(child)
			}
		case "aliased_import":
			if name := ctx.ChildText(child, "dotted_name"); name != "" {
				items = append(items, name)
			}
		case "wildcard_import":
			items = append(items, "*")
		}
	}

	if target == "" {
		return true
	}
	ctx.File.Imports = append(ctx.File.Imports, Import{
		File:       ctx.File.Path,
		Target:     target,
		Items:      items,
		Line:       line,
		IsRelative: relativeImport(target),
	})
	return true
}

func (e *PythonExtractor) extractFunction(ctx *ExtractionContext, node *sitter.Node) bool {
	fn, ok := e.buildFunction(ctx, node, "")
	if !ok {
		return false
	}
	if fn.Exported {
		ctx.File.Exports = append(ctx.File.Exports, fn.Name)
	}
	ctx.File.Functions = append(ctx.File.Functions, fn)
	return false
}

func (e *PythonExtractor) buildFunction(ctx *ExtractionContext, node *sitter.Node, class string) (Function, bool) {
	name := ctx.Text(node.ChildByFieldName("name"))
	if name == "" {
		return Function{}, false
	}

	fn := Function{
		Name:       name,
		File:       ctx.File.Path,
		StartLine:  ctx.StartLine(node),
		EndLine:    ctx.EndLine(node),
		ParamCount: e.countParams(ctx, node.ChildByFieldName("parameters"), class != ""),
		Body:       ctx.Text(node.ChildByFieldName("body")),
		Async:      hasKeywordChild(ctx, node, "async"),
		Class:      class,
		Exported:   !strings.HasPrefix(name, "_"),
	}
	fn.LOC = fn.EndLine - fn.StartLine + 1
	fn.Callees = extractCallNames(fn.Body)
	return fn, true
}

func (e *PythonExtractor) countParams(ctx *ExtractionContext, params *sitter.Node, isMethod bool) int {
	if params == nil {
		return 0
	}
	count := 0
	for i := uint(0); i < params.NamedChildCount(); i++ {
		child := params.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		count++
	}
	// self/cls is not a caller-facing parameter
	if isMethod && count > 0 {
		count--
	}
	return count
}

func (e *PythonExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.Text(node.ChildByFieldName("name"))
	if name == "" {
		return false
	}

	cls := Class{
		Name:      name,
		File:      ctx.File.Path,
		StartLine: ctx.StartLine(node),
		EndLine:   ctx.EndLine(node),
		Body:      ctx.Text(node),
		Exported:  !strings.HasPrefix(name, "_"),
	}

	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := uint(0); i < supers.NamedChildCount(); i++ {
			base := ctx.Text(supers.NamedChild(i))
			if base == "" {
				continue
			}
			if base == "ABC" || strings.Contains(base, "ABCMeta") {
				cls.Abstract = true
			}
			cls.Extends = append(cls.Extends, base)
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		e.extractClassBody(ctx, body, &cls)
	}

	for _, m := range selfAttrRe.FindAllStringSubmatch(cls.Body, -1) {
		found := false
		for _, p := range cls.Properties {
			if p == m[1] {
				found = true
				break
			}
		}
		if !found {
			cls.Properties = append(cls.Properties, m[1])
		}
	}

	if cls.Exported {
		ctx.File.Exports = append(ctx.File.Exports, name)
	}
	ctx.File.Classes = append(ctx.File.Classes, cls)
	ctx.ProcessedChildren = true
	return true
}

func (e *PythonExtractor) extractClassBody(ctx *ExtractionContext, body *sitter.Node, cls *Class) {
	for i := uint(0); i < body.ChildCount(); i++ {
		member := body.Child(i)
		if member == nil {
			continue
		}
		target := member
		if member.Kind() == "decorated_definition" {
			if def := member.ChildByFieldName("definition"); def != nil {
				target = def
			}
		}
		if target.Kind() != "function_definition" {
			continue
		}

		fn, ok := e.buildFunction(ctx, target, cls.Name)
		if !ok {
			continue
		}
		if member.Kind() == "decorated_definition" &&
			strings.Contains(ctx.Text(member), "@staticmethod") {
			fn.Static = true
			cls.StaticMethods = append(cls.StaticMethods, fn.Name)
		} else {
			cls.Methods = append(cls.Methods, fn.Name)
		}
		ctx.File.Functions = append(ctx.File.Functions, fn)
	}
}
