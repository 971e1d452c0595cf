package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ScriptExtractor covers the ECMAScript family: javascript, typescript and
// tsx share node kinds for everything this model needs.
type ScriptExtractor struct {
	Language string
}

func (e *ScriptExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: e.Language,
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_statement":               e.extractImport,
		"export_statement":               e.extractExportClause,
		"function_declaration":           e.extractFunction,
		"generator_function_declaration": e.extractFunction,
		"lexical_declaration":            e.extractAssignedFunction,
		"variable_declaration":           e.extractAssignedFunction,
		"class_declaration":              e.extractClass,
		"abstract_class_declaration":     e.extractClass,
	})
	engine.Walk(ctx, root)

	file.Instantiations = extractInstantiations(string(source))
	return file, nil
}

func (e *ScriptExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) bool {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		return true
	}
	target := strings.Trim(ctx.Text(sourceNode), "\"'`")

	var items []string
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "import_specifier" || n.Kind() == "identifier" {
			name := ctx.ChildText(n, "identifier")
			if name == "" {
				name = ctx.Text(n)
			}
			items = append(items, name)
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "import_clause" {
			walk(child)
		}
	}

	ctx.File.Imports = append(ctx.File.Imports, Import{
		File:       ctx.File.Path,
		Target:     target,
		Items:      items,
		Line:       ctx.StartLine(node),
		IsRelative: relativeImport(target),
	})
	return true
}

// extractExportClause collects `export { a, b }` re-export names. Exported
// declarations (`export function f`, `export class C`) are flagged by the
// declaration handlers via parent inspection.
func (e *ScriptExtractor) extractExportClause(ctx *ExtractionContext, node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "export_clause" {
			continue
		}
		for j := uint(0); j < child.ChildCount(); j++ {
			spec := child.Child(j)
			if spec != nil && spec.Kind() == "export_specifier" {
				if name := ctx.ChildText(spec, "identifier"); name != "" {
					ctx.File.Exports = append(ctx.File.Exports, name)
				}
			}
		}
	}
	return false // keep walking: exported declarations live underneath
}

func (e *ScriptExtractor) extractFunction(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.Text(node.ChildByFieldName("name"))
	if name == "" {
		return false
	}

	fn := Function{
		Name:       name,
		File:       ctx.File.Path,
		StartLine:  ctx.StartLine(node),
		EndLine:    ctx.EndLine(node),
		ParamCount: countScriptParams(node.ChildByFieldName("parameters")),
		Body:       ctx.Text(node.ChildByFieldName("body")),
		Async:      hasKeywordChild(ctx, node, "async"),
		Exported:   underExport(node),
	}
	fn.LOC = fn.EndLine - fn.StartLine + 1
	fn.Callees = extractCallNames(fn.Body)
	if fn.Exported {
		ctx.File.Exports = append(ctx.File.Exports, name)
	}

	ctx.File.Functions = append(ctx.File.Functions, fn)
	return false // nested declarations are still interesting
}

// extractAssignedFunction handles `const f = (a, b) => { ... }` and
// `var f = function() { ... }` forms.
func (e *ScriptExtractor) extractAssignedFunction(ctx *ExtractionContext, node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		decl := node.Child(i)
		if decl == nil || decl.Kind() != "variable_declarator" {
			continue
		}
		value := decl.ChildByFieldName("value")
		if value == nil {
			continue
		}
		kind := value.Kind()
		if kind != "arrow_function" && kind != "function_expression" && kind != "function" {
			continue
		}

		name := ctx.Text(decl.ChildByFieldName("name"))
		if name == "" {
			continue
		}

		params := value.ChildByFieldName("parameters")
		paramCount := countScriptParams(params)
		if params == nil {
			// single-argument arrow without parentheses
			if value.ChildByFieldName("parameter") != nil {
				paramCount = 1
			}
		}

		fn := Function{
			Name:       name,
			File:       ctx.File.Path,
			StartLine:  ctx.StartLine(decl),
			EndLine:    ctx.EndLine(decl),
			ParamCount: paramCount,
			Body:       ctx.Text(value.ChildByFieldName("body")),
			Async:      hasKeywordChild(ctx, value, "async"),
			Exported:   underExport(node),
		}
		fn.LOC = fn.EndLine - fn.StartLine + 1
		fn.Callees = extractCallNames(fn.Body)
		if fn.Exported {
			ctx.File.Exports = append(ctx.File.Exports, name)
		}
		ctx.File.Functions = append(ctx.File.Functions, fn)
	}
	return false
}

func (e *ScriptExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node) bool {
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
		Abstract:  node.Kind() == "abstract_class_declaration",
		Exported:  underExport(node),
	}

	// extends / implements live under class_heritage
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "class_heritage" {
			continue
		}
		e.extractHeritage(ctx, child, &cls)
	}

	body := node.ChildByFieldName("body")
	if body != nil {
		for i := uint(0); i < body.ChildCount(); i++ {
			member := body.Child(i)
			if member == nil {
				continue
			}
			switch member.Kind() {
			case "method_definition":
				e.extractMethod(ctx, member, &cls)
			case "field_definition", "public_field_definition", "property_definition":
				if prop := ctx.Text(member.ChildByFieldName("property")); prop != "" {
					cls.Properties = append(cls.Properties, prop)
				} else if prop := ctx.ChildText(member, "property_identifier"); prop != "" {
					cls.Properties = append(cls.Properties, prop)
				}
			}
		}
	}

	if cls.Exported {
		ctx.File.Exports = append(ctx.File.Exports, name)
	}
	ctx.File.Classes = append(ctx.File.Classes, cls)
	ctx.ProcessedChildren = true
	return true
}

func (e *ScriptExtractor) extractHeritage(ctx *ExtractionContext, heritage *sitter.Node, cls *Class) {
	// javascript: class_heritage -> "extends" expression
	// typescript: class_heritage -> extends_clause / implements_clause
	for i := uint(0); i < heritage.ChildCount(); i++ {
		child := heritage.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "extends_clause":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				cls.Extends = append(cls.Extends, ctx.Text(child.NamedChild(j)))
			}
		case "implements_clause":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				cls.Implements = append(cls.Implements, ctx.Text(child.NamedChild(j)))
			}
		case "identifier", "member_expression":
			cls.Extends = append(cls.Extends, ctx.Text(child))
		}
	}
}

func (e *ScriptExtractor) extractMethod(ctx *ExtractionContext, node *sitter.Node, cls *Class) {
	name := ctx.Text(node.ChildByFieldName("name"))
	if name == "" {
		return
	}

	static := hasKeywordChild(ctx, node, "static")
	if static {
		cls.StaticMethods = append(cls.StaticMethods, name)
	} else {
		cls.Methods = append(cls.Methods, name)
	}

	fn := Function{
		Name:       name,
		File:       ctx.File.Path,
		StartLine:  ctx.StartLine(node),
		EndLine:    ctx.EndLine(node),
		ParamCount: countScriptParams(node.ChildByFieldName("parameters")),
		Body:       ctx.Text(node.ChildByFieldName("body")),
		Async:      hasKeywordChild(ctx, node, "async"),
		Static:     static,
		Class:      cls.Name,
		Exported:   cls.Exported,
	}
	fn.LOC = fn.EndLine - fn.StartLine + 1
	fn.Callees = extractCallNames(fn.Body)
	ctx.File.Functions = append(ctx.File.Functions, fn)
}

func countScriptParams(params *sitter.Node) int {
	if params == nil {
		return 0
	}
	count := 0
	for i := uint(0); i < params.NamedChildCount(); i++ {
		child := params.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "comment":
			continue
		default:
			count++
		}
	}
	return count
}

func hasKeywordChild(ctx *ExtractionContext, node *sitter.Node, keyword string) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && ctx.Text(child) == keyword {
			return true
		}
	}
	return false
}

func underExport(node *sitter.Node) bool {
	p := node.Parent()
	return p != nil && p.Kind() == "export_statement"
}
