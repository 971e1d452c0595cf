package parser

import (
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// UniversalExtractor serves languages without a dedicated extractor (java,
// rust, and anything enabled beyond the defaults). It classifies node
// kinds by shape instead of by grammar-specific names, so it degrades
// gracefully across grammars at the cost of some precision.
type UniversalExtractor struct {
	language string
}

func NewUniversalExtractor(language string) *UniversalExtractor {
	return &UniversalExtractor{language: language}
}

var (
	functionKindRe = regexp.MustCompile(`(?i)^(function_declaration|function_definition|function_item|method_declaration|constructor_declaration)$`)
	classKindRe    = regexp.MustCompile(`(?i)^(class_declaration|class_definition|struct_item|enum_item|interface_declaration|trait_item)$`)
	importKindRe   = regexp.MustCompile(`(?i)^(import_declaration|import_statement|use_declaration)$`)
)

func (e *UniversalExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: e.language,
	}
	if root == nil {
		return file, nil
	}

	ctx := &ExtractionContext{Source: source, File: file}
	e.walk(ctx, root, "")

	file.Instantiations = extractInstantiations(string(source))
	return file, nil
}

func (e *UniversalExtractor) walk(ctx *ExtractionContext, node *sitter.Node, class string) {
	if node == nil {
		return
	}
	kind := node.Kind()

	switch {
	case importKindRe.MatchString(kind):
		e.appendImport(ctx, node)
		return
	case functionKindRe.MatchString(kind):
		e.appendFunction(ctx, node, class)
		return
	case classKindRe.MatchString(kind):
		name := e.nodeName(ctx, node)
		if name != "" {
			cls := Class{
				Name:      name,
				File:      ctx.File.Path,
				StartLine: ctx.StartLine(node),
				EndLine:   ctx.EndLine(node),
				Body:      ctx.Text(node),
				Exported:  true, // visibility is grammar-specific; assume public
			}
			e.collectMembers(ctx, node, &cls)
			ctx.File.Classes = append(ctx.File.Classes, cls)
			ctx.File.Exports = append(ctx.File.Exports, name)
		}
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		e.walk(ctx, node.Child(i), class)
	}
}

func (e *UniversalExtractor) collectMembers(ctx *ExtractionContext, node *sitter.Node, cls *Class) {
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		for i := uint(0); i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child == nil {
				continue
			}
			kind := child.Kind()
			switch {
			case functionKindRe.MatchString(kind):
				e.appendFunction(ctx, child, cls.Name)
				if len(ctx.File.Functions) > 0 {
					cls.Methods = append(cls.Methods, ctx.File.Functions[len(ctx.File.Functions)-1].Name)
				}
			case kind == "field_declaration" || kind == "property_declaration":
				if name := e.nodeName(ctx, child); name != "" {
					cls.Properties = append(cls.Properties, name)
				}
			default:
				walk(child)
			}
		}
	}
	walk(node)
}

func (e *UniversalExtractor) appendFunction(ctx *ExtractionContext, node *sitter.Node, class string) {
	name := e.nodeName(ctx, node)
	if name == "" {
		return
	}

	body := ctx.Text(node.ChildByFieldName("body"))
	if body == "" {
		// fall back to balanced-brace extraction over the node text
		text := ctx.Text(node)
		if idx := strings.IndexByte(text, '{'); idx >= 0 {
			body = ExtractBraceBody(text, idx)
		}
	}

	fn := Function{
		Name:       name,
		File:       ctx.File.Path,
		StartLine:  ctx.StartLine(node),
		EndLine:    ctx.EndLine(node),
		ParamCount: e.countParams(node),
		Body:       body,
		Class:      class,
		Exported:   true,
	}
	fn.LOC = fn.EndLine - fn.StartLine + 1
	fn.Callees = extractCallNames(fn.Body)
	ctx.File.Functions = append(ctx.File.Functions, fn)
}

func (e *UniversalExtractor) countParams(node *sitter.Node) int {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return 0
	}
	count := 0
	for i := uint(0); i < params.NamedChildCount(); i++ {
		child := params.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		if child.Kind() == "self" || child.Kind() == "self_parameter" {
			continue
		}
		count++
	}
	return count
}

func (e *UniversalExtractor) appendImport(ctx *ExtractionContext, node *sitter.Node) {
	text := ctx.Text(node)
	target := strings.TrimSpace(text)
	target = strings.TrimPrefix(target, "import")
	target = strings.TrimPrefix(target, "use")
	target = strings.Trim(strings.TrimSuffix(strings.TrimSpace(target), ";"), "\"'")
	if target == "" {
		return
	}
	ctx.File.Imports = append(ctx.File.Imports, Import{
		File:       ctx.File.Path,
		Target:     target,
		Line:       ctx.StartLine(node),
		IsRelative: relativeImport(target),
	})
}

func (e *UniversalExtractor) nodeName(ctx *ExtractionContext, node *sitter.Node) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return ctx.Text(name)
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier", "type_identifier", "field_identifier":
			return ctx.Text(child)
		}
	}
	return ""
}
