package parser

import (
	"regexp"
	"strings"
	"unicode"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// GoExtractor maps Go declarations onto the shared model: struct types
// become Class records and methods attach to their receiver type.
type GoExtractor struct{}

func (e *GoExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: "go",
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_declaration":   e.extractImports,
		"function_declaration": e.extractFunction,
		"method_declaration":   e.extractMethod,
		"type_declaration":     e.extractType,
	})
	engine.Walk(ctx, root)

	e.attachMethods(file)
	file.Instantiations = extractGoCompositeLiterals(string(source))
	return file, nil
}

func (e *GoExtractor) extractImports(ctx *ExtractionContext, node *sitter.Node) bool {
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		for i := uint(0); i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child == nil {
				continue
			}
			if child.Kind() == "import_spec" {
				for j := uint(0); j < child.ChildCount(); j++ {
					spec := child.Child(j)
					if spec == nil {
						continue
					}
					if spec.Kind() == "interpreted_string_literal" || spec.Kind() == "raw_string_literal" {
						target := strings.Trim(ctx.Text(spec), "\"`")
						ctx.File.Imports = append(ctx.File.Imports, Import{
							File:       ctx.File.Path,
							Target:     target,
							Line:       ctx.StartLine(child),
							IsRelative: relativeImport(target),
						})
					}
				}
			} else {
				walk(child)
			}
		}
	}
	walk(node)
	return true
}

func (e *GoExtractor) extractFunction(ctx *ExtractionContext, node *sitter.Node) bool {
	e.appendCallable(ctx, node, "")
	return false
}

func (e *GoExtractor) extractMethod(ctx *ExtractionContext, node *sitter.Node) bool {
	receiver := receiverTypeName(ctx, node.ChildByFieldName("receiver"))
	e.appendCallable(ctx, node, receiver)
	return false
}

func (e *GoExtractor) appendCallable(ctx *ExtractionContext, node *sitter.Node, class string) {
	name := ctx.Text(node.ChildByFieldName("name"))
	if name == "" {
		return
	}

	exported := unicode.IsUpper(rune(name[0]))
	fn := Function{
		Name:       name,
		File:       ctx.File.Path,
		StartLine:  ctx.StartLine(node),
		EndLine:    ctx.EndLine(node),
		ParamCount: countGoParameters(node.ChildByFieldName("parameters")),
		Body:       ctx.Text(node.ChildByFieldName("body")),
		Exported:   exported,
		Class:      class,
	}
	fn.LOC = fn.EndLine - fn.StartLine + 1
	fn.Callees = extractCallNames(fn.Body)
	if exported {
		ctx.File.Exports = append(ctx.File.Exports, name)
	}
	ctx.File.Functions = append(ctx.File.Functions, fn)
}

func (e *GoExtractor) extractType(ctx *ExtractionContext, node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		spec := node.Child(i)
		if spec == nil || spec.Kind() != "type_spec" {
			continue
		}
		name := ctx.ChildText(spec, "type_identifier")
		if name == "" {
			continue
		}

		typeNode := spec.ChildByFieldName("type")
		if typeNode == nil || typeNode.Kind() != "struct_type" {
			continue
		}

		exported := unicode.IsUpper(rune(name[0]))
		cls := Class{
			Name:      name,
			File:      ctx.File.Path,
			StartLine: ctx.StartLine(spec),
			EndLine:   ctx.EndLine(spec),
			Body:      ctx.Text(spec),
			Exported:  exported,
		}

		// struct fields; embedded types count as inheritance-ish edges
		var walk func(*sitter.Node)
		walk = func(n *sitter.Node) {
			for j := uint(0); j < n.ChildCount(); j++ {
				child := n.Child(j)
				if child == nil {
					continue
				}
				if child.Kind() == "field_declaration" {
					if fieldName := ctx.ChildText(child, "field_identifier"); fieldName != "" {
						cls.Properties = append(cls.Properties, fieldName)
					} else if embedded := ctx.ChildText(child, "type_identifier"); embedded != "" {
						cls.Extends = append(cls.Extends, embedded)
					}
				} else {
					walk(child)
				}
			}
		}
		walk(typeNode)

		if exported {
			ctx.File.Exports = append(ctx.File.Exports, name)
		}
		ctx.File.Classes = append(ctx.File.Classes, cls)
	}
	return true
}

// attachMethods links method declarations to their receiver Class records
// once the whole file is walked.
func (e *GoExtractor) attachMethods(file *File) {
	index := make(map[string]*Class, len(file.Classes))
	for i := range file.Classes {
		index[file.Classes[i].Name] = &file.Classes[i]
	}
	for i := range file.Functions {
		fn := &file.Functions[i]
		if fn.Class == "" {
			continue
		}
		if cls, ok := index[fn.Class]; ok {
			cls.Methods = append(cls.Methods, fn.Name)
			if fn.EndLine > cls.EndLine {
				cls.EndLine = fn.EndLine
			}
		}
	}
}

func receiverTypeName(ctx *ExtractionContext, receiver *sitter.Node) string {
	if receiver == nil {
		return ""
	}
	text := ctx.Text(receiver)
	text = strings.Trim(text, "()")
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return ""
	}
	name := parts[len(parts)-1]
	name = strings.TrimPrefix(name, "*")
	if idx := strings.Index(name, "["); idx > 0 {
		name = name[:idx]
	}
	return name
}

func countGoParameters(params *sitter.Node) int {
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
		case "parameter_declaration", "variadic_parameter_declaration":
			// one declaration may bind several names: (a, b int)
			names := 0
			for j := uint(0); j < child.NamedChildCount(); j++ {
				if c := child.NamedChild(j); c != nil && c.Kind() == "identifier" {
					names++
				}
			}
			if names == 0 {
				names = 1 // unnamed parameter
			}
			count += names
		}
	}
	return count
}

var compositeLitRe = regexp.MustCompile(`\b([A-Z][A-Za-z0-9_]*)\{`)

func extractGoCompositeLiterals(source string) []string {
	var out []string
	for _, m := range compositeLitRe.FindAllStringSubmatch(source, -1) {
		out = append(out, m[1])
	}
	return out
}
