package parser

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"codescope/internal/errors"
)

// Parser turns raw source text into a structural model. Language grammars
// and extractors are registered per language so a different extraction
// strategy can be substituted without touching downstream stages.
type Parser struct {
	loader         *GrammarLoader
	extractors     map[string]Extractor // language -> extractor
	extensions     map[string]string    // ".ts" -> "typescript"
	testFileSuffix []string
}

type Extractor interface {
	Extract(root *sitter.Node, source []byte, filePath string) (*File, error)
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader:     loader,
		extractors: make(map[string]Extractor),
		extensions: make(map[string]string),
	}
	for lang, spec := range loader.LanguageRegistry() {
		if !spec.Enabled {
			continue
		}
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = lang
		}
		p.testFileSuffix = append(p.testFileSuffix, spec.TestFileSuffixes...)
	}
	sort.Strings(p.testFileSuffix)
	return p
}

func (p *Parser) RegisterExtractor(lang string, e Extractor) {
	p.extractors[lang] = e
}

// RegisterDefaultExtractors wires the stock extractor for every enabled
// language. Languages without a dedicated extractor fall back to the
// universal one.
func (p *Parser) RegisterDefaultExtractors() {
	for lang, spec := range p.loader.LanguageRegistry() {
		if !spec.Enabled {
			continue
		}
		switch lang {
		case "javascript":
			p.RegisterExtractor(lang, &ScriptExtractor{Language: "javascript"})
		case "typescript":
			p.RegisterExtractor(lang, &ScriptExtractor{Language: "typescript"})
		case "tsx":
			p.RegisterExtractor(lang, &ScriptExtractor{Language: "tsx"})
		case "python":
			p.RegisterExtractor(lang, &PythonExtractor{})
		case "go":
			p.RegisterExtractor(lang, &GoExtractor{})
		default:
			p.RegisterExtractor(lang, NewUniversalExtractor(lang))
		}
	}
}

func (p *Parser) ParseFile(path string, content []byte) (*File, error) {
	lang := p.DetectLanguage(path)
	if lang == "" {
		return nil, errors.New(errors.CodeNotSupported, "unsupported language")
	}

	extractor := p.extractors[lang]
	if extractor == nil {
		return nil, errors.New(errors.CodeNotSupported, fmt.Sprintf("no extractor for: %s", lang))
	}

	grammar := p.loader.Language(lang)
	if grammar == nil {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", lang))
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeParse, "parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, errors.New(errors.CodeParse, "source contains syntax errors")
	}

	file, err := extractor.Extract(root, content, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParse, "extraction failed")
	}

	file.Language = lang
	file.LineCount = countLines(content)
	file.CommentLines = countCommentLines(lang, content)
	file.ParsedAt = time.Now()
	return file, nil
}

func (p *Parser) DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := p.extensions[ext]; ok {
		return lang
	}
	return ""
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.DetectLanguage(path) != ""
}

func (p *Parser) IsTestFile(path string) bool {
	base := filepath.Base(path)
	for _, suffix := range p.testFileSuffix {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return strings.HasPrefix(base, "test_") && strings.HasSuffix(base, ".py")
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	lines := 1
	for _, b := range content {
		if b == '\n' {
			lines++
		}
	}
	return lines
}

func countCommentLines(lang string, content []byte) int {
	linePrefix := "//"
	if lang == "python" {
		linePrefix = "#"
	}

	count := 0
	inBlock := false
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if inBlock {
			count++
			if strings.Contains(trimmed, "*/") {
				inBlock = false
			}
			continue
		}
		if strings.HasPrefix(trimmed, linePrefix) {
			count++
			continue
		}
		if lang != "python" && strings.HasPrefix(trimmed, "/*") {
			count++
			if !strings.Contains(trimmed, "*/") {
				inBlock = true
			}
		}
	}
	return count
}
