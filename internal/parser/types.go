package parser

import (
	"time"
)

// SourceFile is the raw input handed from the scanner to the parser.
type SourceFile struct {
	Path     string
	Language string
	Content  []byte
}

// File is the structural model extracted from one source file. It is the
// unit flowing through the metrics engine and the pattern rules.
type File struct {
	Path           string
	Language       string
	LineCount      int
	CommentLines   int
	Functions      []Function
	Classes        []Class
	Imports        []Import
	Exports        []string
	Instantiations []string // class names seen in new/constructor expressions
	ParsedAt       time.Time
}

// Function covers named functions, methods and arrow/lambda-style
// assignments. Complexity, NestingDepth and CallCount are populated by
// later passes; identity is (File, Name, StartLine).
type Function struct {
	Name       string
	File       string
	StartLine  int
	EndLine    int
	ParamCount int
	Body       string
	LOC        int
	Complexity int
	Nesting    int
	CallCount  int
	Callees    []string
	Exported   bool
	Async      bool
	Static     bool
	Class      string // owning class for methods, empty otherwise
}

type Class struct {
	Name          string
	File          string
	StartLine     int
	EndLine       int
	Methods       []string
	StaticMethods []string
	Properties    []string
	Extends       []string
	Implements    []string
	Body          string
	Abstract      bool
	Exported      bool

	// Populated by later passes.
	UsageCount int
	Cohesion   float64
	Coupling   float64
}

func (c *Class) MethodCount() int   { return len(c.Methods) + len(c.StaticMethods) }
func (c *Class) PropertyCount() int { return len(c.Properties) }

type Import struct {
	File       string
	Target     string   // raw import path as written
	Items      []string // imported names, empty for bare/namespace imports
	Line       int
	IsRelative bool
}

// ParseFailure records a file excluded from structural analysis. The run
// continues; failures surface in the report's analysis-issues section.
type ParseFailure struct {
	Path   string
	Reason string
}
