package parser

import (
	"strings"
	"testing"

	"codescope/internal/errors"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	loader, err := NewGrammarLoader(nil)
	if err != nil {
		t.Fatalf("loader failed: %v", err)
	}
	p := NewParser(loader)
	p.RegisterDefaultExtractors()
	return p
}

func TestParseFile_JavaScriptFunctions(t *testing.T) {
	src := `
import { helper, other } from './util';
import fs from 'fs';

export function fetchUsers(db, limit) {
    if (limit > 0) {
        return db.query(limit);
    }
    return [];
}

const format = (value) => {
    return String(value);
};
`
	p := newTestParser(t)
	file, err := p.ParseFile("src/users.js", []byte(src))
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}

	if len(file.Functions) != 2 {
		t.Fatalf("Expected 2 functions, got %d", len(file.Functions))
	}

	fetch := file.Functions[0]
	if fetch.Name != "fetchUsers" {
		t.Errorf("Expected fetchUsers, got %q", fetch.Name)
	}
	if fetch.ParamCount != 2 {
		t.Errorf("Expected 2 params, got %d", fetch.ParamCount)
	}
	if !fetch.Exported {
		t.Error("Expected fetchUsers to be exported")
	}

	arrow := file.Functions[1]
	if arrow.Name != "format" {
		t.Errorf("Expected arrow function format, got %q", arrow.Name)
	}
	if arrow.ParamCount != 1 {
		t.Errorf("Expected 1 param, got %d", arrow.ParamCount)
	}

	if len(file.Imports) != 2 {
		t.Fatalf("Expected 2 imports, got %d", len(file.Imports))
	}
	if !file.Imports[0].IsRelative {
		t.Error("Expected ./util to be relative")
	}
	if file.Imports[1].IsRelative {
		t.Error("Expected fs to be external")
	}
	if len(file.Imports[0].Items) != 2 {
		t.Errorf("Expected 2 imported items, got %v", file.Imports[0].Items)
	}
}

func TestParseFile_SyntaxErrorsFail(t *testing.T) {
	p := newTestParser(t)
	src := "function broken( { if (x { return ]]\n"
	_, err := p.ParseFile("src/broken.js", []byte(src))
	if err == nil {
		t.Fatal("Expected an error for malformed source")
	}
	if !errors.IsCode(err, errors.CodeParse) {
		t.Errorf("Expected PARSE_ERROR, got %v", err)
	}
}

func TestParseFile_TypeScriptClass(t *testing.T) {
	src := `
export class ConnectionPool extends BasePool implements Closeable {
    private static instance: ConnectionPool;
    private size: number;

    private constructor() {
        this.size = 10;
    }

    static getInstance(): ConnectionPool {
        if (!ConnectionPool.instance) {
            ConnectionPool.instance = new ConnectionPool();
        }
        return ConnectionPool.instance;
    }

    acquire(): Connection {
        return this.next();
    }
}
`
	p := newTestParser(t)
	file, err := p.ParseFile("src/pool.ts", []byte(src))
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}

	if len(file.Classes) != 1 {
		t.Fatalf("Expected 1 class, got %d", len(file.Classes))
	}
	cls := file.Classes[0]
	if cls.Name != "ConnectionPool" {
		t.Errorf("Expected ConnectionPool, got %q", cls.Name)
	}
	if len(cls.Extends) != 1 || cls.Extends[0] != "BasePool" {
		t.Errorf("Expected extends BasePool, got %v", cls.Extends)
	}
	if len(cls.Implements) != 1 || cls.Implements[0] != "Closeable" {
		t.Errorf("Expected implements Closeable, got %v", cls.Implements)
	}
	if len(cls.StaticMethods) != 1 || cls.StaticMethods[0] != "getInstance" {
		t.Errorf("Expected static getInstance, got %v", cls.StaticMethods)
	}
	// constructor + acquire
	if len(cls.Methods) != 2 {
		t.Errorf("Expected 2 instance methods, got %v", cls.Methods)
	}
	if cls.PropertyCount() != 2 {
		t.Errorf("Expected 2 properties, got %v", cls.Properties)
	}

	// methods become Function records bound to the class
	methodCount := 0
	for _, fn := range file.Functions {
		if fn.Class == "ConnectionPool" {
			methodCount++
		}
	}
	if methodCount != 3 {
		t.Errorf("Expected 3 method records, got %d", methodCount)
	}
}

func TestParseFile_Python(t *testing.T) {
	src := `
import os
from collections import defaultdict, Counter

class EventBus:
    def __init__(self):
        self.listeners = []

    def subscribe(self, listener):
        self.listeners.append(listener)

    def notify(self, event):
        for l in self.listeners:
            l.handle(event)

def main():
    bus = EventBus()
    bus.notify("start")
`
	p := newTestParser(t)
	file, err := p.ParseFile("app/bus.py", []byte(src))
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}

	if len(file.Classes) != 1 {
		t.Fatalf("Expected 1 class, got %d", len(file.Classes))
	}
	cls := file.Classes[0]
	if len(cls.Methods) != 3 {
		t.Errorf("Expected 3 methods, got %v", cls.Methods)
	}
	if cls.PropertyCount() != 1 || cls.Properties[0] != "listeners" {
		t.Errorf("Expected listeners property, got %v", cls.Properties)
	}

	var subscribe *Function
	for i := range file.Functions {
		if file.Functions[i].Name == "subscribe" {
			subscribe = &file.Functions[i]
		}
	}
	if subscribe == nil {
		t.Fatal("Expected subscribe method record")
	}
	// self is not a caller-facing parameter
	if subscribe.ParamCount != 1 {
		t.Errorf("Expected 1 param for subscribe, got %d", subscribe.ParamCount)
	}

	if len(file.Imports) != 2 {
		t.Fatalf("Expected 2 imports, got %d", len(file.Imports))
	}

	found := false
	for _, inst := range file.Instantiations {
		if inst == "EventBus" {
			found = true
		}
	}
	if !found {
		t.Error("Expected EventBus instantiation to be recorded")
	}
}

func TestParseFile_Go(t *testing.T) {
	src := `package store

import (
	"fmt"
	"strings"
)

type Cache struct {
	entries map[string]string
	limit   int
}

func NewCache(limit int) *Cache {
	return &Cache{entries: make(map[string]string), limit: limit}
}

func (c *Cache) Get(key string) (string, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *Cache) describe() string {
	return fmt.Sprintf("%d/%d", len(c.entries), c.limit)
}
`
	p := newTestParser(t)
	file, err := p.ParseFile("store/cache.go", []byte(src))
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}

	if len(file.Classes) != 1 {
		t.Fatalf("Expected 1 struct record, got %d", len(file.Classes))
	}
	cls := file.Classes[0]
	if cls.Name != "Cache" {
		t.Errorf("Expected Cache, got %q", cls.Name)
	}
	if len(cls.Methods) != 2 {
		t.Errorf("Expected 2 methods on Cache, got %v", cls.Methods)
	}
	if cls.PropertyCount() != 2 {
		t.Errorf("Expected 2 fields, got %v", cls.Properties)
	}

	var get *Function
	for i := range file.Functions {
		if file.Functions[i].Name == "Get" {
			get = &file.Functions[i]
		}
	}
	if get == nil {
		t.Fatal("Expected Get method record")
	}
	if get.Class != "Cache" {
		t.Errorf("Expected receiver Cache, got %q", get.Class)
	}
	if !get.Exported {
		t.Error("Expected Get to be exported")
	}

	if len(file.Imports) != 2 {
		t.Errorf("Expected 2 imports, got %d", len(file.Imports))
	}
}

func TestParseFile_UnsupportedLanguage(t *testing.T) {
	p := newTestParser(t)
	_, err := p.ParseFile("README.md", []byte("# hello"))
	if err == nil {
		t.Fatal("Expected error for unsupported language")
	}
	if !errors.IsCode(err, errors.CodeNotSupported) {
		t.Errorf("Expected NOT_SUPPORTED, got %v", err)
	}
}

func TestExtractBraceBody_Nested(t *testing.T) {
	src := `function f() { if (a) { while (b) { x(); } } return 1; } trailing`
	idx := 13 // opening brace of the function body
	if src[idx] != '{' {
		t.Fatalf("bad index fixture: %q", string(src[idx]))
	}
	body := ExtractBraceBody(src, idx)
	if body == "" {
		t.Fatal("Expected body")
	}
	if body[len(body)-1] != '}' {
		t.Errorf("Expected body to end at closing brace, got %q", body)
	}
	// must not stop at the first closing brace
	if !strings.Contains(body, "return 1;") {
		t.Errorf("Body terminated early: %q", body)
	}
	if strings.Contains(body, "trailing") {
		t.Errorf("Body overran: %q", body)
	}
}

func TestExtractBraceBody_BracesInStrings(t *testing.T) {
	src := `{ const s = "}"; done(); }`
	body := ExtractBraceBody(src, 0)
	if !strings.Contains(body, "done()") {
		t.Errorf("String literal brace terminated the scan: %q", body)
	}
}

func TestExtractBraceBody_Unclosed(t *testing.T) {
	if got := ExtractBraceBody("{ never closed", 0); got != "" {
		t.Errorf("Expected empty result for unclosed block, got %q", got)
	}
}

func TestIsTestFile(t *testing.T) {
	p := newTestParser(t)
	if !p.IsTestFile("pkg/cache_test.go") {
		t.Error("Expected _test.go to be a test file")
	}
	if !p.IsTestFile("tests/test_parser.py") {
		t.Error("Expected test_*.py to be a test file")
	}
	if p.IsTestFile("pkg/cache.go") {
		t.Error("Did not expect cache.go to be a test file")
	}
}

func TestCountCommentLines(t *testing.T) {
	js := []byte("// a\ncode();\n/* block\nstill block */\ncode();\n")
	if got := countCommentLines("javascript", js); got != 3 {
		t.Errorf("Expected 3 comment lines, got %d", got)
	}
	py := []byte("# one\nx = 1\n# two\n")
	if got := countCommentLines("python", py); got != 2 {
		t.Errorf("Expected 2 comment lines, got %d", got)
	}
}
