package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codescope/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codescope.toml")
	content := `
roots = ["./src"]

[thresholds]
long_method_lines = 40
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Roots[0] != "./src" {
		t.Errorf("Expected root ./src, got %q", cfg.Roots[0])
	}
	if cfg.Thresholds.LongMethodLines != 40 {
		t.Errorf("Expected override 40, got %d", cfg.Thresholds.LongMethodLines)
	}
	if cfg.Thresholds.LongParamCount != 6 {
		t.Errorf("Expected default 6, got %d", cfg.Thresholds.LongParamCount)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected default debounce, got %v", cfg.Watch.Debounce)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/codescope.toml")
	if err == nil {
		t.Fatal("Expected error for missing config")
	}
	if !errors.IsCode(err, errors.CodeConfig) {
		t.Errorf("Expected CONFIG_ERROR, got %v", err)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("roots = [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for malformed TOML")
	}
}

func TestDefault_ExcludesVCSAndCaches(t *testing.T) {
	cfg := Default()

	want := map[string]bool{".git": false, "node_modules": false, "__pycache__": false}
	for _, d := range cfg.Exclude.Dirs {
		if _, ok := want[d]; ok {
			want[d] = true
		}
	}
	for dir, found := range want {
		if !found {
			t.Errorf("Expected %q in default excludes", dir)
		}
	}
}

func TestRuleEnabled(t *testing.T) {
	cfg := Default()
	cfg.Rules.Disabled = []string{"n-plus-one-query"}

	if cfg.RuleEnabled("n-plus-one-query") {
		t.Error("Expected rule to be disabled")
	}
	if !cfg.RuleEnabled("singleton") {
		t.Error("Expected rule to be enabled")
	}
}
