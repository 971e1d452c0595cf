package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"codescope/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func supportedJS(path string) bool {
	return strings.HasSuffix(path, ".js") || strings.HasSuffix(path, ".ts")
}

func TestScan_FiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.js"), "x")
	writeFile(t, filepath.Join(dir, "a.js"), "x")
	writeFile(t, filepath.Join(dir, "readme.md"), "x")
	writeFile(t, filepath.Join(dir, "node_modules", "dep", "index.js"), "x")
	writeFile(t, filepath.Join(dir, ".git", "hooks", "pre-commit.js"), "x")
	writeFile(t, filepath.Join(dir, "src", "c.ts"), "x")

	s, err := New([]string{".git", "node_modules"}, nil, supportedJS)
	if err != nil {
		t.Fatal(err)
	}

	files, err := s.Scan([]string{dir})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(files) != 3 {
		t.Fatalf("Expected 3 files, got %d: %v", len(files), files)
	}
	if !sort.StringsAreSorted(files) {
		t.Errorf("Expected sorted output, got %v", files)
	}
	for _, f := range files {
		if strings.Contains(f, "node_modules") || strings.Contains(f, ".git") {
			t.Errorf("Excluded directory leaked into results: %s", f)
		}
	}
}

func TestScan_HiddenDirsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".cache", "x.js"), "x")
	writeFile(t, filepath.Join(dir, "ok.js"), "x")

	s, err := New(nil, nil, supportedJS)
	if err != nil {
		t.Fatal(err)
	}
	files, err := s.Scan([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "ok.js" {
		t.Errorf("Expected only ok.js, got %v", files)
	}
}

func TestScan_ExcludeFileGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.js"), "x")
	writeFile(t, filepath.Join(dir, "app.min.js"), "x")

	s, err := New(nil, []string{"*.min.js"}, supportedJS)
	if err != nil {
		t.Fatal(err)
	}
	files, err := s.Scan([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "app.js" {
		t.Errorf("Expected only app.js, got %v", files)
	}
}

func TestScan_InvalidRoot(t *testing.T) {
	s, err := New(nil, nil, supportedJS)
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.Scan([]string{"/does/not/exist"})
	if err == nil {
		t.Fatal("Expected error for missing root")
	}
	if !errors.IsCode(err, errors.CodeConfig) {
		t.Errorf("Expected CONFIG_ERROR, got %v", err)
	}
}

func TestScan_NoMatchesIsConfigError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "readme.md"), "x")

	s, err := New(nil, nil, supportedJS)
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.Scan([]string{dir})
	if err == nil {
		t.Fatal("Expected error when no files match")
	}
	if !errors.IsCode(err, errors.CodeConfig) {
		t.Errorf("Expected CONFIG_ERROR, got %v", err)
	}
}

func TestScan_InvalidGlob(t *testing.T) {
	if _, err := New([]string{"[unclosed"}, nil, supportedJS); err == nil {
		t.Fatal("Expected error for invalid glob pattern")
	}
}

func TestScan_Deterministic(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"z.js", "m.js", "a.js"} {
		writeFile(t, filepath.Join(dir, name), "x")
	}
	s, err := New(nil, nil, supportedJS)
	if err != nil {
		t.Fatal(err)
	}

	first, err := s.Scan([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Scan([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatal("Run lengths differ")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Ordering differs at %d: %q vs %q", i, first[i], second[i])
		}
	}
}
