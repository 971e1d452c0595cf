package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"codescope/internal/config"
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

func testProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.js"), `
import { b } from './b';

export function runA(x) {
    if (x > 0) {
        return b(x);
    }
    return 0;
}
`)
	writeFile(t, filepath.Join(dir, "b.js"), `
import { runA } from './a';

export function b(x) {
    return runA(x - 1);
}
`)
	writeFile(t, filepath.Join(dir, "util.py"), `
def helper(value):
    return value * 2

def _lonely():
    return 1
`)
	writeFile(t, filepath.Join(dir, "README.md"), "# ignored")
	writeFile(t, filepath.Join(dir, "node_modules", "dep", "x.js"), "module.exports = 1;")
	return dir
}

func testApp(t *testing.T, dir string) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Roots = []string{dir}
	cfg.Workers = 2

	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func TestApp_RunEndToEnd(t *testing.T) {
	dir := testProject(t)
	app := testApp(t, dir)

	summary, err := app.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Totals.Files != 3 {
		t.Errorf("Expected 3 analyzed files, got %d", summary.Totals.Files)
	}

	if len(summary.Cycles) != 1 {
		t.Fatalf("Expected the a<->b cycle, got %v", summary.Cycles)
	}
	if c := summary.Cycles[0]; len(c) < 3 || c[0] != c[len(c)-1] {
		t.Errorf("Expected the cycle path to close on its origin, got %v", c)
	}

	foundLonely := false
	for _, u := range summary.Unused {
		if u.Item == "_lonely" {
			foundLonely = true
		}
	}
	if !foundLonely {
		t.Errorf("Expected _lonely to be reported unused, got %+v", summary.Unused)
	}

	for bucket := range summary.Complexity {
		switch bucket {
		case "1-5", "6-10", "11-20", "21-50", "50+":
		default:
			t.Errorf("Unexpected complexity bucket %q", bucket)
		}
	}
}

func TestApp_RunMalformedFileBecomesIssue(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good1.js"), "export function a() { return 1; }\n")
	writeFile(t, filepath.Join(dir, "good2.js"), "export function b() { return 2; }\n")
	writeFile(t, filepath.Join(dir, "broken.js"), "function broken( { if (x { return ]]\n")
	app := testApp(t, dir)

	summary, err := app.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Totals.Files != 2 {
		t.Errorf("Expected the 2 good files analyzed, got %d", summary.Totals.Files)
	}
	if len(summary.Issues) != 1 {
		t.Fatalf("Expected 1 issue for the broken file, got %+v", summary.Issues)
	}
	issue := summary.Issues[0]
	if filepath.Base(issue.Path) != "broken.js" || issue.Stage != "parse" {
		t.Errorf("Expected a parse issue for broken.js, got %+v", issue)
	}
}

func TestApp_RunEmptyRootIsTerminal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "readme.md"), "# nothing to analyze")
	app := testApp(t, dir)

	if _, err := app.Run(context.Background()); err == nil {
		t.Fatal("Expected terminal error when no files match")
	}
}

func TestApp_RunCancelledContextSchedulesNothing(t *testing.T) {
	dir := testProject(t)
	app := testApp(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := app.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Totals.Files != 0 {
		t.Errorf("Expected no files scheduled after cancellation, got %d", summary.Totals.Files)
	}
}

func TestApp_RunInvalidRoot(t *testing.T) {
	cfg := config.Default()
	cfg.Roots = []string{filepath.Join(t.TempDir(), "missing")}

	app, err := NewApp(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if _, err := app.Run(context.Background()); err == nil {
		t.Fatal("Expected terminal error for missing root")
	}
}

func TestApp_HandleChanges_RemovesDeletedFiles(t *testing.T) {
	dir := testProject(t)
	app := testApp(t, dir)

	if _, err := app.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	deleted := filepath.Join(dir, "b.js")
	if err := os.Remove(deleted); err != nil {
		t.Fatal(err)
	}
	app.HandleChanges([]string{deleted})

	summary := app.aggregate()
	if summary.Totals.Files != 2 {
		t.Errorf("Expected 2 files after delete, got %d", summary.Totals.Files)
	}
	if len(summary.Cycles) != 0 {
		t.Errorf("Expected cycle to disappear with b.js, got %v", summary.Cycles)
	}
}

func TestApp_WriteOutputs(t *testing.T) {
	dir := testProject(t)
	app := testApp(t, dir)
	app.Config.Output.JSON = filepath.Join(dir, "out", "summary.json")
	app.Config.Output.DOT = filepath.Join(dir, "out", "deps.dot")

	summary, err := app.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := app.WriteOutputs(summary); err != nil {
		t.Fatalf("WriteOutputs failed: %v", err)
	}

	for _, p := range []string{app.Config.Output.JSON, app.Config.Output.DOT} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("Expected output %s: %v", p, err)
		}
	}
}

func TestLoadConfig_MissingDefaultFallsBack(t *testing.T) {
	cfg, err := loadConfig("./codescope.toml")
	if err != nil {
		t.Fatalf("Expected fallback to defaults, got %v", err)
	}
	if cfg.Workers == 0 {
		t.Error("Expected defaults to be applied")
	}
}
