package history

import (
	"path/filepath"
	"testing"
	"time"

	"codescope/internal/analysis"
	"codescope/internal/metrics"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SaveAndLoadRuns(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := Run{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Files:     10 + i,
			Functions: 40 + i,
			Cycles:    i,
		}
		if err := store.SaveRun(run); err != nil {
			t.Fatalf("save run %d: %v", i, err)
		}
	}

	runs, err := store.LoadRuns(base.Add(30 * time.Second))
	if err != nil {
		t.Fatalf("load runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs after cutoff, got %d", len(runs))
	}
	if runs[0].Files != 11 || runs[1].Files != 12 {
		t.Errorf("unexpected ordering: %+v", runs)
	}
	if runs[0].ID == "" || runs[0].ID == runs[1].ID {
		t.Error("expected distinct non-empty run ids")
	}
}

func TestStore_OpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".codescope", "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if err := store.SaveRun(Run{Files: 1}); err != nil {
		t.Fatalf("save run: %v", err)
	}
}

func TestStore_OpenRejectsEmptyAndDirPaths(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := Open(t.TempDir()); err == nil {
		t.Error("expected error for directory path")
	}
}

func TestRunFromSummary(t *testing.T) {
	summary := &analysis.ProjectSummary{
		GeneratedAt: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
		Totals:      analysis.Totals{Files: 2, Functions: 7, Classes: 1, Lines: 300},
		Files: []analysis.FileSummary{
			{Path: "a.js", Quality: metrics.QualityMetrics{Maintainability: 8}},
			{Path: "b.js", Quality: metrics.QualityMetrics{Maintainability: 6}},
		},
		Cycles:   [][]string{{"a.js", "b.js"}},
		Hotspots: []metrics.Hotspot{{File: "a.js", Score: 9}},
		Issues:   []analysis.Issue{{Path: "c.js"}},
	}

	run := RunFromSummary(summary)
	if run.ID == "" {
		t.Error("expected a generated id")
	}
	if run.Files != 2 || run.Cycles != 1 || run.Hotspots != 1 || run.Issues != 1 {
		t.Errorf("unexpected counts: %+v", run)
	}
	if run.AvgMaintainability != 7 {
		t.Errorf("expected avg maintainability 7, got %.2f", run.AvgMaintainability)
	}
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SaveRun(Run{Files: 5, Timestamp: time.Now().UTC()}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	runs, err := reopened.LoadRuns(time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Files != 5 {
		t.Errorf("expected the saved run to survive reopen, got %+v", runs)
	}
}
