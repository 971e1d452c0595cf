package watch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWatcher(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 4)
	w, err := NewWatcher(Options{
		Debounce:     100 * time.Millisecond,
		ExcludeDirs:  []string{"node_modules"},
		ExcludeFiles: []string{"*.min.js"},
		Supported: func(path string) bool {
			return strings.HasSuffix(path, ".js")
		},
		RescansPerSec: 100,
		OnChange: func(paths []string) {
			changedFiles <- paths
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	testFile := filepath.Join(tmpDir, "app.js")
	os.WriteFile(testFile, []byte("x()"), 0o644)

	select {
	case paths := <-changedFiles:
		found := false
		for _, p := range paths {
			if p == testFile {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected %s in changed files %v", testFile, paths)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for file change event")
	}

	// unsupported and excluded files must not trigger
	os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(tmpDir, "app.min.js"), []byte("x"), 0o644)

	select {
	case paths := <-changedFiles:
		for _, p := range paths {
			base := filepath.Base(p)
			if base == "notes.txt" || base == "app.min.js" {
				t.Errorf("Filtered file triggered event: %s", p)
			}
		}
	case <-time.After(500 * time.Millisecond):
		// expected
	}

	// new directories get watched recursively
	subdir := filepath.Join(tmpDir, "lib")
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	subFile := filepath.Join(subdir, "util.js")
	if err := os.WriteFile(subFile, []byte("y()"), 0o644); err != nil {
		t.Fatal(err)
	}

	foundNested := false
	timeout := time.After(2 * time.Second)
	for !foundNested {
		select {
		case paths := <-changedFiles:
			for _, p := range paths {
				if p == subFile {
					foundNested = true
				}
			}
		case <-timeout:
			t.Fatal("timed out waiting for nested file event")
		}
	}
}

func TestWatcher_InvalidGlob(t *testing.T) {
	_, err := NewWatcher(Options{ExcludeDirs: []string{"[bad"}})
	if err == nil {
		t.Fatal("Expected error for invalid glob")
	}
}
