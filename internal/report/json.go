// Package report serializes a finished analysis: machine-readable JSON,
// a terminal summary, and a DOT rendering of the dependency graph.
package report

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"codescope/internal/analysis"
	"codescope/internal/errors"
)

// WriteJSON streams the summary as indented JSON.
func WriteJSON(w io.Writer, summary *analysis.ProjectSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "encode summary")
	}
	return nil
}

// WriteJSONFile writes the summary to path, creating parent directories
// as needed.
func WriteJSONFile(path string, summary *analysis.ProjectSummary) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, errors.CodeIO, "create output directory")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeIO, "create output file")
	}
	defer f.Close()
	return WriteJSON(f, summary)
}
