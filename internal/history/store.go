// Package history persists one row per analysis run in a local sqlite
// database, so repeated scans of the same tree can be compared over
// time.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"codescope/internal/analysis"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Run is one persisted analysis result.
type Run struct {
	ID                 string    `json:"id"`
	SchemaVersion      int       `json:"schema_version"`
	Timestamp          time.Time `json:"timestamp"`
	CommitHash         string    `json:"commit_hash,omitempty"`
	CommitTimestamp    time.Time `json:"commit_timestamp,omitempty"`
	Files              int       `json:"files"`
	Functions          int       `json:"functions"`
	Classes            int       `json:"classes"`
	Lines              int       `json:"lines"`
	Cycles             int       `json:"cycles"`
	Hotspots           int       `json:"hotspots"`
	Duplicates         int       `json:"duplicates"`
	Unused             int       `json:"unused"`
	Issues             int       `json:"issues"`
	AvgMaintainability float64   `json:"avg_maintainability"`
}

// RunFromSummary condenses a summary into a Run with a fresh id.
func RunFromSummary(summary *analysis.ProjectSummary) Run {
	run := Run{
		ID:            uuid.NewString(),
		SchemaVersion: SchemaVersion,
		Timestamp:     summary.GeneratedAt,
		Files:         summary.Totals.Files,
		Functions:     summary.Totals.Functions,
		Classes:       summary.Totals.Classes,
		Lines:         summary.Totals.Lines,
		Cycles:        len(summary.Cycles),
		Hotspots:      len(summary.Hotspots),
		Duplicates:    len(summary.Duplicates),
		Unused:        len(summary.Unused),
		Issues:        len(summary.Issues),
	}
	if len(summary.Files) > 0 {
		total := 0.0
		for _, f := range summary.Files {
			total += f.Quality.Maintainability
		}
		run.AvgMaintainability = total / float64(len(summary.Files))
	}
	return run
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) SaveRun(run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}
	if run.SchemaVersion == 0 {
		run.SchemaVersion = SchemaVersion
	}
	if run.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported run schema version %d", run.SchemaVersion)
	}

	commitTS := ""
	if !run.CommitTimestamp.IsZero() {
		commitTS = run.CommitTimestamp.UTC().Format(time.RFC3339Nano)
	}

	query := `
INSERT INTO runs (
  id, schema_version, ts_utc, commit_hash, commit_ts_utc,
  file_count, function_count, class_count, line_count,
  cycle_count, hotspot_count, duplicate_count, unused_count, issue_count,
  avg_maintainability
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	return s.withRetry("save run", func() error {
		_, err := s.db.Exec(
			query,
			run.ID,
			run.SchemaVersion,
			run.Timestamp.UTC().Format(time.RFC3339Nano),
			run.CommitHash,
			commitTS,
			run.Files,
			run.Functions,
			run.Classes,
			run.Lines,
			run.Cycles,
			run.Hotspots,
			run.Duplicates,
			run.Unused,
			run.Issues,
			run.AvgMaintainability,
		)
		return err
	})
}

// LoadRuns returns the runs at or after since, oldest first.
func (s *Store) LoadRuns(since time.Time) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT id, schema_version, ts_utc, commit_hash, commit_ts_utc,
       file_count, function_count, class_count, line_count,
       cycle_count, hotspot_count, duplicate_count, unused_count, issue_count,
       avg_maintainability
FROM runs
WHERE ts_utc >= ?
ORDER BY ts_utc ASC
`
	var runs []Run
	err := s.withRetry("load runs", func() error {
		rows, err := s.db.Query(query, since.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return err
		}
		defer rows.Close()

		runs = runs[:0]
		for rows.Next() {
			var r Run
			var ts, commitTS string
			if err := rows.Scan(
				&r.ID, &r.SchemaVersion, &ts, &r.CommitHash, &commitTS,
				&r.Files, &r.Functions, &r.Classes, &r.Lines,
				&r.Cycles, &r.Hotspots, &r.Duplicates, &r.Unused, &r.Issues,
				&r.AvgMaintainability,
			); err != nil {
				return err
			}
			if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
				r.Timestamp = parsed
			}
			if commitTS != "" {
				if parsed, err := time.Parse(time.RFC3339Nano, commitTS); err == nil {
					r.CommitTimestamp = parsed
				}
			}
			runs = append(runs, r)
		}
		return rows.Err()
	})
	return runs, err
}

func (s *Store) withRetry(op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil || !isBusy(err) {
			return err
		}
		time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
