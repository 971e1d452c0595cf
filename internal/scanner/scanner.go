package scanner

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"codescope/internal/errors"
)

// Scanner walks the configured roots and produces the deterministic,
// lexicographically ordered list of files to analyze. Unreadable
// directories are logged and skipped; only an invalid root is terminal.
type Scanner struct {
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	supported    func(path string) bool
	includeTests bool
	isTestFile   func(path string) bool
}

func New(excludeDirs, excludeFiles []string, supported func(string) bool) (*Scanner, error) {
	s := &Scanner{
		supported:  supported,
		isTestFile: func(string) bool { return false },
	}
	for _, p := range excludeDirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Newf(errors.CodeConfig, "invalid exclude dir pattern %q: %v", p, err)
		}
		s.excludeDirs = append(s.excludeDirs, g)
	}
	for _, p := range excludeFiles {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Newf(errors.CodeConfig, "invalid exclude file pattern %q: %v", p, err)
		}
		s.excludeFiles = append(s.excludeFiles, g)
	}
	return s, nil
}

func (s *Scanner) IncludeTests(include bool, isTestFile func(string) bool) {
	s.includeTests = include
	if isTestFile != nil {
		s.isTestFile = isTestFile
	}
}

// Scan returns every matching file under the given roots, sorted. A root
// that does not exist or is not a directory is a configuration error, and
// so is a scan that matches no files at all.
func (s *Scanner) Scan(roots []string) ([]string, error) {
	var files []string

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeConfig, "invalid scan root")
		}
		if !info.IsDir() {
			return nil, errors.Newf(errors.CodeConfig, "scan root %q is not a directory", root)
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// unreadable entry: skip, never abort the run
				slog.Warn("skipping unreadable path", "path", path, "error", err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			base := filepath.Base(path)
			if d.IsDir() {
				if path != root && strings.HasPrefix(base, ".") {
					return filepath.SkipDir
				}
				for _, g := range s.excludeDirs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if !s.supported(path) {
				return nil
			}
			if !s.includeTests && s.isTestFile(path) {
				return nil
			}
			for _, g := range s.excludeFiles {
				if g.Match(base) {
					return nil
				}
			}

			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeIO, "walk failed")
		}
	}

	if len(files) == 0 {
		return nil, errors.New(errors.CodeConfig, "no matching files found under the scan roots")
	}

	sort.Strings(files)
	return files, nil
}

// ReadFile loads one file's content. IO failures are non-fatal to the
// run; the caller records them as analysis issues.
func ReadFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, "read file")
	}
	return content, nil
}
