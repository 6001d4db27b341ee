package scanner

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultExtension is the only file extension the viewer lists.
const DefaultExtension = ".md"

// Scanner discovers documents under a root directory.
type Scanner struct {
	ext string
	log *slog.Logger
}

// New creates a Scanner for files ending in ext. An empty ext uses
// DefaultExtension.
func New(ext string, log *slog.Logger) *Scanner {
	if ext == "" {
		ext = DefaultExtension
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{ext: ext, log: log}
}

// Scan walks root and returns the slash-separated relative paths of every
// regular file with the scanner's extension, sorted ascending.
//
// Entries that cannot be read are logged and skipped; the walk never fails as
// a whole. A symlinked root is resolved first. Symlinks below the root are
// not followed, so cycles through linked directories cannot occur.
func (s *Scanner) Scan(root string) []string {
	var files []string

	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			s.log.Warn("skipping unreadable entry", "path", p, "error", err)
			if d != nil && d.IsDir() && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), s.ext) {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			s.log.Warn("skipping entry outside root", "path", p, "error", err)
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})

	slices.Sort(files)
	return slices.Compact(files)
}
