// Package indexing feeds the file index from the filesystem: a one-shot
// parallel scan of the project tree and an fsnotify watcher that keeps the
// index current as files change.
package indexing

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/lsi/internal/collector"
	"github.com/standardbeagle/lsi/internal/config"
	"github.com/standardbeagle/lsi/internal/index"
)

// Scanner walks the configured root and indexes every matching source file.
type Scanner struct {
	cfg    *config.Config
	parser *collector.Parser
	index  *index.FileIndex
}

// NewScanner returns a scanner feeding fi.
func NewScanner(cfg *config.Config, fi *index.FileIndex) *Scanner {
	return &Scanner{
		cfg:    cfg,
		parser: collector.NewParser(),
		index:  fi,
	}
}

// Scan indexes the project tree and installs one merged snapshot at the end.
// Returns the number of files indexed. Files that fail to read or parse are
// logged and skipped; only walk-level failures abort the scan.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	root := s.cfg.Project.Root
	paths, err := s.candidates(root)
	if err != nil {
		return 0, err
	}

	var mu sync.Mutex
	var updates []index.BatchUpdate

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism())
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(path)
			if err != nil {
				log.Printf("scan: skipping %s: %v", path, err)
				return nil
			}
			unit, err := s.parser.Parse(path, content)
			if err != nil {
				log.Printf("scan: skipping %s: %v", path, err)
				return nil
			}
			mu.Lock()
			updates = append(updates, index.BatchUpdate{Path: path, Unit: unit})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, u := range updates {
			u.Unit.Close()
		}
		return 0, err
	}

	s.index.UpdateBatch(updates)
	return len(updates), nil
}

// IndexFile (re)indexes a single file, used by the watcher.
func (s *Scanner) IndexFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if s.cfg.Index.MaxFileSize > 0 && int64(len(content)) > s.cfg.Index.MaxFileSize {
		return nil
	}
	unit, err := s.parser.Parse(path, content)
	if err != nil {
		return err
	}
	s.index.Update(path, unit)
	return nil
}

// RemoveFile drops a file's contribution, used by the watcher.
func (s *Scanner) RemoveFile(path string) {
	s.index.Update(path, nil)
}

// Accepts reports whether path passes the extension, include and exclude
// checks.
func (s *Scanner) Accepts(path string) bool {
	if !s.parser.Supports(path) {
		return false
	}
	rel := s.relative(path)
	for _, pattern := range s.cfg.Index.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	if len(s.cfg.Index.Include) == 0 {
		return true
	}
	for _, pattern := range s.cfg.Index.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (s *Scanner) candidates(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && s.dirExcluded(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.Accepts(path) {
			return nil
		}
		if s.cfg.Index.MaxFileSize > 0 {
			if info, err := d.Info(); err == nil && info.Size() > s.cfg.Index.MaxFileSize {
				return nil
			}
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return paths, nil
}

// dirExcluded prunes directories whose entire subtree is excluded, so walks
// never descend into .git or node_modules.
func (s *Scanner) dirExcluded(dir string) bool {
	rel := s.relative(dir)
	probe := rel + "/x"
	for _, pattern := range s.cfg.Index.Exclude {
		if ok, _ := doublestar.Match(pattern, probe); ok {
			return true
		}
	}
	return false
}

func (s *Scanner) relative(path string) string {
	rel, err := filepath.Rel(s.cfg.Project.Root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

func (s *Scanner) parallelism() int {
	if n := s.cfg.Index.MaxParallel; n > 0 {
		return n
	}
	return 4
}
