package indexing

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher keeps the index in sync with filesystem changes under the project
// root. Write bursts are debounced per file so an editor's save sequence
// triggers one reindex, not five.
type Watcher struct {
	scanner  *Scanner
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer

	done chan struct{}
}

// NewWatcher returns a watcher feeding scanner's index. Call Run to start.
func NewWatcher(scanner *Scanner, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	return &Watcher{
		scanner:  scanner,
		watcher:  fsw,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}, nil
}

// Run watches until ctx is cancelled. Directories are watched recursively,
// including ones created while running.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()

	if err := w.watchTree(w.scanner.cfg.Project.Root); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: %v", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.cancelPending(path)
		if w.scanner.parser.Supports(path) {
			w.scanner.RemoveFile(path)
		}
		return
	}

	if event.Has(fsnotify.Create) {
		// A new directory needs its own watch; fsnotify is not recursive.
		if err := w.watchTree(path); err == nil {
			return
		}
	}

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !w.scanner.Accepts(path) {
		return
	}
	w.schedule(path)
}

// schedule arms (or re-arms) the debounce timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.done:
			return
		default:
		}
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		if err := w.scanner.IndexFile(path); err != nil {
			log.Printf("watch: reindex %s: %v", path, err)
		}
	})
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.timers[path]; ok {
		timer.Stop()
		delete(w.timers, path)
	}
}

// watchTree adds watches for dir and every non-excluded directory below it.
// Returns an error if dir is not a directory.
func (w *Watcher) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if path == dir {
				return fmt.Errorf("%s is not a directory", dir)
			}
			return nil
		}
		if path != w.scanner.cfg.Project.Root && w.scanner.dirExcluded(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) close() {
	close(w.done)
	w.mu.Lock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()
	if err := w.watcher.Close(); err != nil {
		log.Printf("watch: close: %v", err)
	}
}
