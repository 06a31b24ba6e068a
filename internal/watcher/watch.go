// Package watcher wraps fsnotify with recursive directory registration and
// debouncing, so the UI sees one refresh signal per burst of writes.
package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses rapid change bursts into a single notification.
const DefaultDebounce = 150 * time.Millisecond

var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".hg":          true,
	".svn":         true,
}

// Watcher watches a directory tree and delivers debounced change signals on
// Changes. Each signal carries the path of one file that changed during the
// burst; consumers treat it as "something changed, refresh".
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	debounce time.Duration
	Changes  chan string
	Errors   chan error

	mu      sync.Mutex
	pending map[string]time.Time
	done    chan struct{}
	once    sync.Once
}

// New creates a watcher over dir and all its subdirectories, skipping VCS and
// dependency directories.
func New(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		root:     dir,
		debounce: DefaultDebounce,
		Changes:  make(chan string, 16),
		Errors:   make(chan error, 1),
		pending:  make(map[string]time.Time),
		done:     make(chan struct{}),
	}
	if err := w.addRecursive(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if skipDirs[filepath.Base(path)] {
			return filepath.SkipDir
		}
		// Non-fatal; unreadable subtrees simply go unwatched
		_ = w.fsw.Add(path)
		return nil
	})
}

// Start begins forwarding debounced events. It returns immediately.
func (w *Watcher) Start() {
	go w.forward()
	go w.flushPending()
}

func (w *Watcher) forward() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.ignored(event.Name) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.mu.Lock()
				w.pending[event.Name] = time.Now()
				w.mu.Unlock()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) flushPending() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			now := time.Now()
			w.mu.Lock()
			var ripe []string
			for path, at := range w.pending {
				if now.Sub(at) >= w.debounce {
					ripe = append(ripe, path)
					delete(w.pending, path)
				}
			}
			w.mu.Unlock()
			for _, path := range ripe {
				select {
				case w.Changes <- path:
				case <-w.done:
					return
				}
			}
		}
	}
}

func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if skipDirs[part] {
			return true
		}
	}
	return false
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.once.Do(func() { close(w.done) })
	return w.fsw.Close()
}
