// Package watcher provides drop-directory ingestion: files created or
// modified under one watched directory are ingested, removals delete the
// corresponding document.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches a directory and invokes callbacks on file changes.
// Events are debounced per path so editors that write in bursts trigger a
// single ingest.
type Watcher struct {
	root       string
	extensions []string
	onIngest   func(path string)
	onRemove   func(path string)
	debounce   time.Duration
	watcher    *fsnotify.Watcher
	mu         sync.Mutex
	timers     map[string]*time.Timer
	stopOnce   sync.Once
	done       chan struct{}
	logger     *zap.Logger // optional
}

// New creates a watcher for root. extensions filter which files are
// reported (empty = all). logger may be nil.
func New(root string, extensions []string, onIngest, onRemove func(path string), logger *zap.Logger) *Watcher {
	return &Watcher{
		root:       root,
		extensions: extensions,
		onIngest:   onIngest,
		onRemove:   onRemove,
		debounce:   defaultDebounce,
		timers:     make(map[string]*time.Timer),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(w.root); err != nil {
		_ = fw.Close()
		return err
	}
	w.watcher = fw
	if w.logger != nil {
		w.logger.Debug("watcher started", zap.String("root", w.root), zap.Strings("extensions", w.extensions))
	}
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil && w.logger != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name
	if !w.extensionMatch(path) {
		return
	}
	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.scheduleIngest(path)
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.cancelPending(path)
		if w.onRemove != nil {
			w.onRemove(path)
		}
	}
}

// scheduleIngest (re)arms the debounce timer for path. The ingest fires
// only after the path has been quiet for the debounce window, and only if
// the file still exists.
func (w *Watcher) scheduleIngest(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return
		}
		if w.onIngest != nil {
			w.onIngest(path)
		}
	})
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
		delete(w.timers, path)
	}
}

// SyncExisting invokes the ingest callback for every matching regular file
// already present under the root.
func (w *Watcher) SyncExisting() {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.root, entry.Name())
		if !w.extensionMatch(path) {
			continue
		}
		if w.onIngest != nil {
			w.onIngest(path)
		}
	}
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
		w.mu.Lock()
		for path, t := range w.timers {
			t.Stop()
			delete(w.timers, path)
		}
		w.mu.Unlock()
	})
}

func (w *Watcher) extensionMatch(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range w.extensions {
		if strings.EqualFold(strings.TrimPrefix(allowed, "."), strings.TrimPrefix(ext, ".")) {
			return true
		}
	}
	return false
}
