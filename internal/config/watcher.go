package config

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/giantswarm/mcp-gateway/pkg/logging"
)

// debounceInterval is the quiet period after the last write to a watched
// file before its handler fires. Tests lower this to make reload
// assertions fast and deterministic.
var debounceInterval = 300 * time.Millisecond

// Watcher watches a set of files for external changes (the config file
// itself, and in file-persistence mode the registry's JSON snapshot) and
// invokes a caller-supplied handler once per genuine content change,
// coalescing bursts of writes and skipping no-op events a rename or an
// editor's atomic-save dance can produce.
type Watcher struct {
	fsw *fsnotify.Watcher

	mu       sync.Mutex
	hashes   map[string]string
	handlers map[string]func()
	timers   map[string]*time.Timer

	closeOnce sync.Once
}

// NewWatcher creates a Watcher with no paths registered yet; call Watch for
// each file of interest before Start.
func NewWatcher() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsw:      fsw,
		hashes:   make(map[string]string),
		handlers: make(map[string]func()),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Watch registers path for change notification. onChange runs (on its own
// goroutine) after a debounced write whose content hash differs from the
// last observed hash. A file that doesn't exist yet may still be watched;
// its directory is what fsnotify actually observes, since editors commonly
// replace a file via rename rather than in-place write.
func (w *Watcher) Watch(path string, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.fsw.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	w.mu.Lock()
	w.handlers[abs] = onChange
	if data, err := os.ReadFile(abs); err == nil {
		w.hashes[abs] = hashBytes(data)
	}
	w.mu.Unlock()
	return nil
}

// Start runs the watch loop until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Error("ConfigWatcher", err, "fsnotify error")
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	path := filepath.Clean(ev.Name)

	w.mu.Lock()
	handler, watched := w.handlers[path]
	if !watched {
		w.mu.Unlock()
		return
	}
	if t, exists := w.timers[path]; exists {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(debounceInterval, func() { w.fireIfChanged(path, handler) })
	w.mu.Unlock()
}

func (w *Watcher) fireIfChanged(path string, handler func()) {
	data, err := os.ReadFile(path)
	if err != nil {
		logging.Warn("ConfigWatcher", "reload skipped, could not read %s: %v", path, err)
		return
	}
	hash := hashBytes(data)

	w.mu.Lock()
	changed := w.hashes[path] != hash
	w.hashes[path] = hash
	w.mu.Unlock()

	if changed {
		handler()
	}
}

// Stop closes the underlying fsnotify watcher. Safe to call more than
// once.
func (w *Watcher) Stop() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsw.Close()
	})
	return err
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
