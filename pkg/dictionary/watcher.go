package dictionary

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a JSON field dictionary when the backing file
// changes, with debouncing so editor write storms trigger one reload.
type Watcher struct {
	path     string
	source   *MemorySource
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher that keeps source in sync with the
// dictionary file at path. A zero debounce defaults to 100ms.
func NewWatcher(path string, source *MemorySource, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		path:     path,
		source:   source,
		watcher:  fsWatcher,
		debounce: debounce,
		logger:   logger.With("component", "dictionary.watcher"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks processing file events until the context is cancelled or
// Stop is called.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.watcher.Add(w.path); err != nil {
		return fmt.Errorf("failed to watch dictionary file: %w", err)
	}

	w.logger.Info("dictionary watcher started",
		"path", w.path,
		"debounce_ms", w.debounce.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("dictionary watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("dictionary watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			w.scheduleReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("dictionary watcher error", "error", err)
			// Keep watching despite errors.
		}
	}
}

// scheduleReload arms the debounce timer, replacing any pending reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	reloaded, err := LoadFieldFile(w.path)
	if err != nil {
		w.logger.Error("dictionary reload failed", "path", w.path, "error", err)
		return
	}

	w.source.Replace(snapshot(reloaded))
	w.logger.Info("dictionary reloaded", "path", w.path, "fields", w.source.Len())
}

// snapshot copies a freshly loaded source's entries so they can be
// swapped into the live source.
func snapshot(src *MemorySource) []FieldMetadata {
	src.mu.RLock()
	defer src.mu.RUnlock()

	entries := make([]FieldMetadata, 0, len(src.fields))
	for _, meta := range src.fields {
		entries = append(entries, *meta)
	}
	return entries
}

// Stop stops the watcher and cancels any pending reload.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	return w.watcher.Close()
}
