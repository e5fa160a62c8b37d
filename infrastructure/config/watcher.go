package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses bursts of file events, such as an editor's
// write-rename-chmod sequence, into a single reload
const DefaultDebounce = 300 * time.Millisecond

// ContentWatcher watches the content directory and calls onChange once per
// burst of changes to markdown files
type ContentWatcher struct {
	dir      string
	debounce time.Duration
	onChange func(ctx context.Context)
	logger   *zap.Logger

	watcher  *fsnotify.Watcher
	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewContentWatcher creates a watcher for dir. Call Start to begin watching.
func NewContentWatcher(dir string, debounce time.Duration, onChange func(ctx context.Context), logger *zap.Logger) (*ContentWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &ContentWatcher{
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		watcher:  fsWatcher,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start runs the watch loop until ctx is done or Stop is called
func (w *ContentWatcher) Start(ctx context.Context) {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	w.logger.Info("Watching content for changes", zap.String("dir", w.dir))
	go w.watchLoop(ctx)
}

// Stop ends the watch loop and waits for it to exit
func (w *ContentWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	if !w.started.Load() {
		w.watcher.Close()
		return
	}
	<-w.doneCh
}

func (w *ContentWatcher) watchLoop(ctx context.Context) {
	defer close(w.doneCh)
	defer w.watcher.Close()

	// Reset discards a pending fire, so the timer never needs draining
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isContentFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("Content changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)
			timer.Reset(w.debounce)

		case <-timer.C:
			w.logger.Info("Reloading content", zap.String("dir", w.dir))
			w.onChange(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-ctx.Done():
			return

		case <-w.stopCh:
			w.logger.Info("Stopping content watcher")
			return
		}
	}
}

func isContentFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}
