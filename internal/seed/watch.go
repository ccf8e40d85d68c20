package seed

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/sadopc/campustasks/internal/task"
)

// ReloadDebounce batches the burst of events an editor emits on save.
const ReloadDebounce = 500 * time.Millisecond

// Watcher reloads a seed file whenever it changes on disk. It watches the
// containing directory so rename-on-save editors are picked up too.
type Watcher struct {
	path     string
	onReload func([]task.Task)
	log      *zap.Logger

	watcher  *fsnotify.Watcher
	debounce *task.Debouncer[struct{}]

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// reloadMu is held for the whole of a reload; closed is set under it by
	// Stop so no callback runs after Stop returns.
	reloadMu sync.Mutex
	closed   bool
}

// NewWatcher creates a watcher for path. onReload receives every successfully
// parsed version of the file; failed parses are logged and skipped.
func NewWatcher(path string, onReload func([]task.Task), log *zap.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve seed path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	w := &Watcher{
		path:     abs,
		onReload: onReload,
		log:      log.With(zap.String("seed_file", abs)),
		watcher:  fw,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	w.debounce = task.Debounce(func(struct{}) { w.reload() }, ReloadDebounce)
	return w, nil
}

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.running = true
	go w.run(ctx)
	w.log.Info("watching seed file")
	return nil
}

// Stop ends the event loop and waits for it and any reload in flight to
// finish. Safe to call twice.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		w.debounce.Stop()
		w.markClosed()
		w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.debounce.Stop()
	w.markClosed()
	if err := w.watcher.Close(); err != nil {
		w.log.Warn("close watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Debug("seed file event", zap.String("op", ev.Op.String()))
			w.debounce.Call(struct{}{})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) markClosed() {
	w.reloadMu.Lock()
	w.closed = true
	w.reloadMu.Unlock()
}

func (w *Watcher) reload() {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()
	if w.closed {
		return
	}

	tasks, err := LoadFile(w.path)
	if err != nil {
		w.log.Warn("seed reload failed, keeping previous tasks", zap.Error(err))
		return
	}
	w.log.Info("seed file reloaded", zap.Int("tasks", len(tasks)))
	if w.onReload != nil {
		w.onReload(tasks)
	}
}
