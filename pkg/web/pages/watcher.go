package pages

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is the quiet period after the last template edit
// before the templates are parsed again.
const DefaultDebounceInterval = 100 * time.Millisecond

// Watcher reloads a Renderer when files in its templates directory change.
type Watcher struct {
	renderer *Renderer
	watcher  *fsnotify.Watcher
	debounce *Debouncer
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for renderer's templates directory. The
// embedded templates cannot be watched.
func NewWatcher(renderer *Renderer, debounce time.Duration) (*Watcher, error) {
	if renderer.Dir() == "" {
		return nil, fmt.Errorf("embedded templates cannot be watched")
	}
	if debounce <= 0 {
		debounce = DefaultDebounceInterval
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fw.Add(renderer.Dir()); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", renderer.Dir(), err)
	}

	return &Watcher{
		renderer: renderer,
		watcher:  fw,
		debounce: NewDebouncer(debounce),
		logger:   renderer.logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch processes file events until ctx is cancelled or Stop is called.
// A failed reload is logged and the previous templates stay in use.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()
	defer close(w.doneCh)

	w.logger.Info("watching templates", "dir", w.renderer.Dir())

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stopCh:
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !isTemplateEvent(event) {
				continue
			}
			w.logger.Debug("template changed", "path", event.Name, "op", event.Op.String())

			w.debounce.Trigger(func() {
				if err := w.renderer.Reload(); err != nil {
					w.logger.Error("template reload failed", "error", err)
					return
				}
				w.logger.Info("templates reloaded", "dir", w.renderer.Dir())
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("template watcher error", "error", err)
		}
	}
}

// Stop ends Watch and releases the fsnotify watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	w.debounce.Stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func isTemplateEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	return !strings.HasPrefix(base, ".") && strings.EqualFold(filepath.Ext(base), ".html")
}

// Debouncer collects rapid events and runs the last callback only after a
// quiet period.
type Debouncer struct {
	interval time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopped  bool
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules callback, replacing any pending one.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		d.callback = nil
		stopped := d.stopped
		d.mu.Unlock()

		if cb != nil && !stopped {
			cb()
		}
	})
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
