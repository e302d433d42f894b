package source

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

// WatcherConfig contains configuration for the rules directory watcher.
type WatcherConfig struct {
	// Directory is the directory to watch (not recursive).
	Directory string

	// DebounceInterval is the quiet period after the last change before the
	// callback runs (default: 100ms)
	DebounceInterval time.Duration

	// Extensions is the list of file extensions that count as changes
	Extensions []string
}

// Watcher calls back when rule documents in a directory change. Bursts of
// events are collapsed by a Debouncer.
type Watcher struct {
	config *WatcherConfig
	logger *slog.Logger
	ready  chan struct{}

	mu      sync.Mutex
	running bool
}

// NewWatcher creates a watcher. A zero DebounceInterval means 100ms.
func NewWatcher(config WatcherConfig, logger *slog.Logger) *Watcher {
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 100 * time.Millisecond
	}
	if len(config.Extensions) == 0 {
		config.Extensions = DefaultConfig().Extensions
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		config: &config,
		logger: logger.With("component", "rules.watcher"),
		ready:  make(chan struct{}),
	}
}

// Ready is closed once the directory is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Watch blocks until ctx is cancelled, calling onChange after each debounced
// burst of changes. Callback errors are logged and watching continues. A
// watcher runs at most once.
func (w *Watcher) Watch(ctx context.Context, onChange func() error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	debounce := NewDebouncer(w.config.DebounceInterval)
	defer func() {
		debounce.Stop()
		fw.Close()
	}()

	if err := fw.Add(w.config.Directory); err != nil {
		return fmt.Errorf("failed to watch %q: %w", w.config.Directory, err)
	}
	close(w.ready)

	w.logger.Info("File watcher started",
		"path", w.config.Directory,
		"debounce_ms", w.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("File watcher stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcessEvent(event) {
				continue
			}

			w.logger.Debug("File event detected", "path", event.Name, "op", event.Op.String())

			debounce.Trigger(func() {
				w.logger.Info("Rule documents changed", "path", event.Name, "op", event.Op.String())
				if err := onChange(); err != nil {
					w.logger.Error("Rule reload failed", "error", err)
				}
			})

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("File watcher error", "error", err)
		}
	}
}

func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return hasExtension(name, w.config.Extensions)
}

// Debouncer runs the most recent callback once no new trigger has arrived
// for the interval. Callbacks never overlap: a quiet period that ends while a
// callback is running waits for it, then runs the latest pending callback.
type Debouncer struct {
	interval time.Duration

	// runMu is held for the duration of a callback.
	runMu sync.Mutex

	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopped  bool
	inflight sync.WaitGroup
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger replaces the pending callback and restarts the quiet period.
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
	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	d.mu.Lock()
	if d.stopped || d.callback == nil {
		d.mu.Unlock()
		return
	}
	cb := d.callback
	d.callback = nil
	d.inflight.Add(1)
	d.mu.Unlock()

	defer d.inflight.Done()
	cb()
}

// Stop cancels any pending callback and waits for a running one to return.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
	d.mu.Unlock()

	d.inflight.Wait()
}
