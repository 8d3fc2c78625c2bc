package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"tritcalc/internal/logging"
)

// ReloadFunc receives each successfully reloaded and validated config.
type ReloadFunc func(*Config)

// Watcher reloads a config file when it changes on disk. It watches the
// parent directory so editors that replace the file by rename still trigger.
type Watcher struct {
	path     string
	dir      string
	onReload ReloadFunc
	debounce time.Duration

	mu      sync.Mutex
	pending time.Time
	stats   WatcherStats
}

// WatcherStats tracks watcher activity.
type WatcherStats struct {
	Events   int
	Reloads  int
	Failures int
	Skipped  int
	LastErr  error
}

// NewWatcher creates a watcher for path. onReload may be nil.
func NewWatcher(path string, onReload ReloadFunc) *Watcher {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	return &Watcher{
		path:     abs,
		dir:      filepath.Dir(abs),
		onReload: onReload,
		debounce: 300 * time.Millisecond,
	}
}

// Stats returns a snapshot of watcher counters.
func (w *Watcher) Stats() WatcherStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Run blocks until ctx is cancelled, reloading the config after each burst
// of writes settles.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	logging.Config("Watcher: watching %s", w.path)

	debounceTicker := time.NewTicker(100 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Config("Watcher: context cancelled")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logging.ConfigWarn("Watcher error: %v", err)

		case now := <-debounceTicker.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
		return
	}
	w.mu.Lock()
	w.stats.Events++
	w.pending = time.Now()
	w.mu.Unlock()
}

// flush reloads once the last event is older than the debounce window.
func (w *Watcher) flush(now time.Time) {
	w.mu.Lock()
	if w.pending.IsZero() || now.Sub(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	w.reload()
}

func (w *Watcher) reload() {
	// An empty or missing file is an editor mid-save, not a request for defaults.
	if info, err := os.Stat(w.path); err != nil || info.Size() == 0 {
		w.mu.Lock()
		w.stats.Skipped++
		w.mu.Unlock()
		logging.ConfigWarn("Watcher: %s is empty or missing, keeping previous config", w.path)
		return
	}

	cfg, err := Load(w.path)
	if err == nil {
		err = cfg.Validate()
	}
	logging.Audit().ConfigReload(w.path, err)

	w.mu.Lock()
	if err != nil {
		w.stats.Failures++
		w.stats.LastErr = err
	} else {
		w.stats.Reloads++
	}
	w.mu.Unlock()

	if err != nil {
		logging.ConfigWarn("Watcher: keeping previous config, reload failed: %v", err)
		return
	}
	logging.Config("Watcher: reloaded %s", w.path)
	if w.onReload != nil {
		w.onReload(cfg)
	}
}
