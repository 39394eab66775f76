// Package watch invalidates the cached table when its source file changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay is how long a file must stay unchanged before a change
// is reported.
const DefaultSettleDelay = 250 * time.Millisecond

// Invalidator drops cached state for a path. *loader.Cache satisfies it.
type Invalidator interface {
	Invalidate(path string)
}

// Options configures a Watcher.
type Options struct {
	SettleDelay time.Duration
	Logger      *slog.Logger
	// OnChange, when set, runs after each invalidation, e.g. to reload eagerly.
	OnChange func(path string)
}

// Watcher watches one file through its parent directory, so the file may be
// replaced by rename or created after the watcher starts.
type Watcher struct {
	path    string
	target  Invalidator
	opts    Options
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	timer   *time.Timer
	size    int64
	modTime time.Time
	stopped bool
}

// New creates a watcher for path. Call Run to start delivering changes.
func New(path string, target Invalidator, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &Watcher{
		path:    abs,
		target:  target,
		opts:    opts,
		logger:  logger,
		watcher: fw,
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run processes file events until ctx is canceled, then releases the
// watcher. It returns an error only if the event stream fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	w.logger.Info("watching data file", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				// Events were lost; assume the file changed.
				w.logger.Warn("watch event overflow", "path", w.path)
				w.invalidate("overflow")
				continue
			}
			return fmt.Errorf("watching %s: %w", w.path, err)
		}
	}
}

// handle reacts to one event in the parent directory.
func (w *Watcher) handle(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.cancelPending()
		w.invalidate("removed")
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		w.startSettling()
	}
}

// startSettling (re)arms the settle timer with the file's current stat.
func (w *Watcher) startSettling() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}

	info, err := os.Stat(w.path)
	if err != nil {
		w.logger.Debug("failed to stat file", "path", w.path, "error", err)
		return
	}
	w.size, w.modTime = info.Size(), info.ModTime()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.SettleDelay, w.checkSettled)
}

// checkSettled reports the change once size and modification time have held
// still for a full settle delay.
func (w *Watcher) checkSettled() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}

	info, err := os.Stat(w.path)
	if err == nil && (info.Size() != w.size || !info.ModTime().Equal(w.modTime)) {
		// Still changing, restart timer
		w.size, w.modTime = info.Size(), info.ModTime()
		w.timer = time.AfterFunc(w.opts.SettleDelay, w.checkSettled)
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.mu.Unlock()

	reason := "changed"
	if err != nil {
		reason = "removed"
	}
	w.invalidate(reason)
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Watcher) invalidate(reason string) {
	w.logger.Info("data file changed", "path", w.path, "reason", reason)
	w.target.Invalidate(w.path)
	if w.opts.OnChange != nil {
		w.opts.OnChange(w.path)
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("closing watcher", "error", err)
	}
}
