// Package watch re-runs a callback whenever a local kernel file changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/kfmt/internal/checksum"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 300 * time.Millisecond

// Func is called with the watched path after it changes.
type Func func(ctx context.Context, path string) error

// Watcher watches one file through its parent directory, so editors that
// save by rename are followed.
type Watcher struct {
	path     string
	fn       Func
	logger   *slog.Logger
	debounce time.Duration
	last     string // checksum after the last fn run
}

// New returns a watcher calling fn for path.
func New(path string, fn Func, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve path: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{path: abs, fn: fn, logger: logger, debounce: DefaultDebounce}, nil
}

// SetDebounce overrides DefaultDebounce.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run calls fn once, then again after every change until ctx is cancelled.
// Changes whose content matches what fn last left behind are ignored, so the
// formatter's own write does not retrigger it. Errors from fn are logged and
// do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch: add %s: %w", filepath.Dir(w.path), err)
	}
	w.logger.Info("watcher: started", slog.String("path", w.path))

	w.trigger(ctx)

	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerCh = timer.C
		} else {
			timer.Reset(w.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			w.trigger(ctx)

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Name != w.path || ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.logger.Debug("watcher: event", slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (w *Watcher) trigger(ctx context.Context) {
	sum, err := w.sum()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			w.logger.Warn("watcher: read failed", slog.String("path", w.path), slog.String("error", err.Error()))
		}
		return
	}
	if sum == w.last {
		w.logger.Debug("watcher: unchanged", slog.String("path", w.path))
		return
	}

	if err := w.fn(ctx, w.path); err != nil {
		w.logger.Error("watcher: run failed", slog.String("path", w.path), slog.String("error", err.Error()))
	}

	if sum, err := w.sum(); err == nil {
		w.last = sum
	}
}

func (w *Watcher) sum() (string, error) {
	return checksum.File(w.path)
}
