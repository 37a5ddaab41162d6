// Package watcher monitors the résumé file and triggers warm reloads
// off the request path.
//
// The cache layers already invalidate on modification time per
// request; the watcher only warms them early so the first query after
// a change does not pay the reload cost. It watches the parent
// directory (editors typically replace files rather than write in
// place) and falls back to mtime polling when a native watch cannot
// be established.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the polling fallback interval.
const DefaultPollInterval = 5 * time.Second

// Watcher watches a single file for content changes.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	onChange     func()

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher that invokes onChange after the file changes,
// debounced by the given window.
func New(path string, debounce time.Duration, onChange func()) *Watcher {
	return &Watcher{
		path:         path,
		debounce:     debounce,
		pollInterval: DefaultPollInterval,
		onChange:     onChange,
	}
}

// Run watches until the context is canceled. It never returns an
// error to the caller: a failed native watch degrades to polling, and
// a failed poll setup just logs.
func (w *Watcher) Run(ctx context.Context) {
	fsw, err := fsnotify.NewWatcher()
	if err == nil {
		err = fsw.Add(filepath.Dir(w.path))
	}
	if err != nil {
		slog.Warn("file watch unavailable, falling back to polling",
			slog.String("path", w.path),
			slog.String("error", err.Error()))
		if fsw != nil {
			_ = fsw.Close()
		}
		w.poll(ctx)
		return
	}
	defer func() { _ = fsw.Close() }()

	slog.Info("watching document", slog.String("path", w.path))
	base := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.schedule()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

// schedule arms (or re-arms) the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onChange)
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// poll checks the file's modification time at a fixed interval.
func (w *Watcher) poll(ctx context.Context) {
	var lastMod time.Time
	if stat, err := os.Stat(w.path); err == nil {
		lastMod = stat.ModTime()
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return
		case <-ticker.C:
			stat, err := os.Stat(w.path)
			if err != nil {
				continue
			}
			if !stat.ModTime().Equal(lastMod) {
				lastMod = stat.ModTime()
				w.schedule()
			}
		}
	}
}
