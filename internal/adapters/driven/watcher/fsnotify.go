// Package watcher provides a driven.FileWatcher backed by fsnotify.
package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Ensure FSNotifyWatcher implements the interface.
var _ driven.FileWatcher = (*FSNotifyWatcher)(nil)

// DefaultQuietPeriod is how long a file must stay untouched before its
// event is emitted. Copying a large PDF produces a create and many writes.
const DefaultQuietPeriod = 500 * time.Millisecond

// DefaultExtensions are the document types the inbox accepts.
var DefaultExtensions = []string{".pdf", ".txt", ".md"}

// ErrAlreadyWatching is returned by a second Watch call.
var ErrAlreadyWatching = errors.New("watcher: already watching")

// Option configures an FSNotifyWatcher.
type Option func(*FSNotifyWatcher)

// WithExtensions replaces the watched extensions. Matching ignores case.
func WithExtensions(exts ...string) Option {
	return func(w *FSNotifyWatcher) {
		if len(exts) > 0 {
			w.extensions = exts
		}
	}
}

// WithQuietPeriod sets the debounce interval.
func WithQuietPeriod(d time.Duration) Option {
	return func(w *FSNotifyWatcher) {
		if d > 0 {
			w.quiet = d
		}
	}
}

// FSNotifyWatcher reports debounced file events for one directory.
type FSNotifyWatcher struct {
	watcher    *fsnotify.Watcher
	extensions []string
	quiet      time.Duration

	mu       sync.Mutex
	watching bool
}

// New creates a file watcher.
func New(opts ...Option) (*FSNotifyWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &FSNotifyWatcher{
		watcher:    fw,
		extensions: DefaultExtensions,
		quiet:      DefaultQuietPeriod,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// pending is the latest operation seen for a path and when it happened.
type pending struct {
	op   driven.FileOperation
	seen time.Time
}

// Watch starts monitoring dir. The channel closes when ctx is done or the
// watcher is stopped.
func (w *FSNotifyWatcher) Watch(ctx context.Context, dir string) (<-chan driven.FileEvent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watching {
		return nil, ErrAlreadyWatching
	}
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}
	w.watching = true

	events := make(chan driven.FileEvent, 100)
	go w.loop(ctx, events)
	return events, nil
}

func (w *FSNotifyWatcher) loop(ctx context.Context, events chan<- driven.FileEvent) {
	defer close(events)

	ticker := time.NewTicker(w.quiet / 2)
	defer ticker.Stop()

	queued := make(map[string]pending)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.isWatchedExtension(event.Name) {
				continue
			}
			op, ok := operation(event.Op)
			if !ok {
				continue
			}
			// A create followed by writes is still a create.
			if prev, exists := queued[event.Name]; exists && prev.op == driven.FileCreated && op == driven.FileModified {
				op = driven.FileCreated
			}
			queued[event.Name] = pending{op: op, seen: time.Now()}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher: %v", err)

		case now := <-ticker.C:
			for _, path := range settled(queued, now, w.quiet) {
				p := queued[path]
				delete(queued, path)
				select {
				case events <- driven.FileEvent{Path: path, Operation: p.op}:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// settled returns the queued paths idle for at least quiet, sorted.
func settled(queued map[string]pending, now time.Time, quiet time.Duration) []string {
	var ready []string
	for path, p := range queued {
		if now.Sub(p.seen) >= quiet {
			ready = append(ready, path)
		}
	}
	slices.Sort(ready)
	return ready
}

func operation(op fsnotify.Op) (driven.FileOperation, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return driven.FileCreated, true
	case op.Has(fsnotify.Write):
		return driven.FileModified, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return driven.FileDeleted, true
	default:
		return 0, false
	}
}

// Stop stops the watcher.
func (w *FSNotifyWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *FSNotifyWatcher) isWatchedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
