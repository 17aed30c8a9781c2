package vault

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher converts filesystem notifications for the document folders into
// Events. Editors save in bursts (write, truncate, rename dances), so events
// are debounced per path before delivery.
type Watcher struct {
	watcher *fsnotify.Watcher
	root    string
	folders []string
	sink    func(Event)
	log     *zap.Logger

	mu          sync.Mutex
	pending     map[string]Event
	lastSeen    map[string]time.Time
	debounceDur time.Duration
	running     bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWatcher creates a watcher over the given workspace-relative folders.
// Delivered paths are workspace-relative with forward slashes.
func NewWatcher(root string, folders []string, sink func(Event), log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fsw,
		root:        root,
		folders:     folders,
		sink:        sink,
		log:         log.Named("watcher"),
		pending:     make(map[string]Event),
		lastSeen:    make(map[string]time.Time),
		debounceDur: 250 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine
// until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, folder := range w.folders {
		dir := filepath.Join(w.root, filepath.FromSlash(folder))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			w.log.Warn("could not create watched folder", zap.String("dir", dir), zap.Error(err))
		}
		if err := w.watcher.Add(dir); err != nil {
			w.log.Warn("watch failed", zap.String("dir", dir), zap.Error(err))
			continue
		}
		w.log.Debug("watching", zap.String("dir", dir))
	}

	go w.run(ctx)
	return nil
}

// Stop halts the event loop and closes the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		w.log.Error("close watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	flush := time.NewTicker(100 * time.Millisecond)
	defer flush.Stop()

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
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("watch error", zap.Error(err))
		case <-flush.C:
			w.flushSettled()
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !strings.HasSuffix(ev.Name, ".md") {
		return
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	path := filepath.ToSlash(rel)

	var op Op
	switch {
	case ev.Op&fsnotify.Create != 0:
		op = OpCreated
	case ev.Op&fsnotify.Write != 0:
		op = OpModified
	case ev.Op&fsnotify.Remove != 0, ev.Op&fsnotify.Rename != 0:
		// A rename orphans the old path; the new path arrives as Create.
		op = OpDeleted
	default:
		return
	}

	w.mu.Lock()
	if prev, ok := w.pending[path]; ok && prev.Op == OpCreated && op == OpModified {
		op = OpCreated // keep the stronger classification within a burst
	}
	w.pending[path] = Event{Op: op, Path: path}
	w.lastSeen[path] = time.Now()
	w.mu.Unlock()
}

// flushSettled delivers events whose paths have been quiet past the debounce
// window.
func (w *Watcher) flushSettled() {
	now := time.Now()

	w.mu.Lock()
	var ready []Event
	for path, seen := range w.lastSeen {
		if now.Sub(seen) >= w.debounceDur {
			ready = append(ready, w.pending[path])
			delete(w.pending, path)
			delete(w.lastSeen, path)
		}
	}
	w.mu.Unlock()

	for _, ev := range ready {
		w.log.Debug("change settled", zap.String("op", ev.Op.String()), zap.String("path", ev.Path))
		w.sink(ev)
	}
}
