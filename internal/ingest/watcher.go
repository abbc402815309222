// Package ingest watches a directory for new recordings and hands each one,
// once it has stopped changing, to a handler.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Handler processes one settled recording file.
type Handler func(ctx context.Context, path string) error

// Stats tracks watcher activity.
type Stats struct {
	Events    int
	Handled   int
	Errors    int
	LastPath  string
	LastEvent time.Time
}

// Watcher watches one directory for *.jsonl recordings.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	dir         string
	handle      Handler
	log         *zap.Logger
	debounceDur time.Duration
	pollDur     time.Duration
	backfill    bool
	pending     map[string]time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	stopped     bool
	stats       Stats
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a file must be quiet before it is handled.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounceDur = d
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// WithBackfill queues recordings already present when the watcher starts.
func WithBackfill() Option {
	return func(w *Watcher) { w.backfill = true }
}

// NewWatcher creates a watcher for dir. The directory is created on Start.
func NewWatcher(dir string, handle Handler, opts ...Option) (*Watcher, error) {
	if handle == nil {
		return nil, fmt.Errorf("ingest: nil handler")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher:     fw,
		dir:         dir,
		handle:      handle,
		log:         zap.NewNop(),
		debounceDur: 500 * time.Millisecond,
		pollDur:     100 * time.Millisecond,
		pending:     make(map[string]time.Time),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.debounceDur < w.pollDur {
		w.pollDur = w.debounceDur
	}
	return w, nil
}

// Start begins watching in a background goroutine. A stopped watcher cannot
// be restarted.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	if w.stopped {
		w.mu.Unlock()
		return fmt.Errorf("ingest: watcher already stopped")
	}
	w.running = true
	w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		w.abort()
		return fmt.Errorf("create watch dir: %w", err)
	}
	if err := w.watcher.Add(w.dir); err != nil {
		w.abort()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.log.Info("watching for recordings", zap.String("dir", w.dir))

	if w.backfill {
		w.queueExisting()
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	if wasRunning {
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.log.Warn("close fsnotify watcher", zap.Error(err))
	}
}

// Done is closed when the event loop exits.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

// Stats returns a copy of the activity counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) abort() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.pollDur)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-ticker.C:
			w.processSettled(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !isRecording(event.Name) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	w.stats.Events++
	w.stats.LastPath = event.Name
	w.stats.LastEvent = now
	w.pending[event.Name] = now
}

// processSettled handles files quiet for at least the debounce window,
// oldest path first.
func (w *Watcher) processSettled(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounceDur {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()
	sort.Strings(ready)

	for _, path := range ready {
		if ctx.Err() != nil {
			return
		}
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue // removed before it settled
		}
		err := w.handle(ctx, path)
		w.mu.Lock()
		if err != nil {
			w.stats.Errors++
		} else {
			w.stats.Handled++
		}
		w.mu.Unlock()
		if err != nil {
			w.log.Warn("recording failed", zap.String("path", path), zap.Error(err))
		}
	}
}

func (w *Watcher) queueExisting() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.log.Warn("scan existing recordings", zap.Error(err))
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	// already settled
	past := time.Now().Add(-w.debounceDur)
	for _, e := range entries {
		path := filepath.Join(w.dir, e.Name())
		if !e.IsDir() && isRecording(path) {
			w.pending[path] = past
		}
	}
}

// isRecording matches plain and zstd-compressed recordings, skipping
// hidden files such as editor swap files.
func isRecording(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.HasSuffix(base, ".jsonl") || strings.HasSuffix(base, ".jsonl.zst")
}
