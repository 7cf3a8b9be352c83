// Package watcher ingests RFP files dropped into an inbox directory.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driving"
	"github.com/custodia-labs/rfp-analyst/internal/logger"
)

// DefaultDebounce is how long a file must be quiet before it is ingested.
const DefaultDebounce = 500 * time.Millisecond

// ErrNoExtensions is returned when the watcher has nothing to watch for.
var ErrNoExtensions = errors.New("watcher: no file extensions to watch")

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithExistingFiles makes Run ingest files already in the directory before
// watching for new ones.
func WithExistingFiles() Option {
	return func(w *Watcher) {
		w.scanExisting = true
	}
}

// Watcher feeds files created or rewritten in a directory to an IngestService.
// Bursts of write events for one path collapse into a single ingestion.
type Watcher struct {
	ingest       driving.IngestService
	extensions   map[string]bool
	debounce     time.Duration
	scanExisting bool

	mu      sync.Mutex
	pending map[string]*time.Timer
	timers  sync.WaitGroup
}

// New creates a Watcher for files with one of extensions (".pdf", ".docx", ...).
func New(ingest driving.IngestService, extensions []string, opts ...Option) (*Watcher, error) {
	if ingest == nil {
		return nil, fmt.Errorf("watcher: %w: ingest service is required", domain.ErrInvalidInput)
	}
	if len(extensions) == 0 {
		return nil, ErrNoExtensions
	}

	w := &Watcher{
		ingest:     ingest,
		extensions: make(map[string]bool, len(extensions)),
		debounce:   DefaultDebounce,
		pending:    make(map[string]*time.Timer),
	}
	for _, ext := range extensions {
		w.extensions[strings.ToLower(ext)] = true
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run watches dir until ctx is cancelled. Per-file ingestion failures are
// logged and never stop the watcher.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watcher: watching %s: %w", dir, err)
	}
	logger.Info("watching %s for %d file types", dir, len(w.extensions))

	if w.scanExisting {
		if err := w.scan(ctx, dir); err != nil {
			return err
		}
	}
	return w.watch(ctx, fsw.Events, fsw.Errors)
}

// watch dispatches events until ctx is cancelled or a channel closes. No
// debounce callback outlives it.
func (w *Watcher) watch(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	ready := make(chan string, 16)
	done := make(chan struct{})
	defer func() {
		close(done)
		w.stopPending()
		w.timers.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !w.isWatched(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.schedule(event.Name, ready, done)
		case path := <-ready:
			w.Process(ctx, path)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("watcher: %v", err)
		}
	}
}

// Process reads and ingests one file. Duplicates are reported at info level.
func (w *Watcher) Process(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("watcher: reading %s: %v", path, err)
		return
	}
	if len(data) == 0 {
		logger.Debug("watcher: skipping empty file %s", path)
		return
	}

	doc, err := w.ingest.Ingest(ctx, filepath.Base(path), data)
	switch {
	case errors.Is(err, domain.ErrDuplicateContent):
		logger.Info("watcher: %s already ingested", filepath.Base(path))
	case err != nil:
		logger.Error("watcher: ingesting %s: %v", path, err)
	default:
		logger.Info("watcher: ingested %s as %s (%d chunks)", doc.Filename, doc.ID, doc.ChunkCount)
	}
}

// schedule (re)arms the debounce timer for path. Every armed timer is
// counted in w.timers until it fires or is stopped.
func (w *Watcher) schedule(path string, ready chan<- string, done <-chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok && t.Stop() {
		w.timers.Done()
	}
	w.timers.Add(1)
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		defer w.timers.Done()

		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case ready <- path:
		case <-done:
		}
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		if t.Stop() {
			w.timers.Done()
		}
		delete(w.pending, path)
	}
}

func (w *Watcher) scan(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("watcher: listing %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !w.isWatched(e.Name()) {
			continue
		}
		if ctx.Err() != nil {
			return nil
		}
		w.Process(ctx, filepath.Join(dir, e.Name()))
	}
	return nil
}

func (w *Watcher) isWatched(path string) bool {
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}
