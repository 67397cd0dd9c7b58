package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrClosed is returned when the watcher stops delivering events while
// nobody asked it to stop.
var ErrClosed = errors.New("file watcher closed unexpectedly")

// DirWatcher follows a single directory with fsnotify and emits debounced
// batches of dataset file events.
type DirWatcher struct {
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	dir       string
	opts      Options
	errors    chan error
	stopCh    chan struct{}
	mu        sync.Mutex
	stopped   bool
}

// NewDirWatcher starts watching dir. Events are delivered once Run is called.
func NewDirWatcher(dir string, opts Options) (*DirWatcher, error) {
	opts = opts.WithDefaults()

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve absolute path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(abs); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", abs, err)
	}

	return &DirWatcher{
		fsWatcher: fsw,
		debouncer: NewDebouncer(opts.Debounce, opts.BatchBufferSize),
		dir:       abs,
		opts:      opts,
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
	}, nil
}

// Run pumps fsnotify events into the debouncer until ctx is done or Stop
// is called. It stops the watcher before returning. If fsnotify closes on
// its own, Run returns ErrClosed.
func (w *DirWatcher) Run(ctx context.Context) error {
	defer func() { _ = w.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return w.closedErr(ctx)
			}
			w.handle(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return w.closedErr(ctx)
			}
			w.emitError(err)
		}
	}
}

func (w *DirWatcher) closedErr(ctx context.Context) error {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()

	if stopped || ctx.Err() != nil {
		return nil
	}
	slog.Warn("watch_closed", slog.String("dir", w.dir))
	return ErrClosed
}

func (w *DirWatcher) handle(event fsnotify.Event) {
	// Only direct children are watched.
	if filepath.Dir(event.Name) != w.dir {
		return
	}

	name := filepath.Base(event.Name)
	if !w.opts.wants(name) {
		return
	}

	var op Operation
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpModify
	case event.Has(fsnotify.Remove):
		op = OpDelete
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		return
	}

	slog.Debug("watch_event",
		slog.String("name", name),
		slog.String("op", op.String()))

	w.debouncer.Add(FileEvent{
		Name:      name,
		Operation: op,
		Timestamp: time.Now(),
	})
}

func (w *DirWatcher) emitError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}

	select {
	case w.errors <- err:
	default:
	}
}

// Batches returns the channel of debounced event batches.
// It is closed when the watcher stops.
func (w *DirWatcher) Batches() <-chan []FileEvent {
	return w.debouncer.Output()
}

// Errors returns non-fatal watcher errors. It is closed when the watcher stops.
func (w *DirWatcher) Errors() <-chan error {
	return w.errors
}

// Dir returns the absolute path being watched.
func (w *DirWatcher) Dir() string {
	return w.dir
}

// Stop releases the fsnotify watcher and closes the output channels.
// Safe to call multiple times.
func (w *DirWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}

	w.stopped = true
	close(w.stopCh)
	w.debouncer.Stop()
	err := w.fsWatcher.Close()
	close(w.errors)
	return err
}
