package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	cerrors "github.com/Aman-CERP/cohorts/internal/errors"
	"github.com/Aman-CERP/cohorts/internal/logging"
	"github.com/Aman-CERP/cohorts/internal/scanner"
)

const (
	// DefaultOutputName is the index file written inside the scanned directory.
	DefaultOutputName = "files.json"

	// DefaultParseCacheSize is how many parsed filenames an Indexer remembers
	// between builds.
	DefaultParseCacheSize = 4096
)

// Result is the outcome of one build.
type Result struct {
	// Count is the number of records written.
	Count int

	// OutputPath is the index file that was written.
	OutputPath string

	// Records are the records written, in listing order.
	Records []FileRecord

	// Cached is how many records came from the parse cache of an earlier build.
	Cached int

	// Duration is the wall time of the build.
	Duration time.Duration
}

// Indexer scans a directory and writes its index file.
// An Indexer is reused across rebuilds of the same directory, as watch mode
// does, so names seen before are not parsed again.
type Indexer struct {
	outputName string
	indent     string
	lockDir    string
	parsed     *lru.Cache[string, FileRecord]
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithOutputName sets the index file name (default files.json).
func WithOutputName(name string) Option {
	return func(ix *Indexer) {
		ix.outputName = name
	}
}

// WithIndent sets the JSON indentation (default two spaces).
func WithIndent(indent string) Option {
	return func(ix *Indexer) {
		ix.indent = indent
	}
}

// WithLockDir sets where output locks are kept (default ~/.cohorts/locks).
func WithLockDir(dir string) Option {
	return func(ix *Indexer) {
		ix.lockDir = dir
	}
}

// New creates an Indexer.
func New(opts ...Option) *Indexer {
	ix := &Indexer{
		outputName: DefaultOutputName,
		indent:     "  ",
		lockDir:    filepath.Join(logging.StateDir(), "locks"),
	}
	ix.parsed, _ = lru.New[string, FileRecord](DefaultParseCacheSize)
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// OutputPath returns the index file path for dir.
func (ix *Indexer) OutputPath(dir string) string {
	return filepath.Join(dir, ix.outputName)
}

// BuildIndex builds dir's index with default settings and returns the record count.
func BuildIndex(ctx context.Context, dir string) (int, error) {
	res, err := New().Build(ctx, dir)
	if err != nil {
		return 0, err
	}
	return res.Count, nil
}

// Build lists dir, parses every .csv name into a FileRecord and writes the
// records to the index file in dir, replacing what was there.
//
// The run is all or nothing from the caller's view: any listing or write
// failure is returned. A failure part way through the write can still
// leave a truncated index file behind.
func (ix *Indexer) Build(ctx context.Context, dir string) (*Result, error) {
	start := time.Now()

	if err := checkDir(dir); err != nil {
		return nil, err
	}

	entries, err := scanner.List(ctx, scanner.Options{
		Dir:       dir,
		Extension: Extension,
		Exclude:   []string{ix.outputName},
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, classifyReadErr(dir, err)
	}

	records := make([]FileRecord, 0, len(entries))
	cached := 0
	for _, e := range entries {
		rec, hit := ix.parse(e.Name)
		if hit {
			cached++
		}
		records = append(records, rec)
	}

	outputPath := ix.OutputPath(dir)
	if err := ix.write(ctx, outputPath, records); err != nil {
		return nil, err
	}

	res := &Result{
		Count:      len(records),
		OutputPath: outputPath,
		Records:    records,
		Cached:     cached,
		Duration:   time.Since(start),
	}

	slog.Debug("index_written",
		slog.String("path", outputPath),
		slog.Int("count", res.Count),
		slog.Int("cached", res.Cached),
		slog.Duration("duration", res.Duration))

	return res, nil
}

// parse returns the record for name, from the cache when an earlier build
// already parsed it.
func (ix *Indexer) parse(name string) (FileRecord, bool) {
	if rec, ok := ix.parsed.Get(name); ok {
		return rec, true
	}
	rec := ParseFilename(name)
	ix.parsed.Add(name, rec)
	return rec, false
}

// write serializes records to path, under the output lock when one can be
// taken.
func (ix *Indexer) write(ctx context.Context, path string, records []FileRecord) error {
	lock, err := ix.lock(ctx, path)
	if err != nil {
		return err
	}
	if lock != nil {
		defer func() {
			if uerr := lock.Unlock(); uerr != nil {
				slog.Warn("index_unlock_failed", slog.String("error", uerr.Error()))
			}
		}()
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return classifyWriteErr(path, err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", ix.indent)
	enc.SetEscapeHTML(false)
	encErr := enc.Encode(records)
	closeErr := f.Close()

	if encErr != nil {
		return classifyWriteErr(path, encErr)
	}
	if closeErr != nil {
		return classifyWriteErr(path, closeErr)
	}
	return nil
}

// lock takes the output lock in the lock directory, falling back to the
// system temp directory. It returns a nil lock when neither is usable; the
// write then goes ahead unlocked. Only cancellation is an error.
func (ix *Indexer) lock(ctx context.Context, path string) (*OutputLock, error) {
	for _, dir := range []string{ix.lockDir, filepath.Join(os.TempDir(), "cohorts-locks")} {
		lock, err := NewOutputLock(dir, path)
		if err == nil {
			err = lock.Lock(ctx)
		}
		if err == nil {
			return lock, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		slog.Debug("index_lock_unavailable",
			slog.String("lock_dir", dir),
			slog.String("error", err.Error()))
	}
	return nil, nil
}

// Load reads an index file written by Build.
func Load(path string) ([]FileRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, cerrors.New(cerrors.ErrCodeIndexNotFound,
				fmt.Sprintf("index not found: %s", path), err).
				WithSuggestion("Run 'cohorts index' to build it")
		case errors.Is(err, fs.ErrPermission):
			return nil, cerrors.New(cerrors.ErrCodePermissionDenied,
				fmt.Sprintf("permission denied reading %s", path), err)
		default:
			return nil, cerrors.New(cerrors.ErrCodeReadFailed,
				fmt.Sprintf("cannot read %s", path), err)
		}
	}

	var records []FileRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, cerrors.New(cerrors.ErrCodeIndexCorrupt,
			fmt.Sprintf("index is not a record list: %s", path), err).
			WithSuggestion("Rebuild it with 'cohorts index'")
	}
	if records == nil {
		records = []FileRecord{}
	}
	return records, nil
}

// checkDir reports why dir cannot be indexed, if it cannot.
func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return classifyReadErr(dir, err)
	}
	if !info.IsDir() {
		return cerrors.New(cerrors.ErrCodeNotADirectory,
			fmt.Sprintf("not a directory: %s", dir),
			&fs.PathError{Op: "readdir", Path: dir, Err: syscall.ENOTDIR})
	}
	return nil
}

func classifyReadErr(dir string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cerrors.New(cerrors.ErrCodeDirNotFound,
			fmt.Sprintf("data directory not found: %s", dir), err).
			WithSuggestion("Create the directory or point --dir at an existing one")
	case errors.Is(err, fs.ErrPermission):
		return cerrors.New(cerrors.ErrCodePermissionDenied,
			fmt.Sprintf("permission denied listing %s", dir), err)
	case errors.Is(err, syscall.ENOTDIR):
		return cerrors.New(cerrors.ErrCodeNotADirectory,
			fmt.Sprintf("not a directory: %s", dir), err)
	default:
		return cerrors.New(cerrors.ErrCodeReadFailed,
			fmt.Sprintf("cannot list %s", dir), err)
	}
}

func classifyWriteErr(path string, err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return cerrors.New(cerrors.ErrCodePermissionDenied,
			fmt.Sprintf("permission denied writing %s", path), err)
	}
	return cerrors.New(cerrors.ErrCodeWriteFailed,
		fmt.Sprintf("cannot write %s", path), err).
		WithDetail("path", path)
}
