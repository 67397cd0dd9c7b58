package watcher

import (
	"time"

	"github.com/Aman-CERP/cohorts/internal/scanner"
)

// Operation is the kind of change seen for a file.
type Operation int

const (
	// OpCreate indicates a new file appeared.
	OpCreate Operation = iota
	// OpModify indicates an existing file was written or replaced.
	OpModify
	// OpDelete indicates a file was removed.
	OpDelete
	// OpRename indicates a file was renamed away from this name.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is one change to a file in the watched directory.
type FileEvent struct {
	// Name is the base name of the file.
	Name string

	// Operation is the kind of change.
	Operation Operation

	// Timestamp is when the event was detected.
	Timestamp time.Time
}

// Options configures a DirWatcher.
type Options struct {
	// Debounce is the quiet period before a batch is emitted.
	// Default: 500ms
	Debounce time.Duration

	// Extension selects which names produce events.
	// Default: .csv
	Extension string

	// IgnoreNames are names that never produce events, such as the
	// index file the rebuild itself writes.
	IgnoreNames []string

	// BatchBufferSize is how many undelivered batches are kept.
	// Default: 10
	BatchBufferSize int
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		Debounce:        500 * time.Millisecond,
		Extension:       scanner.DefaultExtension,
		BatchBufferSize: 10,
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.Debounce <= 0 {
		o.Debounce = defaults.Debounce
	}
	if o.Extension == "" {
		o.Extension = defaults.Extension
	}
	if o.BatchBufferSize <= 0 {
		o.BatchBufferSize = defaults.BatchBufferSize
	}
	return o
}

// wants reports whether events for name should be kept.
func (o Options) wants(name string) bool {
	if !scanner.Matches(name, o.Extension) {
		return false
	}
	for _, ignored := range o.IgnoreNames {
		if name == ignored {
			return false
		}
	}
	return true
}
