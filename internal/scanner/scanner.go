package scanner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// List returns the entries of opts.Dir whose name ends with opts.Extension.
//
// Matching is an exact, case-sensitive test on the name alone: "a.CSV" and
// "a.csv.bak" are not matches, while a directory or a dangling symlink
// named "x.csv" is. Size and ModTime are filled in when the entry can be
// stat'ed and left zero otherwise. Entries are returned in the order
// os.ReadDir yields them.
//
// Errors from reading the directory are returned unchanged (*fs.PathError)
// so callers can classify them with errors.Is.
func List(ctx context.Context, opts Options) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := opts.Extension
	if ext == "" {
		ext = DefaultExtension
	}

	dirEntries, err := os.ReadDir(opts.Dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if !strings.HasSuffix(name, ext) || excluded(name, opts.Exclude) {
			continue
		}

		entry := Entry{Name: name}
		if info, err := os.Stat(filepath.Join(opts.Dir, name)); err == nil {
			entry.Size = info.Size()
			entry.ModTime = info.ModTime()
		} else {
			slog.Debug("scan_stat_failed",
				slog.String("name", name),
				slog.String("error", err.Error()))
		}
		entries = append(entries, entry)
	}

	slog.Debug("scan_complete",
		slog.String("dir", opts.Dir),
		slog.Int("entries", len(dirEntries)),
		slog.Int("matched", len(entries)))

	return entries, nil
}

// Names returns just the names of entries, preserving order.
func Names(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Matches reports whether name would be listed for ext.
// The watcher uses it to filter events without touching the filesystem.
func Matches(name, ext string) bool {
	if ext == "" {
		ext = DefaultExtension
	}
	return strings.HasSuffix(name, ext)
}

func excluded(name string, exclude []string) bool {
	for _, x := range exclude {
		if name == x {
			return true
		}
	}
	return false
}
