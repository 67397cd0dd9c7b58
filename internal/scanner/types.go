// Package scanner lists the dataset files of a directory.
// It reads a single level, keeps entries whose name carries an exact
// extension suffix and reports them in directory-listing order.
package scanner

import "time"

// DefaultExtension is the dataset file extension.
const DefaultExtension = ".csv"

// Entry describes one matching directory entry.
type Entry struct {
	Name    string    // Base name, including extension
	Size    int64     // Size in bytes, zero if the entry could not be stat'ed
	ModTime time.Time // Last modification time, zero if unknown
}

// Options configures a listing.
type Options struct {
	// Dir is the directory to list.
	Dir string

	// Extension is the case-sensitive suffix an entry must end with.
	// Empty means DefaultExtension.
	Extension string

	// Exclude names entries to skip even if they match, e.g. the index file.
	Exclude []string
}
