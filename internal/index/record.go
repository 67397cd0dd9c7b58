// Package index builds the dataset file index: it parses the structured
// fields out of each dataset filename and writes them as one JSON array.
package index

import (
	"path/filepath"
	"strings"
)

const (
	// Extension is the dataset file extension stripped to form the stem.
	Extension = ".csv"

	// Separator splits a stem into tokens.
	Separator = "_"
)

// FileRecord is the index entry for one dataset file.
// All fields come from the filename; none are validated.
type FileRecord struct {
	Filename string `json:"filename"`
	Year     string `json:"year"`
	District string `json:"district"`
	Subject  string `json:"subject"`
}

// Stem returns name without its trailing .csv.
func Stem(name string) string {
	return strings.TrimSuffix(name, Extension)
}

// ParseFilename decomposes <year>_<district tokens...>_<subject>.csv.
//
// Year is the first token and subject the last; district is the tokens
// in between joined with single spaces. A stem with one token yields
// year == subject and an empty district; two tokens yield an empty district.
func ParseFilename(name string) FileRecord {
	tokens := strings.Split(Stem(name), Separator)

	rec := FileRecord{
		Filename: name,
		Year:     tokens[0],
		Subject:  tokens[len(tokens)-1],
	}
	if len(tokens) > 2 {
		rec.District = strings.Join(tokens[1:len(tokens)-1], " ")
	}
	return rec
}

// FilenameFor rebuilds a conventional filename from its fields, turning
// district spaces back into separators. Filenames whose district tokens
// contained spaces do not survive the round trip; use Lookup for those.
func FilenameFor(year, district, subject string) string {
	parts := []string{year}
	if district != "" {
		parts = append(parts, strings.ReplaceAll(district, " ", Separator))
	}
	parts = append(parts, subject)
	return strings.Join(parts, Separator) + Extension
}

// PathFor joins dir with FilenameFor(year, district, subject).
func PathFor(dir, year, district, subject string) string {
	return filepath.Join(dir, FilenameFor(year, district, subject))
}

// Lookup finds the record with the given fields.
func Lookup(records []FileRecord, year, district, subject string) (FileRecord, bool) {
	for _, r := range records {
		if r.Year == year && r.District == district && r.Subject == subject {
			return r, true
		}
	}
	return FileRecord{}, false
}
