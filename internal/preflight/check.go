package preflight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/cohorts/internal/index"
	"github.com/Aman-CERP/cohorts/internal/scanner"
)

// CheckStatus represents the result of a preflight check.
type CheckStatus int

const (
	// StatusPass indicates the check passed successfully.
	StatusPass CheckStatus = iota
	// StatusWarn indicates a non-critical warning.
	StatusWarn
	// StatusFail indicates the check failed.
	StatusFail
)

// String returns the string representation of a CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the status by name in JSON output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult holds the result of a single preflight check.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Required bool        `json:"required"`
}

// IsCritical returns true if this is a required check that failed.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Checker performs preflight validation checks.
type Checker struct {
	verbose      bool
	output       io.Writer
	outputName   string
	minDiskBytes uint64
}

// Option configures a Checker.
type Option func(*Checker)

// WithVerbose enables verbose output.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) {
		c.verbose = verbose
	}
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		c.output = w
	}
}

// WithOutputName sets the index file name checked by CheckIndexFile.
func WithOutputName(name string) Option {
	return func(c *Checker) {
		c.outputName = name
	}
}

// WithMinDiskBytes sets the free space below which CheckDiskSpace warns.
func WithMinDiskBytes(n uint64) Option {
	return func(c *Checker) {
		c.minDiskBytes = n
	}
}

// New creates a new Checker with the given options.
func New(opts ...Option) *Checker {
	c := &Checker{
		output:       os.Stdout,
		outputName:   index.DefaultOutputName,
		minDiskBytes: MinDiskSpaceBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll runs all checks against dir. When dir is not a usable directory
// the remaining checks are skipped.
func (c *Checker) RunAll(ctx context.Context, dir string) []CheckResult {
	results := []CheckResult{c.CheckDataDir(dir)}
	if results[0].Status == StatusFail {
		return results
	}

	for _, check := range []func(string) CheckResult{
		c.CheckReadable,
		c.CheckWritePermissions,
		c.CheckDiskSpace,
		c.CheckIndexFile,
	} {
		if ctx.Err() != nil {
			break
		}
		results = append(results, check(dir))
	}
	return results
}

// HasCriticalFailures returns true if any required check failed.
func (c *Checker) HasCriticalFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.IsCritical() {
			return true
		}
	}
	return false
}

// SummaryStatus returns a summary status string for the results.
func (c *Checker) SummaryStatus(results []CheckResult) string {
	hasWarnings := false
	hasCriticalFailure := false

	for _, r := range results {
		if r.IsCritical() {
			hasCriticalFailure = true
		}
		if r.Status == StatusWarn || (r.Status == StatusFail && !r.Required) {
			hasWarnings = true
		}
	}

	if hasCriticalFailure {
		return "failed"
	}
	if hasWarnings {
		return "ready_with_warnings"
	}
	return "ready"
}

// PrintResults prints check results to the configured output.
func (c *Checker) PrintResults(results []CheckResult) {
	_, _ = fmt.Fprintln(c.output, "Cohorts Data Check")
	_, _ = fmt.Fprintln(c.output, "==================")
	_, _ = fmt.Fprintln(c.output)

	for _, r := range results {
		_, _ = fmt.Fprintf(c.output, "[%s] %s: %s\n", r.Status, r.Name, r.Message)
		if c.verbose && r.Details != "" {
			_, _ = fmt.Fprintf(c.output, "      %s\n", r.Details)
		}
	}

	_, _ = fmt.Fprintln(c.output)
	_, _ = fmt.Fprintf(c.output, "Status: %s\n", strings.ToUpper(c.SummaryStatus(results)))

	var warnings, errs []string
	for _, r := range results {
		if r.IsCritical() {
			errs = append(errs, r.Name+": "+r.Message)
		} else if r.Status != StatusPass {
			warnings = append(warnings, r.Name+": "+r.Message)
		}
	}

	if len(errs) > 0 {
		_, _ = fmt.Fprintln(c.output)
		_, _ = fmt.Fprintf(c.output, "%d error(s):\n", len(errs))
		for _, e := range errs {
			_, _ = fmt.Fprintf(c.output, "  - %s\n", e)
		}
	}

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(c.output)
		_, _ = fmt.Fprintf(c.output, "%d warning(s):\n", len(warnings))
		for _, w := range warnings {
			_, _ = fmt.Fprintf(c.output, "  - %s\n", w)
		}
	}
}

// CheckDataDir checks that dir exists and is a directory.
func (c *Checker) CheckDataDir(dir string) CheckResult {
	result := CheckResult{
		Name:     "data_dir",
		Required: true,
		Details:  dir,
	}

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s does not exist", dir)
	case err != nil:
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot stat %s: %v", dir, err)
	case !info.IsDir():
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s is not a directory", dir)
	default:
		result.Status = StatusPass
		result.Message = "OK"
	}
	return result
}

// CheckReadable checks that dir can be listed and reports how many
// dataset files it holds.
func (c *Checker) CheckReadable(dir string) CheckResult {
	result := CheckResult{
		Name:     "readable",
		Required: true,
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot list directory: %v", err)
		return result
	}

	n := 0
	for _, e := range entries {
		if scanner.Matches(e.Name(), index.Extension) {
			n++
		}
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("OK (%d dataset files)", n)
	return result
}

// CheckWritePermissions checks that files can be created in dir.
func (c *Checker) CheckWritePermissions(dir string) CheckResult {
	result := CheckResult{
		Name:     "write_permissions",
		Required: true,
	}

	f, err := os.CreateTemp(dir, ".cohorts-preflight-*")
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("permission denied: %v", err)
		return result
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)

	result.Status = StatusPass
	result.Message = "OK"
	return result
}

// CheckIndexFile checks that an existing index file parses. A missing
// index is fine; it has simply not been built yet.
func (c *Checker) CheckIndexFile(dir string) CheckResult {
	path := filepath.Join(dir, c.outputName)
	result := CheckResult{
		Name:    "index_file",
		Details: path,
	}

	records, err := index.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		result.Status = StatusPass
		result.Message = "not built yet"
	case err != nil:
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("unreadable, rebuild with 'cohorts index': %v", err)
	default:
		result.Status = StatusPass
		result.Message = fmt.Sprintf("OK (%d records)", len(records))
	}
	return result
}
