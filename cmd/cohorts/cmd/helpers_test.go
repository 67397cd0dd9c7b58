package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// scenarioFiles is the data directory used across command tests.
var scenarioFiles = []string{
	"2021_Springfield_Math.csv",
	"2022_North Lake Unified_Reading.csv",
	"notes.txt",
}

// isolate points HOME and config lookups at temp dirs, clears COHORTS_*
// variables and changes into a fresh working directory, which it returns.
func isolate(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("NO_COLOR", "1")
	for _, name := range []string{"DATA_DIR", "OUTPUT_NAME", "LOG_LEVEL", "WATCH_DEBOUNCE", "SQLITE_PATH"} {
		t.Setenv("COHORTS_"+name, "")
	}

	wd := t.TempDir()
	t.Chdir(wd)
	return wd
}

// writeData creates data/ under the working directory with the given files.
func writeData(t *testing.T, names ...string) string {
	t.Helper()

	dir := filepath.Join(".", "data")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("SchoolYear,Score\n"), 0o644))
	}
	return dir
}

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
