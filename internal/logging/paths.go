package logging

import (
	"os"
	"path/filepath"
)

// StateDir returns the per-user state directory (~/.cohorts).
// Falls back to the temp directory if the home directory is unavailable.
func StateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".cohorts")
	}
	return filepath.Join(home, ".cohorts")
}

// DefaultLogDir returns the default log directory (~/.cohorts/logs/).
func DefaultLogDir() string {
	return filepath.Join(StateDir(), "logs")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "cohorts.log")
}
