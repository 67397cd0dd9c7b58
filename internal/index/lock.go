package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// lockRetryDelay is how often a blocked writer retries the lock.
const lockRetryDelay = 50 * time.Millisecond

// OutputLock serializes writers of one index file across processes.
// The lock file lives in a separate lock directory, named after the
// output's absolute path, so the data directory itself is left untouched.
type OutputLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewOutputLock returns the lock guarding outputPath, kept under lockDir.
func NewOutputLock(lockDir, outputPath string) (*OutputLock, error) {
	abs, err := filepath.Abs(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output path: %w", err)
	}

	sum := sha256.Sum256([]byte(abs))
	path := filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock")

	return &OutputLock{
		path:  path,
		flock: flock.New(path),
	}, nil
}

// Lock blocks until the lock is held or ctx is done.
func (l *OutputLock) Lock(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	ok, err := l.flock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", l.path, err)
	}
	if !ok {
		return fmt.Errorf("failed to acquire lock %s", l.path)
	}

	l.locked = true
	return nil
}

// Unlock releases the lock. Safe to call when not locked.
func (l *OutputLock) Unlock() error {
	if !l.locked {
		return nil
	}

	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *OutputLock) Path() string {
	return l.path
}

// IsLocked reports whether this process holds the lock.
func (l *OutputLock) IsLocked() bool {
	return l.locked
}
