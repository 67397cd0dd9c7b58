package index

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputLock_PathIsStablePerOutput(t *testing.T) {
	lockDir := t.TempDir()

	a1, err := NewOutputLock(lockDir, "data/files.json")
	require.NoError(t, err)
	a2, err := NewOutputLock(lockDir, filepath.Join(".", "data", "files.json"))
	require.NoError(t, err)
	b, err := NewOutputLock(lockDir, "other/files.json")
	require.NoError(t, err)

	assert.Equal(t, a1.Path(), a2.Path())
	assert.NotEqual(t, a1.Path(), b.Path())
	assert.Equal(t, lockDir, filepath.Dir(a1.Path()))
}

func TestOutputLock_SecondHolderWaits(t *testing.T) {
	lockDir := filepath.Join(t.TempDir(), "locks")

	first, err := NewOutputLock(lockDir, "data/files.json")
	require.NoError(t, err)
	require.NoError(t, first.Lock(context.Background()))
	assert.True(t, first.IsLocked())

	second, err := NewOutputLock(lockDir, "data/files.json")
	require.NoError(t, err)

	// While held, a bounded wait times out
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	err = second.Lock(ctx)
	require.Error(t, err)
	assert.False(t, second.IsLocked())

	// Once released, it succeeds
	require.NoError(t, first.Unlock())
	require.NoError(t, second.Lock(context.Background()))
	require.NoError(t, second.Unlock())

	// Unlocking twice is harmless
	assert.NoError(t, second.Unlock())
}
