package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/Aman-CERP/cohorts/internal/errors"
	"github.com/Aman-CERP/cohorts/internal/index"
)

func records(names ...string) []index.FileRecord {
	out := make([]index.FileRecord, len(names))
	for i, n := range names {
		out[i] = index.ParseFilename(n)
	}
	return out
}

func TestSQLiteStore_ReplaceAndRead(t *testing.T) {
	// Given: an in-memory store
	s, err := OpenSQLite("")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	// When: records are stored
	want := records("2022_North Lake Unified_Reading.csv", "2021_Springfield_Math.csv")
	require.NoError(t, s.Replace(context.Background(), want))

	// Then: they read back in index order
	got, err := s.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLiteStore_ReplaceDropsOldRows(t *testing.T) {
	s, err := OpenSQLite("")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Replace(context.Background(), records("a_x_Math.csv", "b_y_ELA.csv")))
	require.NoError(t, s.Replace(context.Background(), records("2020_Science.csv")))

	got, err := s.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, records("2020_Science.csv"), got)

	require.NoError(t, s.Replace(context.Background(), nil))
	got, err = s.Records(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStore_FailedReplaceKeepsPreviousRows(t *testing.T) {
	s, err := OpenSQLite("")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Replace(context.Background(), records("2020_Science.csv")))

	// Duplicate filenames violate the primary key.
	err = s.Replace(context.Background(), records("2021_A_Math.csv", "2021_A_Math.csv"))
	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeStoreFailed, cerrors.GetCode(err))

	got, err := s.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, records("2020_Science.csv"), got)
}

func TestSQLiteStore_PersistsToFile(t *testing.T) {
	// Given: a database file in a directory that does not exist yet
	path := filepath.Join(t.TempDir(), "nested", "files.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Replace(context.Background(), records("2021_Springfield_Math.csv")))
	require.NoError(t, s.Close())

	// Then: plain SQL sees the table
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var district string
	var position int
	err = db.QueryRow(`SELECT district, position FROM files WHERE filename = ?`, "2021_Springfield_Math.csv").
		Scan(&district, &position)
	require.NoError(t, err)
	assert.Equal(t, "Springfield", district)
	assert.Equal(t, 0, position)

	// And: reopening keeps the rows
	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, path, s.Path())
}

func TestSQLiteStore_UnusablePath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := OpenSQLite(filepath.Join(blocker, "files.db"))

	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeStoreFailed, cerrors.GetCode(err))
}

func TestSQLiteStore_Closed(t *testing.T) {
	s, err := OpenSQLite("")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.Error(t, s.Replace(context.Background(), nil))
	_, err = s.Records(context.Background())
	assert.Error(t, err)
	_, err = s.Count(context.Background())
	assert.Error(t, err)
}
