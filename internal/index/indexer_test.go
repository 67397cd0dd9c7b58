package index

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/Aman-CERP/cohorts/internal/errors"
)

func newTestIndexer(t *testing.T, opts ...Option) *Indexer {
	t.Helper()
	return New(append([]Option{WithLockDir(t.TempDir())}, opts...)...)
}

func makeDataDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("SchoolYear,Score\n"), 0o644))
	}
	return dir
}

func TestBuild_Scenario(t *testing.T) {
	// Given: two dataset files and a stray text file
	dir := makeDataDir(t,
		"2021_Springfield_Math.csv",
		"2022_North Lake Unified_Reading.csv",
		"notes.txt",
	)

	// When: building the index
	res, err := newTestIndexer(t).Build(context.Background(), dir)
	require.NoError(t, err)

	// Then: two records are reported and written
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, filepath.Join(dir, "files.json"), res.OutputPath)

	want := []FileRecord{
		{Filename: "2021_Springfield_Math.csv", Year: "2021", District: "Springfield", Subject: "Math"},
		{Filename: "2022_North Lake Unified_Reading.csv", Year: "2022", District: "North Lake Unified", Subject: "Reading"},
	}
	assert.Equal(t, want, res.Records)

	loaded, err := Load(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, want, loaded)
	assert.Len(t, loaded, res.Count)
}

func TestBuild_WritesIndentedObjectsWithFourKeys(t *testing.T) {
	dir := makeDataDir(t, "2020_Science.csv")

	_, err := newTestIndexer(t).Build(context.Background(), dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "files.json"))
	require.NoError(t, err)

	expected := "[\n" +
		"  {\n" +
		"    \"filename\": \"2020_Science.csv\",\n" +
		"    \"year\": \"2020\",\n" +
		"    \"district\": \"\",\n" +
		"    \"subject\": \"Science\"\n" +
		"  }\n" +
		"]\n"
	assert.Equal(t, expected, string(data))

	var raw []map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Len(t, raw[0], 4)
}

func TestBuild_EmptyDirectoryWritesEmptyArray(t *testing.T) {
	dir := t.TempDir()

	res, err := newTestIndexer(t).Build(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Count)
	data, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestBuild_OverwritesPreviousIndex(t *testing.T) {
	dir := makeDataDir(t, "2020_Science.csv")
	out := filepath.Join(dir, "files.json")
	require.NoError(t, os.WriteFile(out, []byte(`[{"filename":"stale.csv"},{"filename":"older.csv"},{"x":1}]`), 0o644))

	_, err := newTestIndexer(t).Build(context.Background(), dir)
	require.NoError(t, err)

	loaded, err := Load(out)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "2020_Science.csv", loaded[0].Filename)
}

func TestBuild_RerunIsByteIdentical(t *testing.T) {
	dir := makeDataDir(t,
		"2019-2020_Academy_of_Southfield_ELA.csv",
		"2019-2020_Academy_of_Southfield_Mathematics.csv",
		"2020_Science.csv",
	)
	ix := newTestIndexer(t)

	_, err := ix.Build(context.Background(), dir)
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(dir, "files.json"))
	require.NoError(t, err)

	_, err = ix.Build(context.Background(), dir)
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(dir, "files.json"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuild_CustomOutputNameAndIndent(t *testing.T) {
	dir := makeDataDir(t, "2020_Science.csv")
	ix := newTestIndexer(t, WithOutputName("index.json"), WithIndent("\t"))

	res, err := ix.Build(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "index.json"), res.OutputPath)
	data, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n\t{\n\t\t\"filename\"")
	assert.NoFileExists(t, filepath.Join(dir, "files.json"))
}

func TestBuild_DoesNotEscapeHTMLCharacters(t *testing.T) {
	dir := makeDataDir(t, "2020_A&B <Co>_Math.csv")

	_, err := newTestIndexer(t).Build(context.Background(), dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "files.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"district": "A&B <Co>"`)
}

func TestBuild_MissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	_, err := newTestIndexer(t).Build(context.Background(), dir)

	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeDirNotFound, cerrors.GetCode(err))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.NoFileExists(t, filepath.Join(dir, "files.json"))
}

func TestBuild_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := newTestIndexer(t).Build(context.Background(), file)

	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeNotADirectory, cerrors.GetCode(err))
}

func TestBuild_UnwritableOutput(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	dir := makeDataDir(t, "2020_Science.csv")
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	_, err := newTestIndexer(t).Build(context.Background(), dir)

	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodePermissionDenied, cerrors.GetCode(err))
	assert.True(t, errors.Is(err, fs.ErrPermission))
}

func TestBuild_UnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	dir := makeDataDir(t, "2020_Science.csv")
	require.NoError(t, os.Chmod(dir, 0o311))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	_, err := newTestIndexer(t).Build(context.Background(), dir)

	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodePermissionDenied, cerrors.GetCode(err))
}

func TestBuild_CancelledContextWritesNothing(t *testing.T) {
	dir := makeDataDir(t, "2020_Science.csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestIndexer(t).Build(ctx, dir)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(dir, "files.json"))
}

func TestBuildIndex_ReportsCount(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := makeDataDir(t, "2021_Springfield_Math.csv", "2020_Science.csv", "readme.md")

	n, err := BuildIndex(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "files.json"))
	assert.Equal(t, cerrors.ErrCodeIndexNotFound, cerrors.GetCode(err))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"filename": "x"}`), 0o644))
	_, err = Load(bad)
	assert.Equal(t, cerrors.ErrCodeIndexCorrupt, cerrors.GetCode(err))
}

func TestLoad_NullIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "files.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0o644))

	records, err := Load(path)

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestBuild_IndexesEveryMatchingName(t *testing.T) {
	// Given: a regular file, a subdirectory and a dangling symlink named *.csv
	dir := makeDataDir(t, "2021_Springfield_Math.csv")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "2020_Archive_Math.csv"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "2019_Gone_ELA.csv")))

	// When: building
	res, err := newTestIndexer(t).Build(context.Background(), dir)

	// Then: all three are indexed
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, []FileRecord{
		{Filename: "2019_Gone_ELA.csv", Year: "2019", District: "Gone", Subject: "ELA"},
		{Filename: "2020_Archive_Math.csv", Year: "2020", District: "Archive", Subject: "Math"},
		{Filename: "2021_Springfield_Math.csv", Year: "2021", District: "Springfield", Subject: "Math"},
	}, res.Records)
}

func TestBuildIndex_UnusableLockDirectory(t *testing.T) {
	tests := []struct {
		name         string
		tmpIsFileToo bool
	}{
		{name: "falls back to temp dir"},
		{name: "writes unlocked", tmpIsFileToo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a writable data directory and HOME pointing at a regular file
			dir := makeDataDir(t, "2021_Springfield_Math.csv")
			blocker := filepath.Join(t.TempDir(), "home")
			require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
			t.Setenv("HOME", blocker)
			if tt.tmpIsFileToo {
				t.Setenv("TMPDIR", blocker)
			}

			// When: building with the default lock directory
			n, err := BuildIndex(context.Background(), dir)

			// Then: the lock problem does not stop the build
			require.NoError(t, err)
			assert.Equal(t, 1, n)
			records, err := Load(filepath.Join(dir, "files.json"))
			require.NoError(t, err)
			assert.Equal(t, "Springfield", records[0].District)
		})
	}
}

func TestBuild_RebuildReusesParsedNames(t *testing.T) {
	// Given: one indexer used for consecutive builds of a directory
	dir := makeDataDir(t, "2021_Springfield_Math.csv", "2022_North Lake Unified_Reading.csv")
	ix := newTestIndexer(t)
	ctx := context.Background()

	// When: building, then adding a file and building again
	first, err := ix.Build(ctx, dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2020_Science.csv"), nil, 0o644))
	second, err := ix.Build(ctx, dir)
	require.NoError(t, err)

	// Then: only the new name is parsed on the rebuild
	assert.Equal(t, 0, first.Cached)
	assert.Equal(t, 3, second.Count)
	assert.Equal(t, 2, second.Cached)
	assert.Equal(t, ParseFilename("2020_Science.csv"), second.Records[0])
	assert.Equal(t, first.Records, second.Records[1:])

	// And: a fresh indexer starts cold
	third, err := newTestIndexer(t).Build(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 0, third.Cached)
}
