package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Status_PrintsIconAndMessage(t *testing.T) {
	// Given: a writer with a buffer
	buf := &bytes.Buffer{}
	w := New(buf)

	// When: printing a status message
	w.Status("🔍", "Scanning data...")

	// Then: output contains icon and message
	assert.Equal(t, "🔍 Scanning data...\n", buf.String())
}

func TestWriter_Status_NoIconIndents(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Statusf("", "%d files", 3)

	assert.Equal(t, "   3 files\n", buf.String())
}

func TestWriter_LevelIcons(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Successf("Indexed %d files", 2)
	w.Warning("Low disk space")
	w.Errorf("cannot write %s", "files.json")

	out := buf.String()
	assert.Contains(t, out, "✅ Indexed 2 files")
	assert.Contains(t, out, "⚠️")
	assert.Contains(t, out, "Low disk space")
	assert.Contains(t, out, "❌ cannot write files.json")
}

func TestWriter_BufferIsNeverColored(t *testing.T) {
	// Given: a writer over a non-terminal
	buf := &bytes.Buffer{}
	w := New(buf)

	// When: printing styled output
	w.Header("Years")
	w.Success("done")

	// Then: no ANSI escapes appear
	assert.False(t, w.UseColor())
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestWriter_ListShowsEmptyItems(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewPlain(buf)

	w.List([]string{"", "Springfield"})

	assert.Equal(t, "  (none)\n  Springfield\n", buf.String())
}

func TestWriter_Field(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewPlain(buf)

	w.Field("Year", "2021", 8)

	assert.Equal(t, "  Year:     2021\n", buf.String())
}

func TestWriter_Code(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewPlain(buf)

	w.Code("a\nb")

	assert.Equal(t, "\n  a\n  b\n\n", buf.String())
}

func TestShouldUseColor(t *testing.T) {
	// Regular files are not terminals
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, ShouldUseColor(f))

	assert.False(t, ShouldUseColor(&bytes.Buffer{}))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ShouldUseColor(os.Stdout))
}

func TestGetStyles(t *testing.T) {
	plain := GetStyles(true)
	assert.Equal(t, "x", plain.Header.Render("x"))

	colored := GetStyles(false)
	assert.Contains(t, colored.Header.Render("x"), "x")
}
