package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/Aman-CERP/cohorts/internal/errors"
)

func TestDoctorCmd_Healthy(t *testing.T) {
	isolate(t)
	writeData(t, scenarioFiles...)

	stdout, _, err := run(t, "doctor")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Cohorts Data Check")
	assert.Contains(t, stdout, "[PASS] data_dir")
	assert.Contains(t, stdout, "[PASS] index_file")
}

func TestDoctorCmd_JSON(t *testing.T) {
	isolate(t)
	writeData(t, scenarioFiles...)
	_, _, err := run(t, "index")
	require.NoError(t, err)

	stdout, _, err := run(t, "doctor", "--json")

	require.NoError(t, err)
	var report struct {
		Status string `json:"status"`
		Checks []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "ready", report.Status)
	require.NotEmpty(t, report.Checks)
	assert.Equal(t, "data_dir", report.Checks[0].Name)
	assert.Equal(t, "PASS", report.Checks[0].Status)
}

func TestDoctorCmd_MissingDir(t *testing.T) {
	isolate(t)

	stdout, _, err := run(t, "doctor", "--json")

	require.Error(t, err)
	assert.Equal(t, cerrors.ErrCodeInvalidInput, cerrors.GetCode(err))
	assert.Contains(t, stdout, `"status": "failed"`)
}

func TestDoctorCmd_ExplicitDir(t *testing.T) {
	isolate(t)
	other := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(other, "2020_Science.csv"), nil, 0o644))

	_, _, err := run(t, "doctor", other)

	require.NoError(t, err)
}

func TestDoctorCmd_CorruptIndexWarns(t *testing.T) {
	isolate(t)
	dir := writeData(t, scenarioFiles...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "files.json"), []byte("{"), 0o644))

	stdout, _, err := run(t, "doctor")

	require.NoError(t, err)
	assert.Contains(t, stdout, "[WARN] index_file")
}
