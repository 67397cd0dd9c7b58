package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/cohorts/internal/config"
)

func TestConfigInit_CreatesProjectFile(t *testing.T) {
	isolate(t)

	stdout, _, err := run(t, "config", "init")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Created configuration")
	require.FileExists(t, config.ProjectFile)

	cfg, err := config.Load(".")
	require.NoError(t, err)
	assert.Equal(t, config.NewConfig(), cfg)
}

func TestConfigInit_KeepsExistingWithoutForce(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(config.ProjectFile, []byte("output_name: mine.json\n"), 0o644))

	stdout, _, err := run(t, "config", "init")

	require.NoError(t, err)
	assert.Contains(t, stdout, "already exists")
	data, err := os.ReadFile(config.ProjectFile)
	require.NoError(t, err)
	assert.Equal(t, "output_name: mine.json\n", string(data))
}

func TestConfigInit_ForceBacksUp(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(config.ProjectFile, []byte("output_name: mine.json\n"), 0o644))

	_, _, err := run(t, "config", "init", "--force")

	require.NoError(t, err)
	backups, err := config.ListBackups(config.ProjectFile)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	data, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, "output_name: mine.json\n", string(data))

	cfg, err := config.Load(".")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultOutputName, cfg.OutputName)
}

func TestConfigInit_User(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "config", "init", "--user")

	require.NoError(t, err)
	assert.FileExists(t, config.GetUserConfigPath())
	assert.NoFileExists(t, config.ProjectFile)
}

func TestConfigInit_WorksWithBrokenConfig(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(config.ProjectFile, []byte("data_dir: [\n"), 0o644))

	_, _, err := run(t, "config", "init", "--force")

	require.NoError(t, err)
}

func TestConfigShow_JSON(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(config.ProjectFile, []byte("output_name: catalog.json\n"), 0o644))

	stdout, _, err := run(t, "config", "show", "--json", "--dir", "exports")

	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(stdout), &cfg))
	assert.Equal(t, "catalog.json", cfg.OutputName)
	assert.Equal(t, "exports", cfg.DataDir)
}

func TestConfigShow_YAML(t *testing.T) {
	isolate(t)

	stdout, _, err := run(t, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, stdout, "data_dir: data\n")
	assert.Contains(t, stdout, "output_name: files.json\n")
}

func TestConfigPath(t *testing.T) {
	isolate(t)

	stdout, _, err := run(t, "config", "path")

	require.NoError(t, err)
	assert.Equal(t, config.GetUserConfigPath()+"\n", stdout)
	assert.True(t, filepath.IsAbs(config.GetUserConfigPath()))
}
