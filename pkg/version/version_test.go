package version

import (
	"encoding/json"
	"regexp"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion_FollowsSemverOrDev(t *testing.T) {
	if Version == "dev" {
		return
	}
	semverRegex := regexp.MustCompile(`^v?\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?$`)
	require.True(t, semverRegex.MatchString(Version), "Version should follow semver format, got: %s", Version)
}

func TestString_ReturnsFormattedString(t *testing.T) {
	str := String()

	assert.Contains(t, str, "cohorts "+Version)
	assert.Contains(t, str, "commit:")
	assert.Contains(t, str, runtime.Version())
}

func TestShort_ReturnsVersion(t *testing.T) {
	assert.Equal(t, Version, Short())
}

func TestGetInfo_JSON(t *testing.T) {
	info := GetInfo()

	data, err := json.Marshal(info)
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, Version, decoded["version"])
	assert.Equal(t, runtime.GOOS, decoded["os"])
	assert.Equal(t, runtime.GOARCH, decoded["arch"])
	assert.Contains(t, decoded, "go_version")
}

func TestApplyVCS(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2026-01-02T15:04:05Z"},
	}

	// ldflags unset: VCS values fill in
	info := BuildInfo{Commit: "unknown", Date: "unknown"}
	applyVCS(&info, settings)
	assert.Equal(t, "0123456", info.Commit)
	assert.Equal(t, "2026-01-02T15:04:05Z", info.Date)

	// ldflags set: they win
	info = BuildInfo{Commit: "abc", Date: "yesterday"}
	applyVCS(&info, settings)
	assert.Equal(t, "abc", info.Commit)
	assert.Equal(t, "yesterday", info.Date)
}
