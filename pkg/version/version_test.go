package version

import (
	"encoding/json"
	"regexp"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion_FollowsSemverOrDev(t *testing.T) {
	// Given: the version package is imported

	// When: accessing Version

	// Then: it is "dev" or a semver, with the optional v that module versions carry
	require.NotEmpty(t, Version)
	if Version == "dev" {
		t.Log("Version is 'dev' (development build without ldflags)")
		return
	}
	semverRegex := regexp.MustCompile(`^v?\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?(\+[a-zA-Z0-9.]+)?$`)
	require.True(t, semverRegex.MatchString(Version), "Version should follow semver format, got: %s", Version)
}

func TestString_ReturnsFormattedString(t *testing.T) {
	str := String()
	assert.Contains(t, str, Version)
	assert.Contains(t, str, "iconify")
	assert.Contains(t, str, "commit: "+Commit)
	assert.Contains(t, str, "go: "+GoVersion)
}

func TestShort_ReturnsVersion(t *testing.T) {
	assert.Equal(t, Version, Short())
}

func TestGetInfo_ReturnsInfo(t *testing.T) {
	info := GetInfo()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, Commit, info.Commit)
	assert.Equal(t, Date, info.Date)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)
}

func TestGetInfo_IsJSONSerializable(t *testing.T) {
	// Given: build info
	info := GetInfo()

	// When: serializing to JSON
	data, err := json.Marshal(info)
	require.NoError(t, err)

	// Then: every field is present under its snake_case key
	var parsed map[string]string
	require.NoError(t, json.Unmarshal(data, &parsed))
	for _, key := range []string{"version", "commit", "date", "go_version", "os", "arch"} {
		assert.Contains(t, parsed, key)
	}
}
