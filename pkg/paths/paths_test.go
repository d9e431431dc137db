package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRespectsOverrides(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(EnvConfigDir, filepath.Join(tmp, "cfg"))
	t.Setenv(EnvCacheDir, filepath.Join(tmp, "cache"))
	t.Setenv(EnvStateDir, filepath.Join(tmp, "state"))

	p, err := New()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmp, "cfg"), p.ConfigDir())
	assert.Equal(t, filepath.Join(tmp, "cache"), p.CacheDir())
	assert.Equal(t, filepath.Join(tmp, "state"), p.StateDir())
	assert.Equal(t, filepath.Join(tmp, "cache", "sources"), p.SourcesDir())
	assert.Equal(t, filepath.Join(tmp, "state", "confman.log"), p.LogFilePath())
	assert.Equal(t,
		filepath.Join(tmp, "cache", "sources", "github.com", "u", "dots"),
		p.SourceCachePath("github.com/u/dots"))
}

func TestNewUsesXDG(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(EnvConfigDir, "")
	t.Setenv(EnvCacheDir, "")
	t.Setenv(EnvStateDir, "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "xc"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmp, "xk"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmp, "xs"))

	p, err := New()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmp, "xc", "confman"), p.ConfigDir())
	assert.Equal(t, filepath.Join(tmp, "xk", "confman"), p.CacheDir())
	assert.Equal(t, filepath.Join(tmp, "xs", "confman"), p.StateDir())
}

func TestFindConfigFile(t *testing.T) {
	tmp := t.TempDir()
	p := NewWithDirs(tmp, filepath.Join(tmp, "cache"), filepath.Join(tmp, "state"))
	t.Setenv(EnvConfigFile, "")

	assert.Equal(t, "", p.FindConfigFile(""), "nothing exists yet")

	tomlPath := filepath.Join(tmp, "config.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("link_mode = \"never\"\n"), 0644))
	assert.Equal(t, tomlPath, p.FindConfigFile(""))

	ymlPath := filepath.Join(tmp, "config.yml")
	require.NoError(t, os.WriteFile(ymlPath, []byte("modules: []\n"), 0644))
	assert.Equal(t, ymlPath, p.FindConfigFile(""), "yml is tried before toml")

	t.Setenv(EnvConfigFile, "/etc/confman.yaml")
	assert.Equal(t, "/etc/confman.yaml", p.FindConfigFile(""))

	assert.Equal(t, "/explicit.yaml", p.FindConfigFile("/explicit.yaml"))
}

func TestExpandHome(t *testing.T) {
	home, err := GetHomeDirectory()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/dots", filepath.Join(home, "dots")},
		{"~other/dots", "~other/dots"},
		{"/abs/path", "/abs/path"},
		{"rel/path", "rel/path"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandHome(tt.in))
		})
	}
}

func TestIsHomeRelative(t *testing.T) {
	assert.True(t, IsHomeRelative("~"))
	assert.True(t, IsHomeRelative("~/x"))
	assert.False(t, IsHomeRelative("~x"))
	assert.False(t, IsHomeRelative("/x"))
}
