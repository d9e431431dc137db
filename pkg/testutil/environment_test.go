package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedEnvironment(t *testing.T) {
	env := NewTestEnvironment(t, EnvIsolated)

	assert.Equal(t, env.HomeDir, os.Getenv("HOME"))
	assert.Equal(t, env.ConfigDir, os.Getenv("CONFMAN_CONFIG_DIR"))
	assert.Equal(t, filepath.Join(env.CacheDir, "sources"), env.Paths.SourcesDir())

	path := env.SourceFile("vim", "colors/dark.vim", "hi")
	assert.Equal(t, filepath.Join(env.ModuleDir("vim"), "colors", "dark.vim"), path)
	assert.Equal(t, "hi", ReadFile(t, path))

	cfg := env.WriteConfig("modules: []\n")
	assert.True(t, Exists(cfg))
}

func TestMemoryEnvironment(t *testing.T) {
	env := NewTestEnvironment(t, EnvMemoryOnly)

	path := env.SourceFile("vim", "vimrc", "set nu")
	data, err := env.FS.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "set nu", string(data))
	assert.False(t, Exists(path), "memory files never reach the disk")
	assert.Equal(t, filepath.Join("/virtual", "home", ".vimrc"), env.Home(".vimrc"))
}

func TestSymlinkHelpers(t *testing.T) {
	dir := t.TempDir()
	target := CreateFile(t, dir, "a/target", "x")
	link := filepath.Join(dir, "b", "link")
	CreateSymlink(t, target, link)

	assert.True(t, SymlinkExists(link))
	assert.False(t, SymlinkExists(target))
	assert.Equal(t, target, ReadSymlink(t, link))
	assert.True(t, Exists(CreateDir(t, dir, "c/d")))
}
