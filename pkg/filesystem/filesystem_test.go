package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/confman/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseBasics(t *testing.T, fs types.FS, root string) {
	t.Helper()

	testFile := filepath.Join(root, "test.txt")
	require.NoError(t, fs.WriteFile(testFile, []byte("hello world"), 0644))

	info, err := fs.Stat(testFile)
	require.NoError(t, err)
	assert.Equal(t, "test.txt", info.Name())
	assert.Equal(t, int64(11), info.Size())

	content, err := fs.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(content))

	require.NoError(t, fs.Chmod(testFile, 0600))
	info, err = fs.Stat(testFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	subDir := filepath.Join(root, "sub", "dir")
	require.NoError(t, fs.MkdirAll(subDir, 0755))

	entries, err := fs.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = fs.ReadFile(subDir)
	assert.Error(t, err, "reading a directory fails")

	moved := filepath.Join(subDir, "moved.txt")
	require.NoError(t, fs.Rename(testFile, moved))
	_, err = fs.Stat(testFile)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, fs.Remove(moved))
	require.NoError(t, fs.RemoveAll(filepath.Join(root, "sub")))
	_, err = fs.Stat(subDir)
	assert.True(t, os.IsNotExist(err))
}

func TestNewOS(t *testing.T) {
	exerciseBasics(t, NewOS(), t.TempDir())
}

func TestNewAferoFS(t *testing.T) {
	exerciseBasics(t, NewMemory(), "/work")
}

func TestOSSymlink(t *testing.T) {
	fs := NewOS()
	tmp := t.TempDir()
	target := filepath.Join(tmp, "target")
	link := filepath.Join(tmp, "link")
	require.NoError(t, fs.WriteFile(target, []byte("x"), 0644))

	require.NoError(t, fs.Symlink(target, link))

	got, err := fs.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, target, got)

	info, err := fs.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
}

func TestAferoOsFsSymlink(t *testing.T) {
	fs := NewAferoFS(afero.NewOsFs())
	tmp := t.TempDir()
	target := filepath.Join(tmp, "target")
	link := filepath.Join(tmp, "link")
	require.NoError(t, fs.WriteFile(target, []byte("x"), 0644))

	require.NoError(t, fs.Symlink(target, link))
	got, err := fs.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, target, got)

	info, err := fs.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
}

func TestMemorySymlinkUnsupported(t *testing.T) {
	fs := NewMemory()
	require.NoError(t, fs.WriteFile("/a", []byte("x"), 0644))

	err := fs.Symlink("/a", "/b")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrLinkUnsupported))

	_, err = fs.Readlink("/a")
	assert.True(t, errors.Is(err, types.ErrLinkUnsupported))

	info, err := fs.Lstat("/a")
	require.NoError(t, err, "Lstat falls back to Stat")
	assert.Equal(t, "a", info.Name())
}
