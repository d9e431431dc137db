package fetch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/arthur-debert/confman/pkg/paths"
	"github.com/arthur-debert/confman/pkg/source"
)

func newTestGit(t *testing.T) (*Git, paths.Paths) {
	t.Helper()
	dir := t.TempDir()
	p := paths.NewWithDirs(filepath.Join(dir, "config"), filepath.Join(dir, "cache"), filepath.Join(dir, "state"))
	return NewGit(p, false), p
}

func TestGitUsesExistingClone(t *testing.T) {
	g, p := newTestGit(t)
	src := source.Git("https://github.com/o/r.git")
	dest := p.SourceCachePath(src.CacheKey())

	_, err := git.PlainInit(dest, false)
	require.NoError(t, err)

	dir, err := g.Fetch(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, dest, dir)
	assert.Equal(t, filepath.Join(p.SourcesDir(), "github.com", "o", "r"), dir)
}

func TestGitCloneFailureCleansUp(t *testing.T) {
	g, p := newTestGit(t)
	missing := filepath.Join(t.TempDir(), "no-such-repo")
	src := source.Git("file://" + filepath.ToSlash(missing))
	dest := p.SourceCachePath(src.CacheKey())

	// stale leftovers of an interrupted clone
	require.NoError(t, os.MkdirAll(dest, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "junk"), []byte("x"), 0644))

	_, err := g.Fetch(context.Background(), src)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFetchFailed))
	assert.True(t, errors.IsRetryable(err))

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGitRemove(t *testing.T) {
	g, p := newTestGit(t)
	src := source.Git("https://github.com/o/r.git")
	dest := p.SourceCachePath(src.CacheKey())
	require.NoError(t, os.MkdirAll(dest, 0755))

	require.NoError(t, g.Remove(src))
	_, err := os.Stat(dest)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, g.Remove(src), "removing twice is fine")
	require.NoError(t, g.Remove(source.Path("/home/u/dots")))
}

func TestGitLocate(t *testing.T) {
	g, p := newTestGit(t)
	src := source.Git("https://github.com/o/r.git")

	_, err := g.Locate(src)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))

	dest := p.SourceCachePath(src.CacheKey())
	_, err = git.PlainInit(dest, false)
	require.NoError(t, err)

	dir, err := g.Locate(src)
	require.NoError(t, err)
	assert.Equal(t, dest, dir)
}

func TestGitRejectsPathSources(t *testing.T) {
	g, _ := newTestGit(t)
	_, err := g.Fetch(context.Background(), source.Path("/home/u/dots"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrInternal))
}

func TestGitClassify(t *testing.T) {
	g, _ := newTestGit(t)
	src := source.Git("https://github.com/o/r.git")

	expired, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-expired.Done()
	err := g.classify(expired, expired.Err(), src, "clone")
	assert.True(t, errors.IsErrorCode(err, errors.ErrFetchTimeout))

	err = g.classify(context.Background(), assert.AnError, src, "pull")
	assert.True(t, errors.IsErrorCode(err, errors.ErrFetchFailed))
	assert.Equal(t, "pull", errors.GetErrorDetails(err)["operation"])
}
