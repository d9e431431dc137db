package fetch

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/arthur-debert/confman/pkg/logging"
	"github.com/arthur-debert/confman/pkg/source"
)

// CacheLocator maps a source cache key to its clone directory
type CacheLocator interface {
	SourceCachePath(key string) string
}

// Git clones git sources into the confman cache
type Git struct {
	cache  CacheLocator
	update bool
	auth   authResolver
	logger zerolog.Logger
}

// NewGit creates a git fetcher storing clones under cache. With update set,
// existing clones are pulled instead of used as they are.
func NewGit(cache CacheLocator, update bool) *Git {
	return &Git{
		cache:  cache,
		update: update,
		auth:   defaultAuthResolver(),
		logger: logging.GetLogger("fetch.git"),
	}
}

// Dir returns where src is (or would be) cloned
func (g *Git) Dir(src source.Source) string {
	return g.cache.SourceCachePath(src.CacheKey())
}

// Fetch clones src when no clone exists yet and returns the clone directory
func (g *Git) Fetch(ctx context.Context, src source.Source) (string, error) {
	if !src.IsGit() || src.CacheKey() == "" {
		return "", errors.Newf(errors.ErrInternal, "git fetcher cannot serve %s source %q", src.Kind, src.Value)
	}
	dest := g.Dir(src)
	logger := g.logger.With().Str("source", src.Value).Str("dir", dest).Logger()

	repo, err := git.PlainOpen(dest)
	switch {
	case err == nil:
		if !g.update {
			logger.Debug().Msg("Using cached clone")
			return dest, nil
		}
		logger.Info().Msg("Updating clone")
		if err := g.pull(ctx, repo, src); err != nil {
			return "", g.classify(ctx, err, src, "pull")
		}
		return dest, nil
	case stderrors.Is(err, git.ErrRepositoryNotExists):
		// Leftovers of an interrupted clone are discarded
		if _, statErr := os.Stat(dest); statErr == nil {
			logger.Debug().Msg("Removing stale cache directory")
			if rmErr := os.RemoveAll(dest); rmErr != nil {
				return "", errors.Wrapf(rmErr, errors.ErrFileAccess, "cannot clear stale cache %s", dest).
					WithDetail("source", src.Value)
			}
		}
	default:
		return "", errors.Wrapf(err, errors.ErrFetchFailed, "cannot open cached clone %s", dest).
			WithDetail("source", src.Value)
	}

	logger.Info().Msg("Cloning source")
	if err := g.clone(ctx, src, dest); err != nil {
		_ = os.RemoveAll(dest)
		return "", g.classify(ctx, err, src, "clone")
	}
	return dest, nil
}

// Locate returns the clone directory of src without touching the network.
// A source that was never fetched is FILE_NOT_FOUND.
func (g *Git) Locate(src source.Source) (string, error) {
	if !src.IsGit() || src.CacheKey() == "" {
		return "", errors.Newf(errors.ErrInternal, "git fetcher cannot serve %s source %q", src.Kind, src.Value)
	}
	dest := g.Dir(src)
	if _, err := git.PlainOpen(dest); err != nil {
		return "", errors.Newf(errors.ErrFileNotFound, "source %s has not been fetched", src.Value).
			WithDetail("source", src.Value).
			WithDetail("dir", dest)
	}
	return dest, nil
}

// Remove deletes the clone of src. Missing clones are not an error.
func (g *Git) Remove(src source.Source) error {
	if !src.IsGit() || src.CacheKey() == "" {
		return nil
	}
	dest := g.Dir(src)
	if err := os.RemoveAll(dest); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot remove cached clone %s", dest).
			WithDetail("source", src.Value)
	}
	return nil
}

func (g *Git) clone(ctx context.Context, src source.Source, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	_, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:  src.Value,
		Auth: g.auth.forURL(src.Value),
	})
	return err
}

func (g *Git) pull(ctx context.Context, repo *git.Repository, src source.Source) error {
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	err = wt.PullContext(ctx, &git.PullOptions{
		RemoteName: "origin",
		Auth:       g.auth.forURL(src.Value),
	})
	if err != nil && !stderrors.Is(err, git.NoErrAlreadyUpToDate) {
		return err
	}
	return nil
}

func (g *Git) classify(ctx context.Context, err error, src source.Source, op string) error {
	var code errors.ErrorCode
	switch {
	case stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded):
		code = errors.ErrFetchTimeout
	case stderrors.Is(err, context.Canceled) || stderrors.Is(ctx.Err(), context.Canceled):
		code = errors.ErrCancelled
	case stderrors.Is(err, transport.ErrAuthenticationRequired),
		stderrors.Is(err, transport.ErrAuthorizationFailed),
		stderrors.Is(err, transport.ErrInvalidAuthMethod):
		code = errors.ErrFetchAuth
	default:
		code = errors.ErrFetchFailed
	}
	return errors.Wrapf(err, code, "git %s of %s failed", op, src.Value).
		WithDetail("source", src.Value).
		WithDetail("operation", op)
}
