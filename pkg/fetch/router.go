package fetch

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/arthur-debert/confman/pkg/filesystem"
	"github.com/arthur-debert/confman/pkg/logging"
	"github.com/arthur-debert/confman/pkg/source"
	"github.com/arthur-debert/confman/pkg/types"
)

// DefaultTimeout bounds a single remote fetch
const DefaultTimeout = 5 * time.Minute

// Fetcher makes a source available as a local directory
type Fetcher interface {
	Fetch(ctx context.Context, src source.Source) (string, error)
}

// Remover deletes whatever a fetcher cached for a source
type Remover interface {
	Remove(src source.Source) error
}

// Locator finds an already fetched source without fetching it
type Locator interface {
	Locate(src source.Source) (string, error)
}

// Options configures a Router
type Options struct {
	// FS is used to validate local sources
	FS types.FS
	// Cache locates clone directories for git sources
	Cache CacheLocator
	// Update pulls existing clones
	Update bool
	// Timeout bounds each remote fetch; zero means DefaultTimeout and a
	// negative value disables the bound
	Timeout time.Duration

	// Local and Git replace the default fetchers when set
	Local Fetcher
	Git   Fetcher
}

// Router dispatches sources to the fetcher for their kind
type Router struct {
	local   Fetcher
	git     Fetcher
	timeout time.Duration
	group   singleflight.Group
	logger  zerolog.Logger
}

// NewRouter creates a router from opts
func NewRouter(opts Options) *Router {
	r := &Router{
		local:   opts.Local,
		git:     opts.Git,
		timeout: opts.Timeout,
		logger:  logging.GetLogger("fetch"),
	}
	if r.local == nil {
		fs := opts.FS
		if fs == nil {
			fs = filesystem.NewOS()
		}
		r.local = NewLocal(fs)
	}
	if r.git == nil && opts.Cache != nil {
		r.git = NewGit(opts.Cache, opts.Update)
	}
	if r.timeout == 0 {
		r.timeout = DefaultTimeout
	}
	return r
}

// Fetch returns the local directory for src. Concurrent calls for the
// same source share one underlying fetch.
func (r *Router) Fetch(ctx context.Context, src source.Source) (string, error) {
	v, err, shared := r.group.Do(identity(src), func() (interface{}, error) {
		return r.fetch(ctx, src)
	})
	if shared {
		r.logger.Trace().Str("source", src.Value).Msg("Joined in-flight fetch")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (r *Router) fetch(ctx context.Context, src source.Source) (string, error) {
	switch src.Kind {
	case source.KindPath:
		return r.local.Fetch(ctx, src)
	case source.KindGit:
		if r.git == nil {
			return "", errors.New(errors.ErrInternal, "no git fetcher configured")
		}
		return r.fetchRemote(ctx, src)
	default:
		return "", errors.Newf(errors.ErrUnknownSource, "cannot fetch source %q", src.Value).
			WithDetail("source", src.Value)
	}
}

func (r *Router) fetchRemote(ctx context.Context, src source.Source) (string, error) {
	fetchCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	dir, err := r.git.Fetch(fetchCtx, src)
	if err == nil {
		r.logger.Debug().Str("source", src.Value).Dur("took", time.Since(start)).Msg("Fetched source")
		return dir, nil
	}

	timedOut := ctx.Err() == nil && stderrors.Is(fetchCtx.Err(), context.DeadlineExceeded)
	if timedOut && !errors.IsErrorCode(err, errors.ErrFetchTimeout) {
		return "", errors.Wrapf(err, errors.ErrFetchTimeout, "fetch of %s timed out after %s", src.Value, r.timeout).
			WithDetail("source", src.Value)
	}
	if ctx.Err() != nil && !errors.IsErrorCode(err, errors.ErrCancelled) {
		return "", errors.Wrapf(err, errors.ErrCancelled, "fetch of %s cancelled", src.Value).
			WithDetail("source", src.Value)
	}
	return "", err
}

// Locate returns the local directory of src only if it is already
// available. Path sources are validated as by Fetch.
func (r *Router) Locate(src source.Source) (string, error) {
	switch src.Kind {
	case source.KindPath:
		return r.local.Fetch(context.Background(), src)
	case source.KindGit:
		if loc, ok := r.git.(Locator); ok {
			return loc.Locate(src)
		}
		return "", errors.New(errors.ErrInternal, "git fetcher cannot locate cached sources")
	default:
		return "", errors.Newf(errors.ErrUnknownSource, "cannot locate source %q", src.Value).
			WithDetail("source", src.Value)
	}
}

// Remove discards the cached copy of src, if the fetcher for its kind
// keeps one.
func (r *Router) Remove(src source.Source) error {
	if !src.IsGit() {
		return nil
	}
	if rm, ok := r.git.(Remover); ok {
		return rm.Remove(src)
	}
	return nil
}

func identity(src source.Source) string {
	if key := src.CacheKey(); key != "" {
		return string(src.Kind) + ":" + key
	}
	return string(src.Kind) + ":" + src.Value
}
