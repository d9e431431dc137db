package fetch

import (
	"context"
	"os"

	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/arthur-debert/confman/pkg/paths"
	"github.com/arthur-debert/confman/pkg/source"
	"github.com/arthur-debert/confman/pkg/types"
)

// Local serves Path sources. It never copies anything; the directory is
// used where it is.
type Local struct {
	fs types.FS
}

// NewLocal creates a Local fetcher checking directories on fs
func NewLocal(fs types.FS) *Local {
	return &Local{fs: fs}
}

// Fetch returns the expanded directory of a Path source
func (l *Local) Fetch(ctx context.Context, src source.Source) (string, error) {
	if !src.IsPath() {
		return "", errors.Newf(errors.ErrInternal, "local fetcher cannot serve %s source", src.Kind)
	}
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(err, errors.ErrCancelled, "fetch cancelled")
	}

	dir := paths.ExpandHome(src.Value)
	info, err := l.fs.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Newf(errors.ErrFileNotFound, "source directory %s does not exist", dir).
				WithDetail("source", src.Value)
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot access source directory %s", dir).
			WithDetail("source", src.Value)
	}
	if !info.IsDir() {
		return "", errors.Newf(errors.ErrFileNotFound, "source %s is not a directory", dir).
			WithDetail("source", src.Value)
	}
	return dir, nil
}
