package executor

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"time"

	sfsfilesystem "github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/arthur-debert/confman/pkg/filesystem"
	"github.com/arthur-debert/confman/pkg/logging"
	"github.com/arthur-debert/confman/pkg/matcher"
	"github.com/arthur-debert/confman/pkg/types"
)

// Options configures an Executor
type Options struct {
	// FS is the target filesystem; defaults to the real one
	FS types.FS
	// DryRun reports planned actions without touching FS
	DryRun bool
	// Force replaces conflicting files and links
	Force bool
	// Logger overrides the package logger when enabled
	Logger zerolog.Logger
}

// Executor deploys and removes the records of resolved mappings
type Executor struct {
	fs     types.FS
	dryRun bool
	force  bool
	logger zerolog.Logger
	now    func() time.Time
	// root is the filesystem synthfs pipelines run against
	root sfsfilesystem.FullFileSystem
}

// New creates an executor from opts
func New(opts Options) *Executor {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("executor")
	}

	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}

	return &Executor{
		fs:     fs,
		dryRun: opts.DryRun,
		force:  opts.Force,
		logger: logger,
		now:    time.Now,
		root:   newRoot(),
	}
}

// Apply deploys every record of mapping under mode. Destinations are
// checked first and the resulting changes run as one synthfs pipeline in
// mapping order; once ctx is done the remaining records are reported as
// cancelled and left untouched.
func (e *Executor) Apply(ctx context.Context, mapping *matcher.Mapping, mode types.LinkMode) *Report {
	report := &Report{Module: mapping.Module, Results: make([]Result, len(mapping.Records))}
	logger := e.logger.With().Str("module", mapping.Module).Str("mode", string(mode)).Logger()
	logger.Debug().Int("records", len(mapping.Records)).Bool("dryRun", e.dryRun).Msg("Applying mapping")

	b := newBatch("apply", mapping.Module)
	for i, rec := range mapping.Records {
		if err := ctx.Err(); err != nil {
			report.Results[i] = cancelled(rec, err)
			continue
		}
		res, pending := e.planApply(rec, mode)
		res.DryRun = e.dryRun
		report.Results[i] = res
		if pending && !e.dryRun {
			b.add(i, func() Result { return e.deploy(res, mode) })
		}
	}
	e.run(ctx, b, report.Results)

	for _, res := range report.Results {
		ev := logger.Debug()
		if res.Err != nil {
			ev = logger.Warn().Err(res.Err)
		}
		ev.Str("destination", res.Record.Destination).Str("action", string(res.Action)).Msg("Processed destination")
	}
	return report
}

// planApply decides what rec needs. The returned bool is set when the
// destination has to be written.
func (e *Executor) planApply(rec matcher.Record, mode types.LinkMode) (Result, bool) {
	res := Result{Record: rec}
	if !rec.Link {
		res.Action = ActionSkip
		return res, false
	}

	obs, err := e.observe(rec)
	if err != nil {
		return failed(res, err), false
	}

	if obs.exists {
		if inPlace(obs, mode) {
			res.Action = ActionUnchanged
			return res, false
		}
		if !e.force || obs.isDir {
			res.Action = ActionConflict
			res.Message = describe(obs)
			res.Err = errors.Newf(errors.ErrConflict, "%s already exists (%s)", rec.Destination, describe(obs)).
				WithDetail("destination", rec.Destination).
				WithDetail("module", rec.Module)
			return res, false
		}
		res.Replaced = true
	}

	res.Action = plannedAction(mode)
	return res, true
}

func (e *Executor) deploy(res Result, mode types.LinkMode) Result {
	rec := res.Record
	if res.Replaced {
		if err := e.fs.Remove(rec.Destination); err != nil {
			return failed(res, errors.Wrapf(err, errors.ErrFileAccess, "cannot replace %s", rec.Destination).
				WithDetail("destination", rec.Destination))
		}
	}

	if err := e.fs.MkdirAll(filepath.Dir(rec.Destination), 0755); err != nil {
		return failed(res, errors.Wrapf(err, errors.ErrFileAccess, "cannot create parent of %s", rec.Destination).
			WithDetail("destination", rec.Destination))
	}

	switch mode {
	case types.LinkNever:
		res.Action = ActionCopy
		if err := e.copyFile(rec.SourcePath, rec.Destination); err != nil {
			return failed(res, err)
		}
	case types.LinkPrefer:
		res.Action = ActionLink
		err := e.fs.Symlink(rec.SourcePath, rec.Destination)
		if err != nil && stderrors.Is(err, types.ErrLinkUnsupported) {
			e.logger.Debug().Str("destination", rec.Destination).Msg("Symlinks unavailable, copying")
			res.Action = ActionCopy
			err = e.copyFile(rec.SourcePath, rec.Destination)
		}
		if err != nil {
			return failed(res, linkError(err, rec))
		}
	default:
		res.Action = ActionLink
		if err := e.fs.Symlink(rec.SourcePath, rec.Destination); err != nil {
			return failed(res, linkError(err, rec))
		}
	}

	return res
}

// Clean removes the destinations of mapping that exactly match what
// Apply produces under mode. Anything else is left alone and reported as
// a conflict.
func (e *Executor) Clean(ctx context.Context, mapping *matcher.Mapping, mode types.LinkMode) *Report {
	report := &Report{Module: mapping.Module, Results: make([]Result, len(mapping.Records))}
	b := newBatch("clean", mapping.Module)
	for i, rec := range mapping.Records {
		if err := ctx.Err(); err != nil {
			report.Results[i] = cancelled(rec, err)
			continue
		}
		res, pending := e.planClean(rec, mode)
		res.DryRun = e.dryRun
		report.Results[i] = res
		if pending && !e.dryRun {
			b.add(i, func() Result { return e.remove(res) })
		}
	}
	e.run(ctx, b, report.Results)
	return report
}

func (e *Executor) planClean(rec matcher.Record, mode types.LinkMode) (Result, bool) {
	res := Result{Record: rec}
	if !rec.Link {
		res.Action = ActionSkip
		return res, false
	}

	obs, err := e.observe(rec)
	if err != nil {
		return failed(res, err), false
	}
	if !obs.exists {
		res.Action = ActionUnchanged
		return res, false
	}
	if !inPlace(obs, mode) {
		res.Action = ActionConflict
		res.Message = describe(obs)
		res.Err = errors.Newf(errors.ErrConflict, "%s is not managed by confman (%s)", rec.Destination, describe(obs)).
			WithDetail("destination", rec.Destination).
			WithDetail("module", rec.Module)
		return res, false
	}

	res.Action = ActionRemove
	return res, true
}

func (e *Executor) remove(res Result) Result {
	if err := e.fs.Remove(res.Record.Destination); err != nil {
		return failed(res, errors.Wrapf(err, errors.ErrFileAccess, "cannot remove %s", res.Record.Destination).
			WithDetail("destination", res.Record.Destination))
	}
	return res
}

// copyFile writes src to a temporary sibling of dest and renames it into
// place so dest never holds partial content.
func (e *Executor) copyFile(src, dest string) error {
	info, err := e.fs.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat source %s", src).WithDetail("source", src)
	}
	data, err := e.fs.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read source %s", src).WithDetail("source", src)
	}

	tmp := filepath.Join(filepath.Dir(dest), fmt.Sprintf(".%s.confman-tmp-%d", filepath.Base(dest), e.now().UnixNano()))
	if err := e.fs.WriteFile(tmp, data, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot write %s", dest).WithDetail("destination", dest)
	}
	if err := e.fs.Chmod(tmp, info.Mode().Perm()); err != nil {
		_ = e.fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot set mode on %s", dest).WithDetail("destination", dest)
	}
	if err := e.fs.Rename(tmp, dest); err != nil {
		_ = e.fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot move copy into %s", dest).WithDetail("destination", dest)
	}
	return nil
}

func linkError(err error, rec matcher.Record) error {
	var cmErr *errors.Error
	if stderrors.As(err, &cmErr) {
		return err
	}
	code := errors.ErrFileAccess
	if stderrors.Is(err, types.ErrLinkUnsupported) {
		code = errors.ErrLinkUnsupported
	}
	return errors.Wrapf(err, code, "cannot link %s", rec.Destination).
		WithDetail("destination", rec.Destination).
		WithDetail("source", rec.SourcePath)
}

func plannedAction(mode types.LinkMode) Action {
	if mode == types.LinkNever {
		return ActionCopy
	}
	return ActionLink
}

func failed(res Result, err error) Result {
	res.Action = ActionFailed
	res.Err = err
	return res
}

func cancelled(rec matcher.Record, cause error) Result {
	return Result{
		Record: rec,
		Action: ActionCancelled,
		Err:    errors.Wrap(cause, errors.ErrCancelled, "run cancelled before "+rec.Destination),
	}
}
