package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/confman/pkg/config"
	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/arthur-debert/confman/pkg/executor"
	"github.com/arthur-debert/confman/pkg/filesystem"
	"github.com/arthur-debert/confman/pkg/logging"
	"github.com/arthur-debert/confman/pkg/matcher"
	"github.com/arthur-debert/confman/pkg/module"
	"github.com/arthur-debert/confman/pkg/source"
	"github.com/arthur-debert/confman/pkg/types"
)

// DefaultWorkers bounds how many modules are processed at once
const DefaultWorkers = 4

// Sources makes module sources available locally
type Sources interface {
	// Fetch obtains src, cloning it if necessary
	Fetch(ctx context.Context, src source.Source) (string, error)
	// Locate finds src only if it is already available
	Locate(src source.Source) (string, error)
	// Remove discards the cached copy of src
	Remove(src source.Source) error
}

// Options configures an Engine
type Options struct {
	FS      types.FS
	Sources Sources
	Env     types.Environment
	// Workers bounds module concurrency; zero means DefaultWorkers
	Workers int
	DryRun  bool
	Force   bool
	// SourcesDir and StateDir are removed by Reset
	SourcesDir string
	StateDir   string
}

// Selection picks the modules an operation runs on. An empty selection
// means every configured module.
type Selection struct {
	Modules []string
	Profile string
}

// Engine runs operations over one configuration
type Engine struct {
	cfg     *config.Config
	fs      types.FS
	sources Sources
	env     types.Environment
	workers int
	dryRun  bool
	matcher *matcher.Matcher
	exec    *executor.Executor

	sourcesDir string
	stateDir   string

	logger zerolog.Logger
}

// New creates an engine for cfg
func New(cfg *config.Config, opts Options) *Engine {
	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Engine{
		cfg:        cfg,
		fs:         fs,
		sources:    opts.Sources,
		env:        opts.Env,
		workers:    workers,
		dryRun:     opts.DryRun,
		matcher:    matcher.New(fs),
		exec:       executor.New(executor.Options{FS: fs, DryRun: opts.DryRun, Force: opts.Force}),
		sourcesDir: opts.SourcesDir,
		stateDir:   opts.StateDir,
		logger:     logging.GetLogger("engine"),
	}
}

// Select resolves a selection to modules in declaration order
func (e *Engine) Select(sel Selection) ([]module.Module, error) {
	if sel.Profile != "" && len(sel.Modules) > 0 {
		return nil, errors.New(errors.ErrInvalidInput, "cannot combine a profile with module names")
	}
	if sel.Profile != "" {
		return e.cfg.Profile(sel.Profile)
	}
	return e.cfg.Select(sel.Modules)
}

// Fetch makes the selected sources available without deploying anything
func (e *Engine) Fetch(ctx context.Context, sel Selection) (*RunReport, error) {
	return e.run(ctx, "fetch", sel, func(ctx context.Context, mods []module.Module, report *RunReport) {
		e.prepare(ctx, mods, report, e.sources.Fetch, false)
	})
}

// Apply fetches, resolves and deploys the selected modules
func (e *Engine) Apply(ctx context.Context, sel Selection) (*RunReport, error) {
	return e.run(ctx, "apply", sel, func(ctx context.Context, mods []module.Module, report *RunReport) {
		e.prepare(ctx, mods, report, e.sources.Fetch, true)
		if !e.checkCollisions(report) {
			return
		}
		e.deploy(ctx, report, e.exec.Apply)
	})
}

// Status inspects the destinations of the selected modules. Sources are
// located, never fetched.
func (e *Engine) Status(ctx context.Context, sel Selection) (*RunReport, error) {
	return e.run(ctx, "status", sel, func(ctx context.Context, mods []module.Module, report *RunReport) {
		e.prepare(ctx, mods, report, e.locate, true)
		for i := range report.Modules {
			mr := &report.Modules[i]
			if mr.Mapping == nil {
				continue
			}
			mr.Statuses = e.exec.Inspect(mr.Mapping, mr.Mode)
		}
	})
}

// Clean removes what Apply deployed for the selected modules. With full
// set, fetched git sources are removed too.
func (e *Engine) Clean(ctx context.Context, sel Selection, full bool) (*RunReport, error) {
	return e.run(ctx, "clean", sel, func(ctx context.Context, mods []module.Module, report *RunReport) {
		e.clean(ctx, mods, report, full)
	})
}

// Reset cleans every configured module and removes the whole source
// cache. With full set, confman's state directory goes as well.
func (e *Engine) Reset(ctx context.Context, full bool) (*RunReport, error) {
	return e.run(ctx, "reset", Selection{}, func(ctx context.Context, mods []module.Module, report *RunReport) {
		e.clean(ctx, mods, report, true)
		if report.Outcome() == Failed || e.dryRun {
			return
		}
		dirs := []string{e.sourcesDir}
		if full {
			dirs = append(dirs, e.stateDir)
		}
		for _, dir := range dirs {
			if dir == "" {
				continue
			}
			if err := e.fs.RemoveAll(dir); err != nil {
				report.Err = errors.Wrapf(err, errors.ErrFileAccess, "cannot remove %s", dir).WithDetail("path", dir)
				return
			}
			e.logger.Info().Str("path", dir).Msg("Removed directory")
		}
	})
}

func (e *Engine) run(ctx context.Context, op string, sel Selection, body func(context.Context, []module.Module, *RunReport)) (*RunReport, error) {
	done := logging.LogOperationStart(e.logger, op)
	defer done()

	mods, err := e.Select(sel)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	report := &RunReport{Operation: op, DryRun: e.dryRun, Modules: make([]ModuleReport, len(mods))}
	for i, m := range mods {
		report.Modules[i] = ModuleReport{Module: m.Name(), Source: m.Source(), Mode: e.cfg.LinkModeFor(m)}
	}

	body(ctx, mods, report)
	report.Duration = time.Since(start)

	e.logger.Debug().
		Str("operation", op).
		Int("modules", len(mods)).
		Int("failed", len(report.Failures())).
		Str("outcome", report.Outcome().String()).
		Dur("took", report.Duration).
		Msg("Run finished")
	return report, nil
}

type obtainFunc func(ctx context.Context, src source.Source) (string, error)

func (e *Engine) locate(_ context.Context, src source.Source) (string, error) {
	return e.sources.Locate(src)
}

// prepare obtains and optionally resolves every module concurrently.
// Results land at the module's own index, so order is preserved.
func (e *Engine) prepare(ctx context.Context, mods []module.Module, report *RunReport, obtain obtainFunc, resolve bool) {
	var g errgroup.Group
	g.SetLimit(e.workers)

	for i, m := range mods {
		mr := &report.Modules[i]
		g.Go(func() error {
			e.prepareOne(ctx, m, mr, obtain, resolve)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Engine) prepareOne(ctx context.Context, m module.Module, mr *ModuleReport, obtain obtainFunc, resolve bool) {
	logger := e.logger.With().Str("module", m.Name()).Logger()

	if err := e.cfg.ModuleError(m.Name()); err != nil {
		mr.Err = err
		return
	}
	if err := ctx.Err(); err != nil {
		mr.Err = errors.Wrap(err, errors.ErrCancelled, "run cancelled")
		return
	}

	dir, err := obtain(ctx, m.Source())
	if err != nil {
		logger.Debug().Err(err).Msg("Source unavailable")
		mr.Err = err
		return
	}
	mr.Dir = dir
	if !resolve {
		return
	}

	mapping, err := e.matcher.Resolve(dir, m, e.env)
	if err != nil {
		logger.Debug().Err(err).Msg("Resolution failed")
		mr.Err = err
		return
	}
	mr.Mapping = mapping
	logger.Debug().Int("records", len(mapping.Records)).Msg("Resolved module")
}

// checkCollisions runs over every resolved mapping. A collision is fatal
// for the run.
func (e *Engine) checkCollisions(report *RunReport) bool {
	mappings := make([]*matcher.Mapping, 0, len(report.Modules))
	for i := range report.Modules {
		if report.Modules[i].Mapping != nil {
			mappings = append(mappings, report.Modules[i].Mapping)
		}
	}
	if err := matcher.CheckCollisions(mappings); err != nil {
		e.logger.Error().Err(err).Msg("Destinations collide, nothing was deployed")
		report.Err = err
		return false
	}
	return true
}

type deployFunc func(ctx context.Context, mapping *matcher.Mapping, mode types.LinkMode) *executor.Report

// deploy runs fn over every resolved module. Mappings never overlap at
// this point, so modules are deployed concurrently.
func (e *Engine) deploy(ctx context.Context, report *RunReport, fn deployFunc) {
	var g errgroup.Group
	g.SetLimit(e.workers)

	for i := range report.Modules {
		mr := &report.Modules[i]
		if mr.Mapping == nil {
			continue
		}
		g.Go(func() error {
			mr.Deploy = fn(ctx, mr.Mapping, mr.Mode)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Engine) clean(ctx context.Context, mods []module.Module, report *RunReport, removeCache bool) {
	e.prepare(ctx, mods, report, e.locate, true)

	for i := range report.Modules {
		mr := &report.Modules[i]
		// An unfetched git source cannot have deployed anything
		if mr.Source.IsGit() && errors.IsErrorCode(mr.Err, errors.ErrFileNotFound) && mr.Dir == "" {
			mr.Err = nil
			mr.Note = "source not fetched, nothing to clean"
		}
	}

	e.deploy(ctx, report, e.exec.Clean)

	if !removeCache || e.dryRun {
		return
	}
	for i := range report.Modules {
		mr := &report.Modules[i]
		if !mr.Source.IsGit() || mr.Failed() || e.cfg.ModuleError(mr.Module) != nil {
			continue
		}
		if err := e.sources.Remove(mr.Source); err != nil {
			mr.Err = err
			continue
		}
		mr.CacheRemoved = true
	}
}
