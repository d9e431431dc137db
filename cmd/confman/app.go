package confman

import (
	"context"
	stderrors "errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/confman/pkg/config"
	"github.com/arthur-debert/confman/pkg/engine"
	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/arthur-debert/confman/pkg/fetch"
	"github.com/arthur-debert/confman/pkg/paths"
	"github.com/arthur-debert/confman/pkg/types"
	"github.com/arthur-debert/confman/pkg/ui"
	"github.com/arthur-debert/confman/pkg/ui/view"
)

// ErrRunFailed is returned once a failed run has already been reported.
// The caller only needs to exit non-zero.
var ErrRunFailed = stderrors.New("run failed")

// globalOptions holds the persistent flags of the root command
type globalOptions struct {
	configPath  string
	verbosity   int
	quiet       bool
	showVersion bool
}

// app is the loaded state a command works on
type app struct {
	paths paths.Paths
	cfg   *config.Config
	env   types.Environment
}

func loadApp(global *globalOptions) (*app, error) {
	p, err := paths.New()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(p.FindConfigFile(global.configPath))
	if err != nil {
		return nil, err
	}
	env, err := types.CurrentEnvironment()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot read the process environment")
	}
	return &app{paths: p, cfg: cfg, env: env}, nil
}

type engineOptions struct {
	dryRun bool
	force  bool
	update bool
}

func (a *app) engine(opts engineOptions) *engine.Engine {
	router := fetch.NewRouter(fetch.Options{Cache: a.paths, Update: opts.update})
	return engine.New(a.cfg, engine.Options{
		Sources:    router,
		Env:        a.env,
		DryRun:     opts.dryRun,
		Force:      opts.force,
		SourcesDir: a.paths.SourcesDir(),
		StateDir:   a.paths.StateDir(),
	})
}

// output renders command results in the selected format
type output struct {
	format   ui.Format
	renderer ui.Renderer
	quiet    bool
}

func newOutput(cmd *cobra.Command, global *globalOptions, formatFlag string) (*output, error) {
	format, err := ui.ParseFormat(formatFlag)
	if err != nil {
		return nil, err
	}
	renderer, err := ui.NewRenderer(format, cmd.OutOrStdout(), ui.Options{Verbose: global.verbosity > 0})
	if err != nil {
		return nil, err
	}
	return &output{format: format, renderer: renderer, quiet: global.quiet}, nil
}

// report renders a run. A failed run becomes ErrRunFailed.
func (o *output) report(report *engine.RunReport) error {
	failed := report.Outcome() == engine.Failed
	if !o.quiet || failed || o.format.IsStructured() {
		if err := o.renderer.RenderRun(view.FromRun(report)); err != nil {
			return err
		}
	}
	if failed {
		return ErrRunFailed
	}
	return nil
}

// fail renders err in structured formats. Text errors are printed by main.
func (o *output) fail(err error) error {
	if !o.format.IsStructured() {
		return err
	}
	if rerr := o.renderer.RenderError(err); rerr != nil {
		return rerr
	}
	return ErrRunFailed
}

func (o *output) message(msg string) error {
	if o.quiet && !o.format.IsStructured() {
		return nil
	}
	return o.renderer.RenderMessage(msg)
}

// operation is one engine call made by a command
type operation func(ctx context.Context, e *engine.Engine) (*engine.RunReport, error)

// runOperation loads the config, runs op until it finishes or the process
// is interrupted, and renders the report.
func runOperation(cmd *cobra.Command, global *globalOptions, formatFlag string, opts engineOptions, op operation) error {
	out, err := newOutput(cmd, global, formatFlag)
	if err != nil {
		return err
	}
	a, err := loadApp(global)
	if err != nil {
		return out.fail(err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := op(ctx, a.engine(opts))
	if err != nil {
		return out.fail(err)
	}
	return out.report(report)
}

// moduleNamesCompletion completes configured module names not given yet
func moduleNamesCompletion(global *globalOptions) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		a, err := loadApp(global)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		given := make(map[string]bool, len(args))
		for _, arg := range args {
			given[arg] = true
		}
		var names []string
		for _, m := range a.cfg.Modules {
			if !given[m.Name()] {
				names = append(names, m.Name())
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
