package confman

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/confman/internal/version"
	"github.com/arthur-debert/confman/pkg/engine"
	"github.com/arthur-debert/confman/pkg/ui"
	"github.com/arthur-debert/confman/pkg/ui/view"
)

func addFormatFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVarP(format, "format", "f", "auto", MsgFlagFormat)
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{"auto", "term", "text", "json", "yaml", "toml"}, cobra.ShellCompDirectiveNoFileComp))
}

func addProfileFlag(cmd *cobra.Command, global *globalOptions, profile *string) {
	cmd.Flags().StringVarP(profile, "profile", "p", "", MsgFlagProfile)
	_ = cmd.RegisterFlagCompletionFunc("profile", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		a, err := loadApp(global)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return a.cfg.ProfileNames(), cobra.ShellCompDirectiveNoFileComp
	})
}

func newApplyCmd(global *globalOptions) *cobra.Command {
	var (
		profile string
		format  string
		dryRun  bool
		force   bool
	)

	cmd := &cobra.Command{
		Use:               "apply [modules...]",
		Short:             MsgApplyShort,
		Long:              MsgApplyLong,
		Example:           MsgApplyExample,
		GroupID:           "core",
		ValidArgsFunction: moduleNamesCompletion(global),
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info().
				Strs("modules", args).
				Str("profile", profile).
				Bool("dry_run", dryRun).
				Bool("force", force).
				Msg("Applying modules")

			sel := engine.Selection{Modules: args, Profile: profile}
			return runOperation(cmd, global, format, engineOptions{dryRun: dryRun, force: force},
				func(ctx context.Context, e *engine.Engine) (*engine.RunReport, error) {
					return e.Apply(ctx, sel)
				})
		},
	}

	addProfileFlag(cmd, global, &profile)
	addFormatFlag(cmd, &format)
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)
	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)

	return cmd
}

func newFetchCmd(global *globalOptions) *cobra.Command {
	var (
		profile string
		format  string
		update  bool
	)

	cmd := &cobra.Command{
		Use:               "fetch [modules...]",
		Short:             MsgFetchShort,
		Long:              MsgFetchLong,
		GroupID:           "core",
		ValidArgsFunction: moduleNamesCompletion(global),
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info().Strs("modules", args).Bool("update", update).Msg("Fetching sources")

			sel := engine.Selection{Modules: args, Profile: profile}
			return runOperation(cmd, global, format, engineOptions{update: update},
				func(ctx context.Context, e *engine.Engine) (*engine.RunReport, error) {
					return e.Fetch(ctx, sel)
				})
		},
	}

	addProfileFlag(cmd, global, &profile)
	addFormatFlag(cmd, &format)
	cmd.Flags().BoolVarP(&update, "update", "u", false, MsgFlagUpdate)

	return cmd
}

func newStatusCmd(global *globalOptions) *cobra.Command {
	var (
		profile string
		format  string
	)

	cmd := &cobra.Command{
		Use:               "status [modules...]",
		Short:             MsgStatusShort,
		Long:              MsgStatusLong,
		GroupID:           "core",
		ValidArgsFunction: moduleNamesCompletion(global),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := engine.Selection{Modules: args, Profile: profile}
			return runOperation(cmd, global, format, engineOptions{},
				func(ctx context.Context, e *engine.Engine) (*engine.RunReport, error) {
					return e.Status(ctx, sel)
				})
		},
	}

	addProfileFlag(cmd, global, &profile)
	addFormatFlag(cmd, &format)

	return cmd
}

func newCleanCmd(global *globalOptions) *cobra.Command {
	var (
		profile string
		format  string
		dryRun  bool
		full    bool
	)

	cmd := &cobra.Command{
		Use:               "clean [modules...]",
		Short:             MsgCleanShort,
		Long:              MsgCleanLong,
		GroupID:           "core",
		ValidArgsFunction: moduleNamesCompletion(global),
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info().Strs("modules", args).Bool("full", full).Bool("dry_run", dryRun).Msg("Cleaning modules")

			sel := engine.Selection{Modules: args, Profile: profile}
			return runOperation(cmd, global, format, engineOptions{dryRun: dryRun},
				func(ctx context.Context, e *engine.Engine) (*engine.RunReport, error) {
					return e.Clean(ctx, sel, full)
				})
		},
	}

	addProfileFlag(cmd, global, &profile)
	addFormatFlag(cmd, &format)
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)
	cmd.Flags().BoolVar(&full, "full", false, MsgFlagFull)

	return cmd
}

func newResetCmd(global *globalOptions) *cobra.Command {
	var (
		format string
		dryRun bool
		full   bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:     "reset",
		Short:   MsgResetShort,
		Long:    MsgResetLong,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !dryRun && ui.IsInteractive(os.Stdin) && ui.IsInteractive(os.Stdout) {
				question := MsgResetConfirm
				if full {
					question = MsgResetConfirmFull
				}
				ok, err := ui.Confirm(question)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), MsgResetAborted)
					return nil
				}
			}

			log.Info().Bool("full", full).Bool("dry_run", dryRun).Msg("Resetting")
			return runOperation(cmd, global, format, engineOptions{dryRun: dryRun},
				func(ctx context.Context, e *engine.Engine) (*engine.RunReport, error) {
					return e.Reset(ctx, full)
				})
		},
	}

	addFormatFlag(cmd, &format)
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)
	cmd.Flags().BoolVar(&full, "full", false, MsgFlagResetFull)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, MsgFlagYes)

	return cmd
}

func newInfoCmd(global *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "info",
		Short:   MsgInfoShort,
		Long:    MsgInfoLong,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := newOutput(cmd, global, format)
			if err != nil {
				return err
			}
			a, err := loadApp(global)
			if err != nil {
				return out.fail(err)
			}
			return out.renderer.RenderInfo(view.FromConfig(a.cfg))
		},
	}

	addFormatFlag(cmd, &format)

	return cmd
}

func newVersionCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			if global.verbosity > 0 {
				fmt.Fprint(cmd.OutOrStdout(), version.Detailed())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
