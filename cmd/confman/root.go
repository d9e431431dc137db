package confman

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/confman/internal/version"
	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/arthur-debert/confman/pkg/logging"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	global := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "confman",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.String(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(global.verbosity, global.quiet)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand: show help but fail
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&global.configPath, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().CountVarP(&global.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVarP(&global.quiet, "quiet", "q", false, MsgFlagQuiet)

	// cobra adds its own --version only when none is registered
	rootCmd.Flags().BoolVarP(&global.showVersion, "version", "V", false, MsgFlagVersion)
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})
	rootCmd.SetHelpCommandGroupID("misc")
	rootCmd.SetCompletionCommandGroupID("misc")

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newApplyCmd(global))
	rootCmd.AddCommand(newFetchCmd(global))
	rootCmd.AddCommand(newStatusCmd(global))
	rootCmd.AddCommand(newCleanCmd(global))
	rootCmd.AddCommand(newResetCmd(global))
	rootCmd.AddCommand(newInitCmd(global))
	rootCmd.AddCommand(newInfoCmd(global))
	rootCmd.AddCommand(newVersionCmd(global))

	return rootCmd
}
