package confman

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/confman/pkg/config"
	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/arthur-debert/confman/pkg/fetch"
	"github.com/arthur-debert/confman/pkg/paths"
	"github.com/arthur-debert/confman/pkg/source"
)

// dirLocator places every clone in one fixed directory
type dirLocator string

func (d dirLocator) SourceCachePath(string) string { return string(d) }

func newInitCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "init [repo]",
		Short:   MsgInitShort,
		Long:    MsgInitLong,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := paths.New()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return initStarterConfig(cmd, global, p)
			}
			return initFromRepository(cmd, global, p, args[0])
		},
	}
}

func initStarterConfig(cmd *cobra.Command, global *globalOptions, p paths.Paths) error {
	target := p.FindConfigFile(global.configPath)
	if target == "" {
		target = filepath.Join(p.ConfigDir(), paths.ConfigFileNames[0])
	}
	if _, err := os.Stat(target); err == nil {
		printf(cmd, global, MsgConfigExists, target)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot create %s", filepath.Dir(target))
	}
	if err := os.WriteFile(target, config.StarterConfig(), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot write %s", target).WithDetail("path", target)
	}

	log.Info().Str("path", target).Msg("Wrote starter config")
	printf(cmd, global, MsgConfigCreated, target)
	return nil
}

func initFromRepository(cmd *cobra.Command, global *globalOptions, p paths.Paths, repo string) error {
	src, err := source.Parse(repo)
	if err != nil {
		return err
	}
	if !src.IsGit() {
		return errors.Newf(errors.ErrInvalidInput, MsgErrInitNotGit, repo).WithDetail("source", repo)
	}

	dir := p.ConfigDir()
	if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 {
		return errors.Newf(errors.ErrInvalidInput, MsgErrInitNotEmpty, dir).WithDetail("path", dir)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := fetch.NewRouter(fetch.Options{Git: fetch.NewGit(dirLocator(dir), false)})
	if _, err := router.Fetch(ctx, src); err != nil {
		return err
	}
	printf(cmd, global, MsgRepoCloned, src, dir)

	for _, candidate := range p.ConfigFileCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return nil
		}
	}
	printf(cmd, global, MsgRepoNoConfig, src)
	return nil
}

func printf(cmd *cobra.Command, global *globalOptions, format string, args ...interface{}) {
	if global.quiet {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
