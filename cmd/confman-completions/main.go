package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/confman/cmd/confman"
)

// generator writes the completion script of one shell
type generator struct {
	file string
	gen  func(root *cobra.Command, w io.Writer) error
}

var generators = map[string]generator{
	"bash": {"confman.bash", func(root *cobra.Command, w io.Writer) error {
		return root.GenBashCompletionV2(w, true)
	}},
	"zsh": {"_confman", func(root *cobra.Command, w io.Writer) error {
		return root.GenZshCompletion(w)
	}},
	"fish": {"confman.fish", func(root *cobra.Command, w io.Writer) error {
		return root.GenFishCompletion(w, true)
	}},
	"powershell": {"confman.ps1", func(root *cobra.Command, w io.Writer) error {
		return root.GenPowerShellCompletionWithDesc(w)
	}},
}

func shellNames() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func main() {
	var outputDir string

	cmd := &cobra.Command{
		Use:       "confman-completions [shell...]",
		Short:     "Generate shell completion scripts for confman",
		ValidArgs: shellNames(),
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shells := args
			if len(shells) == 0 {
				shells = shellNames()
			}
			if outputDir == "" {
				if len(shells) != 1 {
					return fmt.Errorf("name one shell or pass --output-dir")
				}
				return generators[shells[0]].gen(confman.NewRootCmd(), cmd.OutOrStdout())
			}

			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return err
			}
			for _, shell := range shells {
				path := filepath.Join(outputDir, generators[shell].file)
				if err := writeScript(path, generators[shell]); err != nil {
					return fmt.Errorf("generating %s completion: %w", shell, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Write one file per shell into this directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func writeScript(path string, g generator) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return g.gen(confman.NewRootCmd(), f)
}
