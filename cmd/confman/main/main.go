package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/arthur-debert/confman/cmd/confman"
	"github.com/arthur-debert/confman/pkg/style"
)

func main() {
	rootCmd := confman.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// Failed runs were already reported by the command
		if !stderrors.Is(err, confman.ErrRunFailed) {
			fmt.Fprintln(os.Stderr, style.ErrorStyle.Render(fmt.Sprintf("Error: %v", err)))
		}
		os.Exit(1)
	}
}
