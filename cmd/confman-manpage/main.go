package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/confman/cmd/confman"
	"github.com/arthur-debert/confman/internal/version"
)

func main() {
	rootCmd := confman.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "CONFMAN",
		Section: "1",
		Source:  "confman " + version.Version,
		Manual:  "confman manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
