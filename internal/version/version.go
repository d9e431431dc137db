package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/arthur-debert/confman/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/arthur-debert/confman/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/arthur-debert/confman/internal/version.Date={{.Date}}
)

// String returns the one-line version banner
func String() string {
	return fmt.Sprintf("confman %s (%s %s)", Version, shortCommit(), Date)
}

// Detailed returns the banner followed by build details
func Detailed() string {
	var b strings.Builder
	fmt.Fprintln(&b, String())
	fmt.Fprintf(&b, "  commit: %s\n", Commit)
	fmt.Fprintf(&b, "  built:  %s\n", Date)
	fmt.Fprintf(&b, "  target: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&b, "  go:     %s\n", runtime.Version())
	return b.String()
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
