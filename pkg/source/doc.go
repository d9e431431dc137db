// Package source classifies module source descriptors.
//
// A descriptor is either a remote git repository or a local directory:
//
//	"owner/repo"                  -> git, https://github.com/owner/repo.git
//	"https://gitlab.com/o/r"      -> git, as given
//	"git@github.com:o/r.git"      -> git, scp-style ssh
//	"~/dots", "/srv/dots"         -> path
//	"C:\dots", `\\server\share`   -> path (windows targets only)
//
// Anything else is a classification error. String() is the inverse of
// Parse: sources given in shorthand are written back in shorthand, so
// Parse(Parse(s).String()) == Parse(s) for every valid s.
package source
