package executor

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/arthur-debert/confman/pkg/matcher"
	"github.com/arthur-debert/confman/pkg/types"
)

// State is the observed condition of a destination
type State string

const (
	// StateMissing means the destination does not exist yet
	StateMissing State = "missing"
	// StateLinked means a symlink to the source is in place
	StateLinked State = "linked"
	// StateCopied means an identical regular file is in place
	StateCopied State = "copied"
	// StateConflict means something else occupies the destination
	StateConflict State = "conflict"
	// StateIgnored marks records whose entry has link disabled
	StateIgnored State = "ignored"
	// StateError means the destination could not be inspected
	StateError State = "error"
)

// Status is the inspection result of one destination
type Status struct {
	Record matcher.Record
	State  State
	Detail string
	Err    error
}

type observation struct {
	exists     bool
	isLink     bool
	isDir      bool
	linkTarget string
	// linksToSource: a symlink resolving to the record's source
	linksToSource bool
	// copyOfSource: a regular file byte-identical to the source
	copyOfSource bool
}

func (e *Executor) observe(rec matcher.Record) (observation, error) {
	var obs observation

	info, err := e.fs.Lstat(rec.Destination)
	if err != nil {
		if os.IsNotExist(err) {
			return obs, nil
		}
		return obs, errors.Wrapf(err, errors.ErrFileAccess, "cannot inspect %s", rec.Destination).
			WithDetail("destination", rec.Destination)
	}
	obs.exists = true
	obs.isDir = info.IsDir()

	if info.Mode()&os.ModeSymlink != 0 {
		obs.isLink = true
		target, err := e.fs.Readlink(rec.Destination)
		if err != nil {
			return obs, errors.Wrapf(err, errors.ErrFileAccess, "cannot read link %s", rec.Destination).
				WithDetail("destination", rec.Destination)
		}
		obs.linkTarget = target
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(rec.Destination), target)
		}
		obs.linksToSource = filepath.Clean(target) == filepath.Clean(rec.SourcePath)
		return obs, nil
	}

	if info.Mode().IsRegular() {
		same, err := e.sameContent(rec.SourcePath, rec.Destination, info.Size())
		if err != nil {
			return obs, err
		}
		obs.copyOfSource = same
	}
	return obs, nil
}

func (e *Executor) sameContent(src, dest string, destSize int64) (bool, error) {
	srcInfo, err := e.fs.Stat(src)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat source %s", src).WithDetail("source", src)
	}
	if srcInfo.Size() != destSize {
		return false, nil
	}
	a, err := e.fs.ReadFile(src)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot read source %s", src).WithDetail("source", src)
	}
	b, err := e.fs.ReadFile(dest)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", dest).WithDetail("destination", dest)
	}
	return bytes.Equal(a, b), nil
}

// inPlace reports whether obs is already what mode would produce
func inPlace(obs observation, mode types.LinkMode) bool {
	return (obs.linksToSource && mode.AllowsLink()) || (obs.copyOfSource && mode.AllowsCopy())
}

func describe(obs observation) string {
	switch {
	case obs.isLink:
		return "symlink to " + obs.linkTarget
	case obs.isDir:
		return "directory"
	case obs.copyOfSource:
		return "identical copy"
	default:
		return "different file"
	}
}

// Inspect reports the state of every destination in mapping without
// touching the filesystem.
func (e *Executor) Inspect(mapping *matcher.Mapping, mode types.LinkMode) []Status {
	statuses := make([]Status, 0, len(mapping.Records))
	for _, rec := range mapping.Records {
		statuses = append(statuses, e.inspectOne(rec, mode))
	}
	return statuses
}

func (e *Executor) inspectOne(rec matcher.Record, mode types.LinkMode) Status {
	st := Status{Record: rec}
	if !rec.Link {
		st.State = StateIgnored
		return st
	}

	obs, err := e.observe(rec)
	switch {
	case err != nil:
		st.State, st.Err = StateError, err
	case !obs.exists:
		st.State = StateMissing
	case obs.linksToSource && mode.AllowsLink():
		st.State = StateLinked
	case obs.copyOfSource && mode.AllowsCopy():
		st.State = StateCopied
	default:
		st.State = StateConflict
		st.Detail = describe(obs)
	}
	return st
}
