package executor

import (
	"time"

	"github.com/arthur-debert/confman/pkg/matcher"
)

// Action is what happened, or would happen, to one destination
type Action string

const (
	ActionLink      Action = "link"
	ActionCopy      Action = "copy"
	ActionRemove    Action = "remove"
	ActionUnchanged Action = "unchanged"
	// ActionSkip marks records whose entry has link disabled
	ActionSkip      Action = "skip"
	ActionConflict  Action = "conflict"
	ActionFailed    Action = "failed"
	ActionCancelled Action = "cancelled"
)

// Result describes the outcome for a single destination
type Result struct {
	Record matcher.Record
	Action Action
	// Replaced is set when Force overwrote an existing destination
	Replaced bool
	// DryRun results describe planned actions only
	DryRun   bool
	Message  string
	Err      error
	Duration time.Duration
}

// Mutated reports whether the filesystem was changed for this destination
func (r Result) Mutated() bool {
	if r.DryRun {
		return false
	}
	switch r.Action {
	case ActionLink, ActionCopy, ActionRemove:
		return true
	default:
		return false
	}
}

// Report collects the results of one module
type Report struct {
	Module  string
	Results []Result
}

// Mutations counts destinations that were changed
func (r *Report) Mutations() int {
	n := 0
	for _, res := range r.Results {
		if res.Mutated() {
			n++
		}
	}
	return n
}

// Count returns how many results have the given action
func (r *Report) Count(action Action) int {
	n := 0
	for _, res := range r.Results {
		if res.Action == action {
			n++
		}
	}
	return n
}

// Failed reports whether any destination failed outright
func (r *Report) Failed() bool {
	return r.Count(ActionFailed) > 0 || r.Count(ActionCancelled) > 0
}

// HasWarnings reports conflicts, which leave the run successful
func (r *Report) HasWarnings() bool {
	return r.Count(ActionConflict) > 0
}
