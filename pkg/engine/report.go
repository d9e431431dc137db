package engine

import (
	"time"

	"github.com/arthur-debert/confman/pkg/executor"
	"github.com/arthur-debert/confman/pkg/matcher"
	"github.com/arthur-debert/confman/pkg/source"
	"github.com/arthur-debert/confman/pkg/types"
)

// Outcome summarizes a run
type Outcome int

const (
	Succeeded Outcome = iota
	SucceededWithWarnings
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case SucceededWithWarnings:
		return "succeeded with warnings"
	default:
		return "failed"
	}
}

// ModuleReport is what happened to one module during a run
type ModuleReport struct {
	Module string
	Source source.Source
	// Dir is the local source tree, once fetched or located
	Dir  string
	Mode types.LinkMode
	// Mapping is nil when resolution did not run or failed
	Mapping *matcher.Mapping
	// Deploy holds apply or clean results
	Deploy *executor.Report
	// Statuses holds status results
	Statuses []executor.Status
	// Note carries a one-line explanation for modules skipped on purpose
	Note string
	// CacheRemoved is set when clean removed the fetched source
	CacheRemoved bool
	// Err is the module-local failure, if any
	Err error
}

// Failed reports whether the module failed as a whole, any of its
// destinations failed, or a destination could not be inspected
func (m *ModuleReport) Failed() bool {
	if m.Err != nil {
		return true
	}
	if m.Deploy != nil && m.Deploy.Failed() {
		return true
	}
	for _, st := range m.Statuses {
		if st.State == executor.StateError {
			return true
		}
	}
	return false
}

// HasWarnings reports conflicts left in place
func (m *ModuleReport) HasWarnings() bool {
	if m.Deploy != nil && m.Deploy.HasWarnings() {
		return true
	}
	for _, st := range m.Statuses {
		if st.State == executor.StateConflict {
			return true
		}
	}
	return false
}

// RunReport is the result of one engine operation
type RunReport struct {
	Operation string
	DryRun    bool
	// Modules in selection order
	Modules []ModuleReport
	// Err is a run-wide failure, such as colliding destinations
	Err      error
	Duration time.Duration
}

// Outcome classifies the run
func (r *RunReport) Outcome() Outcome {
	if r.Err != nil {
		return Failed
	}
	warned := false
	for i := range r.Modules {
		if r.Modules[i].Failed() {
			return Failed
		}
		if r.Modules[i].HasWarnings() {
			warned = true
		}
	}
	if warned {
		return SucceededWithWarnings
	}
	return Succeeded
}

// Failures returns the reports of failed modules
func (r *RunReport) Failures() []ModuleReport {
	var out []ModuleReport
	for _, m := range r.Modules {
		if m.Failed() {
			out = append(out, m)
		}
	}
	return out
}
