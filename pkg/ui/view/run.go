package view

import (
	"github.com/arthur-debert/confman/pkg/engine"
	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/arthur-debert/confman/pkg/executor"
)

// Display kinds, mirrored by the style package
const (
	KindDone    = "done"
	KindPending = "pending"
	KindWarning = "warning"
	KindError   = "error"
	KindMuted   = "muted"
)

// Run is the rendered form of an engine run
type Run struct {
	Operation string   `json:"operation" yaml:"operation" toml:"operation"`
	DryRun    bool     `json:"dry_run" yaml:"dry_run" toml:"dry_run"`
	Outcome   string   `json:"outcome" yaml:"outcome" toml:"outcome"`
	Error     string   `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
	Modules   []Module `json:"modules" yaml:"modules" toml:"modules"`
}

// Module is one module of a run
type Module struct {
	Name         string `json:"name" yaml:"name" toml:"name"`
	Source       string `json:"source" yaml:"source" toml:"source"`
	Dir          string `json:"dir,omitempty" yaml:"dir,omitempty" toml:"dir,omitempty"`
	Mode         string `json:"link_mode" yaml:"link_mode" toml:"link_mode"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
	Retryable    bool   `json:"retryable,omitempty" yaml:"retryable,omitempty" toml:"retryable,omitempty"`
	Note         string `json:"note,omitempty" yaml:"note,omitempty" toml:"note,omitempty"`
	CacheRemoved bool   `json:"cache_removed,omitempty" yaml:"cache_removed,omitempty" toml:"cache_removed,omitempty"`
	Files        []File `json:"files,omitempty" yaml:"files,omitempty" toml:"files,omitempty"`

	Kind string `json:"-" yaml:"-" toml:"-"`
}

// File is one destination of a module
type File struct {
	Source      string `json:"source" yaml:"source" toml:"source"`
	Destination string `json:"destination" yaml:"destination" toml:"destination"`
	Action      string `json:"action,omitempty" yaml:"action,omitempty" toml:"action,omitempty"`
	State       string `json:"state,omitempty" yaml:"state,omitempty" toml:"state,omitempty"`
	Detail      string `json:"detail,omitempty" yaml:"detail,omitempty" toml:"detail,omitempty"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`

	Kind string `json:"-" yaml:"-" toml:"-"`
	// Notable files are shown without --verbose
	Notable bool `json:"-" yaml:"-" toml:"-"`
}

// FromRun converts an engine report
func FromRun(report *engine.RunReport) *Run {
	run := &Run{
		Operation: report.Operation,
		DryRun:    report.DryRun,
		Outcome:   report.Outcome().String(),
		Modules:   make([]Module, 0, len(report.Modules)),
	}
	if report.Err != nil {
		run.Error = report.Err.Error()
	}

	for i := range report.Modules {
		run.Modules = append(run.Modules, fromModule(&report.Modules[i]))
	}
	return run
}

func fromModule(mr *engine.ModuleReport) Module {
	m := Module{
		Name:         mr.Module,
		Source:       mr.Source.String(),
		Dir:          mr.Dir,
		Mode:         string(mr.Mode),
		Note:         mr.Note,
		CacheRemoved: mr.CacheRemoved,
		Kind:         KindDone,
	}
	if mr.Err != nil {
		m.Error = mr.Err.Error()
		m.Retryable = errors.IsRetryable(mr.Err)
	}

	if mr.Deploy != nil {
		for _, res := range mr.Deploy.Results {
			m.Files = append(m.Files, fromResult(res))
		}
	}
	for _, st := range mr.Statuses {
		m.Files = append(m.Files, fromStatus(st))
	}

	switch {
	case mr.Failed():
		m.Kind = KindError
	case mr.HasWarnings():
		m.Kind = KindWarning
	case mr.Note != "":
		m.Kind = KindMuted
	}
	return m
}

func fromResult(res executor.Result) File {
	f := File{
		Source:      res.Record.Source,
		Destination: res.Record.Destination,
		Action:      string(res.Action),
		Detail:      res.Message,
		Kind:        ActionKind(res.Action, res.DryRun),
	}
	if res.Err != nil {
		f.Error = res.Err.Error()
	}
	f.Notable = f.Kind != KindMuted
	return f
}

func fromStatus(st executor.Status) File {
	f := File{
		Source:      st.Record.Source,
		Destination: st.Record.Destination,
		State:       string(st.State),
		Detail:      st.Detail,
		Kind:        StateKind(st.State),
		Notable:     true,
	}
	if st.Err != nil {
		f.Error = st.Err.Error()
	}
	return f
}

// ActionKind maps a deployment action to its display kind
func ActionKind(action executor.Action, dryRun bool) string {
	switch action {
	case executor.ActionLink, executor.ActionCopy, executor.ActionRemove:
		if dryRun {
			return KindPending
		}
		return KindDone
	case executor.ActionConflict:
		return KindWarning
	case executor.ActionFailed, executor.ActionCancelled:
		return KindError
	default:
		return KindMuted
	}
}

// StateKind maps an inspected state to its display kind
func StateKind(state executor.State) string {
	switch state {
	case executor.StateLinked, executor.StateCopied:
		return KindDone
	case executor.StateMissing:
		return KindPending
	case executor.StateConflict:
		return KindWarning
	case executor.StateError:
		return KindError
	default:
		return KindMuted
	}
}

// Counts tallies files by action or state
func (r *Run) Counts() map[string]int {
	counts := map[string]int{}
	for _, m := range r.Modules {
		for _, f := range m.Files {
			key := f.Action
			if key == "" {
				key = f.State
			}
			counts[key]++
		}
	}
	return counts
}
