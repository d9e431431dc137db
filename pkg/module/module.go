package module

import (
	"strings"

	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/arthur-debert/confman/pkg/source"
	"github.com/arthur-debert/confman/pkg/types"
)

// Module is a named set of entries deployed from one source. Values are
// immutable once built; accessors return copies.
type Module struct {
	name     string
	source   source.Source
	base     string
	entries  []Entry
	exclude  []string
	linkMode types.LinkMode
}

// Option configures a Module during New
type Option func(*Module)

// WithBase sets the destination root. "~" is expanded at resolution time.
func WithBase(base string) Option {
	return func(m *Module) { m.base = base }
}

// WithEntries sets the ordered entry list
func WithEntries(entries ...Entry) Option {
	return func(m *Module) { m.entries = append([]Entry(nil), entries...) }
}

// WithExclude sets the exclude patterns
func WithExclude(patterns ...string) Option {
	return func(m *Module) { m.exclude = append([]string(nil), patterns...) }
}

// WithLinkMode overrides the config-wide link mode for this module
func WithLinkMode(mode types.LinkMode) Option {
	return func(m *Module) { m.linkMode = mode }
}

// New builds a module. Only the name is validated here.
func New(name string, src source.Source, opts ...Option) (Module, error) {
	if strings.TrimSpace(name) == "" {
		return Module{}, errors.New(errors.ErrMissingName, "module name must not be empty or whitespace")
	}

	m := Module{name: name, source: src}
	for _, opt := range opts {
		opt(&m)
	}
	return m, nil
}

func (m Module) Name() string { return m.name }

func (m Module) Source() source.Source { return m.source }

// Base returns the configured destination root, if any
func (m Module) Base() (string, bool) {
	return m.base, m.base != ""
}

// Entries returns the declared entries, or the default entry when none are declared
func (m Module) Entries() []Entry {
	if len(m.entries) == 0 {
		return []Entry{DefaultEntry()}
	}
	return append([]Entry(nil), m.entries...)
}

// DeclaredEntries returns only what the config listed, possibly nothing
func (m Module) DeclaredEntries() []Entry {
	return append([]Entry(nil), m.entries...)
}

func (m Module) Exclude() []string {
	return append([]string(nil), m.exclude...)
}

// LinkMode returns the module's own override, if set
func (m Module) LinkMode() (types.LinkMode, bool) {
	return m.linkMode, m.linkMode != ""
}
