package config

import (
	"sort"
	"strings"

	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/arthur-debert/confman/pkg/module"
	"github.com/arthur-debert/confman/pkg/source"
	"github.com/arthur-debert/confman/pkg/types"
)

// Config is the validated, immutable result of loading a config file
type Config struct {
	// Path is the root file; empty for in-memory configs
	Path string
	// LinkMode is the global deployment policy
	LinkMode types.LinkMode
	// Include lists the fragment files that were loaded, in load order
	Include []string
	// Profiles maps a profile name to module names
	Profiles map[string][]string
	// Modules in declaration order, root file first then fragments
	Modules []module.Module

	invalid map[string]error
}

// New assembles a Config from already-built modules
func New(mode types.LinkMode, modules ...module.Module) (*Config, error) {
	if mode == "" {
		mode = types.DefaultLinkMode
	}
	cfg := &Config{LinkMode: mode, Profiles: map[string][]string{}, invalid: map[string]error{}}
	seen := map[string]bool{}
	for _, m := range modules {
		if seen[m.Name()] {
			return nil, duplicateModule(m.Name(), "")
		}
		seen[m.Name()] = true
		cfg.Modules = append(cfg.Modules, m)
	}
	return cfg, nil
}

// MarkInvalid records a module-local error. The module stays selectable
// and fails on its own when an operation reaches it.
func (c *Config) MarkInvalid(name string, err error) {
	if c.invalid == nil {
		c.invalid = map[string]error{}
	}
	c.invalid[name] = err
}

// ModuleError returns the validation error recorded for a module, if any.
// Such modules fail on their own without affecting siblings.
func (c *Config) ModuleError(name string) error {
	return c.invalid[name]
}

// Find looks a module up by name
func (c *Config) Find(name string) (module.Module, bool) {
	for _, m := range c.Modules {
		if m.Name() == name {
			return m, true
		}
	}
	return module.Module{}, false
}

// Select returns the named modules in declaration order. No names selects all.
func (c *Config) Select(names []string) ([]module.Module, error) {
	if len(names) == 0 {
		return append([]module.Module(nil), c.Modules...), nil
	}
	want := map[string]bool{}
	for _, name := range names {
		if _, ok := c.Find(name); !ok {
			return nil, errors.Newf(errors.ErrUnknownModule, "module %q is not configured", name).
				WithDetail("module", name)
		}
		want[name] = true
	}
	var out []module.Module
	for _, m := range c.Modules {
		if want[m.Name()] {
			out = append(out, m)
		}
	}
	return out, nil
}

// Profile returns the modules of a named profile in declaration order
func (c *Config) Profile(name string) ([]module.Module, error) {
	names, ok := c.Profiles[name]
	if !ok {
		return nil, errors.Newf(errors.ErrUnknownProfile, "profile %q is not configured", name).
			WithDetail("profile", name).
			WithDetail("available", c.ProfileNames())
	}
	if len(names) == 0 {
		return nil, nil
	}
	return c.Select(names)
}

// ProfileNames lists profiles alphabetically
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LinkModeFor merges a module's own override with the global mode
func (c *Config) LinkModeFor(m module.Module) types.LinkMode {
	if mode, ok := m.LinkMode(); ok {
		return mode
	}
	if c.LinkMode == "" {
		return types.DefaultLinkMode
	}
	return c.LinkMode
}

func build(docs []document) (*Config, error) {
	root := docs[0]
	mode, err := types.ParseLinkMode(root.raw.LinkMode)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Path:     root.path,
		LinkMode: mode,
		Profiles: map[string][]string{},
		invalid:  map[string]error{},
	}

	origin := map[string]string{}
	for i, doc := range docs {
		if i > 0 {
			cfg.Include = append(cfg.Include, doc.path)
		}

		for idx, rm := range doc.raw.Modules {
			m, modErr := buildModule(rm)
			if errors.IsErrorCode(modErr, errors.ErrMissingName) {
				return nil, errors.Newf(errors.ErrMissingName, "module #%d in %s has no name", idx+1, doc.path).
					WithDetail("path", doc.path).
					WithDetail("index", idx)
			}
			if prev, dup := origin[m.Name()]; dup {
				return nil, duplicateModule(m.Name(), prev)
			}
			origin[m.Name()] = doc.path
			cfg.Modules = append(cfg.Modules, m)
			if modErr != nil {
				cfg.MarkInvalid(m.Name(), modErr)
			}
		}

		// earlier documents win, so the root file overrides fragments
		for name, members := range doc.raw.Profiles {
			if _, exists := cfg.Profiles[name]; !exists {
				cfg.Profiles[name] = append([]string(nil), members...)
			}
		}
	}
	return cfg, nil
}

func duplicateModule(name, firstSeen string) error {
	err := errors.Newf(errors.ErrDuplicateModule, "module %q is declared more than once", name).
		WithDetail("module", name)
	if firstSeen != "" {
		err.WithDetail("first_declared_in", firstSeen)
	}
	return err
}

// buildModule returns the module plus the first module-local error. A
// MissingName error is returned with a zero Module.
func buildModule(rm rawModule) (module.Module, error) {
	var localErr error
	note := func(err error) {
		if localErr == nil && err != nil {
			localErr = err
		}
	}

	src, err := source.Parse(rm.Source)
	note(err)

	opts := []module.Option{module.WithBase(strings.TrimSpace(rm.Base))}

	entries := make([]module.Entry, 0, len(rm.Entries))
	for i, re := range rm.Entries {
		e, err := buildEntry(re)
		if err != nil {
			note(errors.Wrapf(err, errors.GetErrorCode(err), "entry #%d", i+1).WithDetail("entry", i))
			continue
		}
		entries = append(entries, e)
	}
	if len(entries) > 0 {
		opts = append(opts, module.WithEntries(entries...))
	}

	exclude := make([]string, 0, len(rm.Exclude))
	for _, pattern := range rm.Exclude {
		if p := strings.TrimSpace(pattern); p != "" {
			exclude = append(exclude, p)
		}
	}
	if len(exclude) > 0 {
		opts = append(opts, module.WithExclude(exclude...))
	}

	if strings.TrimSpace(rm.LinkMode) != "" {
		mode, err := types.ParseLinkMode(rm.LinkMode)
		note(err)
		if err == nil {
			opts = append(opts, module.WithLinkMode(mode))
		}
	}

	m, err := module.New(rm.Name, src, opts...)
	if err != nil {
		return module.Module{}, err
	}
	if localErr != nil {
		localErr = annotateModule(localErr, m.Name())
	}
	return m, localErr
}

func annotateModule(err error, name string) error {
	if details := errors.GetErrorDetails(err); details != nil {
		details["module"] = name
		return err
	}
	return errors.Wrapf(err, errors.GetErrorCode(err), "module %q", name).WithDetail("module", name)
}

func buildEntry(re rawEntry) (module.Entry, error) {
	typ := re.Type
	if strings.TrimSpace(typ) == "" {
		if re.Glob == "" {
			return module.Entry{}, errors.New(errors.ErrInvalidEntry, "entry has no type")
		}
		typ = string(module.KindGlob)
	}
	kind, err := module.ParseKind(typ)
	if err != nil {
		return module.Entry{}, err
	}

	e := module.NewEntry(strings.TrimSpace(firstNonEmpty(re.Value, re.Path, re.Glob)), kind)
	if re.Link != nil {
		e.Link = *re.Link
	}
	e.MapDir = strings.TrimSpace(firstNonEmpty(re.MapsTo, re.MapDir))
	e.Flatten = re.Flatten
	for _, o := range re.OS {
		if o = module.NormalizeOS(o); o != "" {
			e.OS = append(e.OS, o)
		}
	}
	e.Rename = re.Rename

	if err := e.Validate(); err != nil {
		return module.Entry{}, err
	}

	if len(re.Rename) > 0 {
		e.Rename = make(map[string]string, len(re.Rename))
		for from, to := range re.Rename {
			e.Rename[module.CleanRelPath(from)] = module.CleanRelPath(to)
		}
	}
	return e, nil
}
