package view

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arthur-debert/confman/pkg/config"
	"github.com/arthur-debert/confman/pkg/module"
)

// Info describes a loaded configuration
type Info struct {
	ConfigPath string              `json:"config" yaml:"config" toml:"config"`
	LinkMode   string              `json:"link_mode" yaml:"link_mode" toml:"link_mode"`
	Include    []string            `json:"include,omitempty" yaml:"include,omitempty" toml:"include,omitempty"`
	Profiles   map[string][]string `json:"profiles,omitempty" yaml:"profiles,omitempty" toml:"profiles,omitempty"`
	Modules    []ModuleInfo        `json:"modules" yaml:"modules" toml:"modules"`
}

// ModuleInfo is the declared shape of one module
type ModuleInfo struct {
	Name       string      `json:"name" yaml:"name" toml:"name"`
	Source     string      `json:"source" yaml:"source" toml:"source"`
	SourceKind string      `json:"source_kind" yaml:"source_kind" toml:"source_kind"`
	Base       string      `json:"base,omitempty" yaml:"base,omitempty" toml:"base,omitempty"`
	LinkMode   string      `json:"link_mode" yaml:"link_mode" toml:"link_mode"`
	Exclude    []string    `json:"exclude,omitempty" yaml:"exclude,omitempty" toml:"exclude,omitempty"`
	Entries    []EntryInfo `json:"entries,omitempty" yaml:"entries,omitempty" toml:"entries,omitempty"`
	Error      string      `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`

	// DefaultEntries is set when the module declares no entries of its own
	DefaultEntries bool `json:"default_entries,omitempty" yaml:"default_entries,omitempty" toml:"default_entries,omitempty"`
}

// EntryInfo is one declared entry
type EntryInfo struct {
	Type    string            `json:"type" yaml:"type" toml:"type"`
	Value   string            `json:"value" yaml:"value" toml:"value"`
	Link    bool              `json:"link" yaml:"link" toml:"link"`
	MapsTo  string            `json:"maps_to,omitempty" yaml:"maps_to,omitempty" toml:"maps_to,omitempty"`
	Flatten bool              `json:"flatten,omitempty" yaml:"flatten,omitempty" toml:"flatten,omitempty"`
	OS      []string          `json:"os,omitempty" yaml:"os,omitempty" toml:"os,omitempty"`
	Rename  map[string]string `json:"rename,omitempty" yaml:"rename,omitempty" toml:"rename,omitempty"`
}

// FromConfig converts a loaded configuration
func FromConfig(cfg *config.Config) *Info {
	info := &Info{
		ConfigPath: cfg.Path,
		LinkMode:   string(cfg.LinkMode),
		Include:    cfg.Include,
		Profiles:   cfg.Profiles,
		Modules:    make([]ModuleInfo, 0, len(cfg.Modules)),
	}
	for _, m := range cfg.Modules {
		info.Modules = append(info.Modules, fromModuleConfig(cfg, m))
	}
	return info
}

func fromModuleConfig(cfg *config.Config, m module.Module) ModuleInfo {
	mi := ModuleInfo{
		Name:       m.Name(),
		Source:     m.Source().String(),
		SourceKind: string(m.Source().Kind),
		LinkMode:   string(cfg.LinkModeFor(m)),
		Exclude:    m.Exclude(),

		DefaultEntries: len(m.DeclaredEntries()) == 0,
	}
	if base, ok := m.Base(); ok {
		mi.Base = base
	}
	if err := cfg.ModuleError(m.Name()); err != nil {
		mi.Error = err.Error()
	}
	for _, e := range m.Entries() {
		mi.Entries = append(mi.Entries, EntryInfo{
			Type:    string(e.Kind),
			Value:   e.Value,
			Link:    e.Link,
			MapsTo:  e.MapDir,
			Flatten: e.Flattens(),
			OS:      e.OS,
			Rename:  e.Rename,
		})
	}
	return mi
}

// Markdown renders the configuration as a markdown document
func (i *Info) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# confman configuration\n\n")
	fmt.Fprintf(&b, "- **Config:** `%s`\n", orNone(i.ConfigPath))
	fmt.Fprintf(&b, "- **Link mode:** %s\n", i.LinkMode)
	if len(i.Include) > 0 {
		fmt.Fprintf(&b, "- **Includes:** %s\n", codeList(i.Include))
	}

	if len(i.Profiles) > 0 {
		fmt.Fprintf(&b, "\n## Profiles\n\n")
		names := make([]string, 0, len(i.Profiles))
		for name := range i.Profiles {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "- **%s:** %s\n", name, orNone(strings.Join(i.Profiles[name], ", ")))
		}
	}

	fmt.Fprintf(&b, "\n## Modules\n")
	if len(i.Modules) == 0 {
		fmt.Fprintf(&b, "\nNo modules configured.\n")
	}
	for _, m := range i.Modules {
		fmt.Fprintf(&b, "\n### %s\n\n", m.Name)
		fmt.Fprintf(&b, "- **Source:** `%s` (%s)\n", orNone(m.Source), orNone(m.SourceKind))
		fmt.Fprintf(&b, "- **Base:** `%s`\n", orDefault(m.Base, "~"))
		fmt.Fprintf(&b, "- **Link mode:** %s\n", m.LinkMode)
		if len(m.Exclude) > 0 {
			fmt.Fprintf(&b, "- **Exclude:** %s\n", codeList(m.Exclude))
		}
		if m.Error != "" {
			fmt.Fprintf(&b, "- **Error:** %s\n", m.Error)
		}
		if m.DefaultEntries {
			fmt.Fprintf(&b, "- **Entries:** none declared, every file is linked\n")
		}
		if len(m.Entries) > 0 {
			fmt.Fprintf(&b, "\n| Type | Value | Maps to | Link | OS |\n|---|---|---|---|---|\n")
			for _, e := range m.Entries {
				fmt.Fprintf(&b, "| %s | `%s` | %s | %t | %s |\n",
					e.Type, e.Value, orDefault(e.MapsTo, "-"), e.Link, orDefault(strings.Join(e.OS, ", "), "any"))
			}
		}
	}
	return b.String()
}

func codeList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = "`" + item + "`"
	}
	return strings.Join(quoted, ", ")
}

func orNone(s string) string {
	return orDefault(s, "none")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
