package module

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/bmatcuk/doublestar/v4"
)

// Kind selects how an entry's value is matched against the source tree
type Kind string

const (
	// KindFile matches one literal path
	KindFile Kind = "file"
	// KindDirectory matches every file below a directory
	KindDirectory Kind = "directory"
	// KindGlob matches files against a shell glob
	KindGlob Kind = "glob"
)

// DefaultGlob is the pattern of the entry used when a module declares none
const DefaultGlob = "**/*"

// ParseKind converts a config value. "dir" is accepted for directory.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file":
		return KindFile, nil
	case "directory", "dir":
		return KindDirectory, nil
	case "glob":
		return KindGlob, nil
	default:
		return "", errors.Newf(errors.ErrInvalidEntry, "unknown entry type %q (want file, directory or glob)", s).
			WithDetail("type", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Entry is one matching rule within a module
type Entry struct {
	Kind  Kind
	Value string
	// Link false keeps the entry in the mapping without deploying it
	Link bool
	// MapDir is a destination subdirectory relative to the module base
	MapDir  string
	Flatten bool
	// OS restricts the entry to these GOOS values; empty means everywhere
	OS []string
	// Rename maps matched relative paths to destination relative paths
	Rename map[string]string
}

// NewEntry returns a linked, unflattened entry without OS restriction
func NewEntry(value string, kind Kind) Entry {
	return Entry{Kind: kind, Value: value, Link: true}
}

// DefaultEntry matches everything in the source tree
func DefaultEntry() Entry {
	return NewEntry(DefaultGlob, KindGlob)
}

// AppliesTo reports whether the entry is active on goos
func (e Entry) AppliesTo(goos string) bool {
	if len(e.OS) == 0 {
		return true
	}
	goos = NormalizeOS(goos)
	for _, o := range e.OS {
		if NormalizeOS(o) == goos {
			return true
		}
	}
	return false
}

// Flattens reports whether matched files lose their directory structure.
// Directory entries never flatten.
func (e Entry) Flattens() bool {
	return e.Flatten && e.Kind != KindDirectory
}

// RenameFor returns the renamed destination for a matched relative path
func (e Entry) RenameFor(rel string) (string, bool) {
	if len(e.Rename) == 0 {
		return "", false
	}
	to, ok := e.Rename[CleanRelPath(rel)]
	return to, ok
}

// Validate checks the entry's value, map_dir and rename targets. It is run
// by the config layer; the matcher assumes validated entries.
func (e Entry) Validate() error {
	switch e.Kind {
	case KindFile, KindDirectory, KindGlob:
	default:
		return errors.Newf(errors.ErrInvalidEntry, "unknown entry type %q", e.Kind)
	}

	if strings.TrimSpace(e.Value) == "" {
		return errors.Newf(errors.ErrInvalidEntry, "%s entry has no value", e.Kind)
	}

	if e.Kind == KindGlob {
		if !doublestar.ValidatePattern(filepath.ToSlash(e.Value)) {
			return errors.Newf(errors.ErrInvalidGlob, "invalid glob pattern %q", e.Value).
				WithDetail("pattern", e.Value)
		}
	} else if !IsLocalRelPath(e.Value) {
		return errors.Newf(errors.ErrInvalidEntry, "%s entry value %q must be relative to the module source", e.Kind, e.Value)
	}

	if e.MapDir != "" && !IsLocalRelPath(e.MapDir) {
		return errors.Newf(errors.ErrInvalidDestination, "maps_to %q must stay inside the module base", e.MapDir).
			WithDetail("maps_to", e.MapDir)
	}

	for _, from := range sortedKeys(e.Rename) {
		to := e.Rename[from]
		if !IsLocalRelPath(from) || !IsLocalRelPath(to) {
			return errors.Newf(errors.ErrInvalidDestination, "rename %q -> %q must use relative paths inside the module", from, to).
				WithDetail("from", from).
				WithDetail("to", to)
		}
	}
	return nil
}

// NormalizeOS lowercases an OS identifier and maps common aliases to GOOS
func NormalizeOS(o string) string {
	switch o = strings.ToLower(strings.TrimSpace(o)); o {
	case "macos", "osx", "mac":
		return "darwin"
	case "win":
		return "windows"
	default:
		return o
	}
}

// CleanRelPath normalizes a relative path to the slash-separated form used
// for matching, e.g. "./a\\b/" becomes "a/b".
func CleanRelPath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	cleaned := path.Clean(p)
	if cleaned == "." {
		return ""
	}
	return strings.TrimPrefix(cleaned, "/")
}

// IsLocalRelPath reports whether p is relative and does not climb above its root
func IsLocalRelPath(p string) bool {
	slashed := strings.ReplaceAll(p, `\`, "/")
	if slashed == "" || strings.HasPrefix(slashed, "/") || filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return false
	}
	cleaned := path.Clean(slashed)
	return cleaned != ".." && !strings.HasPrefix(cleaned, "../")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
