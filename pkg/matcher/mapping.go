package matcher

import (
	"path/filepath"
	"sort"

	"github.com/arthur-debert/confman/pkg/errors"
)

// Record is one resolved source-to-destination pair
type Record struct {
	Module string
	// Source is the slash-separated path relative to the module root
	Source string
	// SourcePath is the absolute path of the source file
	SourcePath string
	// Destination is absolute
	Destination string
	// Link is false for entries recorded but not deployed
	Link bool
	// Entry is the index of the entry that produced the record
	Entry int
}

// Mapping is the resolved record list of one module, in production order
type Mapping struct {
	Module  string
	Root    string
	Base    string
	Records []Record
}

// Linked returns the records that are deployed
func (m *Mapping) Linked() []Record {
	if m == nil {
		return nil
	}
	out := make([]Record, 0, len(m.Records))
	for _, r := range m.Records {
		if r.Link {
			out = append(out, r)
		}
	}
	return out
}

// Lookup finds the record for a destination
func (m *Mapping) Lookup(destination string) (Record, bool) {
	for _, r := range m.Records {
		if r.Destination == destination {
			return r, true
		}
	}
	return Record{}, false
}

// CheckCollisions verifies that no two modules deploy to the same path or
// to paths nested inside each other. It runs over every module's mapping
// before anything is written.
func CheckCollisions(mappings []*Mapping) error {
	owner := map[string]string{}
	for _, m := range mappings {
		if m == nil {
			continue
		}
		for _, r := range m.Linked() {
			dest := filepath.Clean(r.Destination)
			if prev, ok := owner[dest]; ok && prev != m.Module {
				return collision(dest, prev, m.Module)
			}
			owner[dest] = m.Module
		}
	}

	dests := make([]string, 0, len(owner))
	for dest := range owner {
		dests = append(dests, dest)
	}
	sort.Strings(dests)

	for _, dest := range dests {
		mod := owner[dest]
		for child, parent := dest, filepath.Dir(dest); parent != child; child, parent = parent, filepath.Dir(parent) {
			if other, ok := owner[parent]; ok && other != mod {
				return collision(parent, other, mod).WithDetail("nested", dest)
			}
		}
	}
	return nil
}

func collision(dest, first, second string) *errors.Error {
	return errors.Newf(errors.ErrDestinationCollision,
		"modules %q and %q both deploy to %s", first, second, dest).
		WithDetail("destination", dest).
		WithDetail("modules", []string{first, second})
}
