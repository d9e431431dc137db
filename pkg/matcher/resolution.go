package matcher

import (
	"github.com/arthur-debert/confman/pkg/errors"
)

// resolution accumulates records while applying override rules. Replaced
// records are tombstoned and dropped by compact.
type resolution struct {
	mapping  *Mapping
	removed  []bool
	bySource map[string]int
	byDest   map[string]int
}

func (r *resolution) add(rec Record) error {
	if prev, ok := r.bySource[rec.Source]; ok {
		r.drop(prev)
	}

	if prev, ok := r.byDest[rec.Destination]; ok {
		old := r.mapping.Records[prev]
		if old.Entry == rec.Entry || old.Link != rec.Link {
			return errors.Newf(errors.ErrDuplicateDestination,
				"%s and %s both map to %s", old.Source, rec.Source, rec.Destination).
				WithDetail("module", rec.Module).
				WithDetail("destination", rec.Destination).
				WithDetail("sources", []string{old.Source, rec.Source})
		}
		r.drop(prev)
	}

	r.mapping.Records = append(r.mapping.Records, rec)
	r.removed = append(r.removed, false)
	idx := len(r.mapping.Records) - 1
	r.bySource[rec.Source] = idx
	r.byDest[rec.Destination] = idx
	return nil
}

func (r *resolution) drop(idx int) {
	old := r.mapping.Records[idx]
	r.removed[idx] = true
	delete(r.bySource, old.Source)
	delete(r.byDest, old.Destination)
}

func (r *resolution) compact() {
	kept := r.mapping.Records[:0]
	for i, rec := range r.mapping.Records {
		if !r.removed[i] {
			kept = append(kept, rec)
		}
	}
	r.mapping.Records = kept
	r.removed = nil
	r.bySource = nil
	r.byDest = nil
}
