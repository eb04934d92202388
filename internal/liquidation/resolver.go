package liquidation

import (
	"strings"

	"asociados/internal/core"
)

// Directory is the bidirectional contractor lookup. It resolves a reference
// no matter how the source stored it: a raw id, a raw name, or an embedded
// {id, nombre} object. Name matching is trimmed, case-insensitive and
// collapses internal whitespace, so historical spellings of the same
// contractor land in one bucket.
type Directory struct {
	byID   map[string]core.Contractor
	byName map[string]core.Contractor
}

func NewDirectory(entries []core.Contractor) *Directory {
	d := &Directory{
		byID:   make(map[string]core.Contractor, len(entries)),
		byName: make(map[string]core.Contractor, len(entries)),
	}
	for _, c := range entries {
		if id := strings.TrimSpace(c.ID); id != "" {
			d.byID[id] = c
		}
		if key := foldKey(c.Nombre); key != "" {
			// First entry wins: ids are unique, names are not guaranteed
			// to be, and resolution must stay deterministic.
			if _, ok := d.byName[key]; !ok {
				d.byName[key] = c
			}
		}
	}
	return d
}

// Resolve never fails: absence is the bool. Id lookup wins over name lookup,
// matching how the directory screens disambiguate duplicates.
func (d *Directory) Resolve(ref core.ContractorRef) (core.Contractor, bool) {
	if d == nil || ref.IsZero() {
		return core.Contractor{}, false
	}
	if id := strings.TrimSpace(ref.ID); id != "" {
		if c, ok := d.byID[id]; ok {
			return c, true
		}
	}
	for _, name := range []string{ref.Nombre, ref.ID} {
		if c, ok := d.byName[foldKey(name)]; ok {
			return c, true
		}
	}
	return core.Contractor{}, false
}

// foldKey normalizes a name for comparison: lowercase, trimmed, internal
// whitespace collapsed to single spaces.
func foldKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
