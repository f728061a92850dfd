package recon

import (
	"regexp"
	"sort"
)

var leadingDigitsRe = regexp.MustCompile(`^(\d+)`)

// UnitID extracts the leading digit run of a source name.
func UnitID(name string) (string, bool) {
	m := leadingDigitsRe.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// UnitSources holds the sources of one unit; either side may be missing.
type UnitSources[S any] struct {
	ID     string
	Report *S
	Ledger *S
}

// Pairable reports whether both sides are present.
func (u UnitSources[S]) Pairable() bool {
	return u.Report != nil && u.Ledger != nil
}

// PairUnits groups sources by unit id, returned in ascending id order.
// Sources without an id are left out; a later source with the same id on the
// same side replaces the earlier one.
func PairUnits[S any](reports, ledgers []S, name func(S) string) []UnitSources[S] {
	units := make(map[string]*UnitSources[S])
	get := func(id string) *UnitSources[S] {
		u, ok := units[id]
		if !ok {
			u = &UnitSources[S]{ID: id}
			units[id] = u
		}
		return u
	}
	for i := range reports {
		if id, ok := UnitID(name(reports[i])); ok {
			get(id).Report = &reports[i]
		}
	}
	for i := range ledgers {
		if id, ok := UnitID(name(ledgers[i])); ok {
			get(id).Ledger = &ledgers[i]
		}
	}

	ids := make([]string, 0, len(units))
	for id := range units {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]UnitSources[S], 0, len(ids))
	for _, id := range ids {
		out = append(out, *units[id])
	}
	return out
}
