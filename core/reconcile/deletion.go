package reconcile

import mapset "github.com/deckarep/golang-set/v2"

// SelectDeletions returns the persisted entities to delete: those that no
// candidate matched, whose natural keys appear nowhere in the batch, and that
// have no dependent records. An entity with dependents is never selected.
func SelectDeletions(adapter Adapter, candidates []Candidate, entities []Entity, matches []Match) []Deletion {
	primaries := keySet()
	secondaries := keySet()
	for _, c := range candidates {
		if k := FoldKey(adapter.PrimaryKey(c.Fields)); k != "" {
			primaries.Add(k)
		}
		if k := FoldKey(adapter.SecondaryKey(c.Fields)); k != "" {
			secondaries.Add(k)
		}
	}

	matched := mapset.NewThreadUnsafeSet[string]()
	for _, m := range matches {
		if m.Matched() {
			matched.Add(m.EntityID)
		}
	}

	var out []Deletion
	for _, e := range entities {
		if e.Dependents > 0 {
			continue
		}
		if matched.Contains(e.ID) {
			continue
		}
		if k := FoldKey(e.PrimaryKey); k != "" && primaries.Contains(k) {
			continue
		}
		if k := FoldKey(e.SecondaryKey); k != "" && secondaries.Contains(k) {
			continue
		}
		key := e.PrimaryKey
		if key == "" {
			key = e.SecondaryKey
		}
		out = append(out, Deletion{id: e.ID, key: key})
	}
	return out
}
