package reconcile

// Match is the outcome of matching one candidate against the persisted population.
type Match struct {
	Candidate Candidate

	// EntityID is the matched persisted entity, or "" when the candidate is new.
	EntityID string
}

// Matched reports whether the candidate resolved to a persisted entity.
func (m Match) Matched() bool { return m.EntityID != "" }

// MatchCandidates resolves every candidate to at most one persisted entity.
//
// Primary keys are resolved for the whole batch first. Candidates left
// unmatched then fall back to the secondary key, if the entity type has one,
// even when both sides carry different primary keys: a supplier whose tax id
// changed is still the supplier with that name. Each persisted entity is
// claimed by at most one candidate, and a primary key match always wins over a
// fallback match.
func MatchCandidates(adapter Adapter, candidates []Candidate, entities []Entity) []Match {
	byPrimary := make(map[string]int, len(entities))
	bySecondary := make(map[string]int, len(entities))
	for i, e := range entities {
		if k := FoldKey(e.PrimaryKey); k != "" {
			if _, dup := byPrimary[k]; !dup {
				byPrimary[k] = i
			}
		}
		if k := FoldKey(e.SecondaryKey); k != "" {
			if _, dup := bySecondary[k]; !dup {
				bySecondary[k] = i
			}
		}
	}

	claimed := make(map[string]struct{}, len(candidates))
	claim := func(i int) (string, bool) {
		id := entities[i].ID
		if _, taken := claimed[id]; taken {
			return "", false
		}
		claimed[id] = struct{}{}
		return id, true
	}

	matches := make([]Match, len(candidates))
	for ci, c := range candidates {
		matches[ci] = Match{Candidate: c}
		if i, ok := byPrimary[FoldKey(adapter.PrimaryKey(c.Fields))]; ok {
			if id, ok := claim(i); ok {
				matches[ci].EntityID = id
			}
		}
	}

	for ci, c := range candidates {
		if matches[ci].Matched() {
			continue
		}
		secondary := FoldKey(adapter.SecondaryKey(c.Fields))
		if secondary == "" {
			continue
		}
		if i, ok := bySecondary[secondary]; ok {
			if id, ok := claim(i); ok {
				matches[ci].EntityID = id
			}
		}
	}
	return matches
}
