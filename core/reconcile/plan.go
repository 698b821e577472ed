package reconcile

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// BuildPlan classifies a validated batch into creates, updates and deletes.
// It is pure: nothing is read or written. If errs is non-empty the batch is
// rejected and no plan is returned.
func BuildPlan(adapter Adapter, tenant string, candidates []Candidate, entities []Entity, errs []ValidationError) (*Plan, error) {
	if len(errs) > 0 {
		return nil, &RejectedError{Labels: adapter.Labels(), Errors: errs}
	}

	matches := MatchCandidates(adapter, candidates, entities)

	plan := &Plan{
		Entity:         adapter.Name(),
		Tenant:         tenant,
		ToCreate:       []Candidate{},
		ToUpdate:       []Update{},
		ToDelete:       SelectDeletions(adapter, candidates, entities, matches),
		TotalProcessed: len(candidates),
	}
	for _, m := range matches {
		if m.Matched() {
			plan.ToUpdate = append(plan.ToUpdate, Update{Candidate: m.Candidate, EntityID: m.EntityID})
		} else {
			plan.ToCreate = append(plan.ToCreate, m.Candidate)
		}
	}
	return plan, nil
}

// candidates returns the planned rows in batch order.
func (p *Plan) candidates() []Candidate {
	out := make([]Candidate, 0, len(p.ToCreate)+len(p.ToUpdate))
	out = append(out, p.ToCreate...)
	for _, u := range p.ToUpdate {
		out = append(out, u.Candidate)
	}
	slices.SortFunc(out, func(a, b Candidate) int { return a.Index - b.Index })
	return out
}

// sameAs reports whether both plans create the same rows, send the same rows
// to the same records and delete the same records.
func (p *Plan) sameAs(other *Plan) bool {
	if len(p.ToCreate) != len(other.ToCreate) || len(p.ToUpdate) != len(other.ToUpdate) {
		return false
	}
	for i, c := range p.ToCreate {
		if c.Index != other.ToCreate[i].Index {
			return false
		}
	}
	for i, u := range p.ToUpdate {
		o := other.ToUpdate[i]
		if u.Candidate.Index != o.Candidate.Index || u.EntityID != o.EntityID {
			return false
		}
	}
	return mapset.NewSet(p.DeleteIDs()...).Equal(mapset.NewSet(other.DeleteIDs()...))
}
