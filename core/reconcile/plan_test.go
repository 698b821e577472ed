package reconcile

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchCandidates(t *testing.T) {
	entities := []Entity{
		{ID: "e1", PrimaryKey: "100", SecondaryKey: "Acme"},
		{ID: "e2", PrimaryKey: "", SecondaryKey: "Globex"},
		{ID: "e3", PrimaryKey: "300", SecondaryKey: "Initech"},
	}

	t.Run("primary key", func(t *testing.T) {
		m := MatchCandidates(&widgetAdapter{fallback: true}, Collect([]Row{{"code": "100", "name": "Renamed"}}, 1), entities)
		assert.Equal(t, "e1", m[0].EntityID)
	})

	t.Run("fallback when candidate has no primary key", func(t *testing.T) {
		m := MatchCandidates(&widgetAdapter{fallback: true}, Collect([]Row{{"name": "initech"}}, 1), entities)
		assert.Equal(t, "e3", m[0].EntityID)
	})

	t.Run("fallback when entity has no primary key", func(t *testing.T) {
		m := MatchCandidates(&widgetAdapter{fallback: true}, Collect([]Row{{"code": "200", "name": "GLOBEX"}}, 1), entities)
		assert.Equal(t, "e2", m[0].EntityID)
	})

	t.Run("fallback when primary key changed", func(t *testing.T) {
		m := MatchCandidates(&widgetAdapter{fallback: true}, Collect([]Row{{"code": "999", "name": "Acme"}}, 1), entities)
		assert.Equal(t, "e1", m[0].EntityID)
	})

	t.Run("primary key match wins over earlier fallback", func(t *testing.T) {
		batch := []Row{{"code": "999", "name": "Acme"}, {"code": "100", "name": "Renamed"}}
		m := MatchCandidates(&widgetAdapter{fallback: true}, Collect(batch, 1), entities)
		assert.False(t, m[0].Matched())
		assert.Equal(t, "e1", m[1].EntityID)
	})

	t.Run("no fallback without secondary key", func(t *testing.T) {
		m := MatchCandidates(&widgetAdapter{}, Collect([]Row{{"name": "Globex"}}, 1), entities)
		assert.False(t, m[0].Matched())
	})

	t.Run("entity claimed once", func(t *testing.T) {
		m := MatchCandidates(&widgetAdapter{fallback: true}, Collect([]Row{{"code": "300"}, {"name": "Initech"}}, 1), entities)
		assert.Equal(t, "e3", m[0].EntityID)
		assert.False(t, m[1].Matched())
	})
}

func TestSelectDeletions_ProtectsKeysPresentInBatch(t *testing.T) {
	entities := []Entity{
		{ID: "e1", PrimaryKey: "100", SecondaryKey: "Acme"},
		{ID: "e2", PrimaryKey: "200", SecondaryKey: "Globex"},
		{ID: "e3", PrimaryKey: "300", SecondaryKey: "Initech", Dependents: 4},
		{ID: "e4", PrimaryKey: "400", SecondaryKey: "Umbrella"},
	}
	adapter := &widgetAdapter{fallback: true}
	// "Globex" appears with a different code: e2 is matched by name and kept.
	candidates := Collect([]Row{{"code": "100", "name": "Acme"}, {"code": "999", "name": "Globex"}}, 1)

	got := SelectDeletions(adapter, candidates, entities, MatchCandidates(adapter, candidates, entities))
	require.Len(t, got, 1)
	assert.Equal(t, "e4", got[0].ID())
	assert.Equal(t, "400", got[0].Key())
}

// The scenarios below run the planner against the persisted population a
// client import would see.
func TestBuildPlan_Scenarios(t *testing.T) {
	adapter := &widgetAdapter{}

	t.Run("A: all rows new", func(t *testing.T) {
		plan, err := BuildPlan(adapter, "t1", Collect(rows("1", "2", "3"), 1), nil, nil)
		require.NoError(t, err)
		assert.Len(t, plan.ToCreate, 3)
		assert.Empty(t, plan.ToUpdate)
		assert.Empty(t, plan.ToDelete)
		assert.Equal(t, Result{Created: 3, TotalProcessed: 3}, plan.Preview())
	})

	t.Run("B: existing key is updated", func(t *testing.T) {
		entities := []Entity{{ID: "e123", PrimaryKey: "123"}}
		plan, err := BuildPlan(adapter, "t1", Collect(rows("123"), 1), entities, nil)
		require.NoError(t, err)
		require.Len(t, plan.ToUpdate, 1)
		assert.Equal(t, "e123", plan.ToUpdate[0].EntityID)
		assert.Empty(t, plan.ToCreate)
	})

	t.Run("C: absent record with dependents is kept", func(t *testing.T) {
		entities := []Entity{{ID: "e456", PrimaryKey: "456", Dependents: 1}}
		plan, err := BuildPlan(adapter, "t1", Collect(rows("1"), 1), entities, nil)
		require.NoError(t, err)
		assert.Empty(t, plan.ToDelete)
	})

	t.Run("D: absent record without dependents is deleted", func(t *testing.T) {
		entities := []Entity{{ID: "e789", PrimaryKey: "789"}}
		plan, err := BuildPlan(adapter, "t1", Collect(rows("1"), 1), entities, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"e789"}, plan.DeleteIDs())
	})

	t.Run("E: duplicate key rejects the batch", func(t *testing.T) {
		candidates := Collect(rows("111", "111"), 1)
		plan, err := BuildPlan(adapter, "t1", candidates, nil, CheckUniqueness(candidates, []UniqueField{{Field: "code", Label: "Code"}}))
		assert.Nil(t, plan)

		var rejected *RejectedError
		require.ErrorAs(t, err, &rejected)
		require.Len(t, rejected.Errors, 1)
		assert.Equal(t, []int{2, 3}, rejected.Errors[0].Lines)
	})
}

func TestBuildPlan_Deterministic(t *testing.T) {
	adapter := &widgetAdapter{fallback: true}
	entities := []Entity{
		{ID: "e1", PrimaryKey: "1", SecondaryKey: "Widget 1"},
		{ID: "e2", PrimaryKey: "2", SecondaryKey: "Widget 2"},
		{ID: "e5", PrimaryKey: "5", SecondaryKey: "Widget 5"},
	}
	candidates := Collect(rows("1", "3", "4"), 1)

	first, err := BuildPlan(adapter, "t1", candidates, entities, nil)
	require.NoError(t, err)
	second, err := BuildPlan(adapter, "t1", candidates, entities, nil)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, cmp.AllowUnexported(Plan{}, Deletion{})); diff != "" {
		t.Errorf("plans differ (-first +second):\n%s", diff)
	}
}

// TestBuildPlan_Properties checks safety and exclusivity over random populations.
func TestBuildPlan_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	adapter := &widgetAdapter{fallback: true}

	for iter := 0; iter < 200; iter++ {
		var entities []Entity
		byID := make(map[string]Entity)
		for i, n := 0, rng.Intn(30); i < n; i++ {
			e := Entity{
				ID:           fmt.Sprintf("e%d", i),
				PrimaryKey:   fmt.Sprintf("%d", rng.Intn(60)),
				SecondaryKey: fmt.Sprintf("name-%d", i),
			}
			if rng.Intn(4) == 0 {
				e.PrimaryKey = ""
			}
			if rng.Intn(3) == 0 {
				e.Dependents = int64(rng.Intn(5) + 1)
			}
			entities = append(entities, e)
			byID[e.ID] = e
		}

		seen := make(map[int]bool)
		var batch []Row
		for i, n := 0, rng.Intn(40); i < n; i++ {
			code := rng.Intn(60)
			if seen[code] {
				continue
			}
			seen[code] = true
			row := Row{"code": fmt.Sprintf("%d", code), "name": fmt.Sprintf("batch-%d", code)}
			if rng.Intn(5) == 0 {
				row["name"] = fmt.Sprintf("name-%d", rng.Intn(30))
			}
			batch = append(batch, row)
		}
		candidates := Collect(batch, 1)
		if errs := CheckUniqueness(candidates, adapter.UniqueFields()); len(errs) > 0 {
			continue
		}

		plan, err := BuildPlan(adapter, "t1", candidates, entities, nil)
		require.NoError(t, err)

		// Exclusivity: every candidate is created or updated, never both.
		assert.Equal(t, len(candidates), len(plan.ToCreate)+len(plan.ToUpdate))
		updated := make(map[string]bool)
		for _, u := range plan.ToUpdate {
			assert.False(t, updated[u.EntityID], "entity updated twice")
			updated[u.EntityID] = true
		}

		// Safety: nothing referenced, matched or named in the batch is deleted.
		for _, d := range plan.ToDelete {
			e := byID[d.ID()]
			assert.Zero(t, e.Dependents, "entity with dependents selected for deletion")
			assert.False(t, updated[d.ID()], "matched entity selected for deletion")
			for _, c := range candidates {
				if e.PrimaryKey != "" {
					assert.NotEqual(t, FoldKey(e.PrimaryKey), FoldKey(c.Fields.Get("code")))
				}
				assert.NotEqual(t, FoldKey(e.SecondaryKey), FoldKey(c.Fields.Get("name")))
			}
		}
	}
}
