package reconcile

import (
	"context"

	"gorm.io/gorm"
)

// ApplyPlan writes the plan in a single transaction: bulk delete, then
// updates, then creates. Any failure rolls everything back and is returned as
// an *ApplyError. The transaction is bounded by Config.TimeoutSeconds.
//
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute;
// otherwise it returns an empty result and writes nothing.
func ApplyPlan(ctx context.Context, spec *Spec, db *gorm.DB, plan *Plan, opts Options) (Result, error) {
	if !opts.Confirmed || opts.DryRun {
		return Result{}, nil
	}
	if plan.consumed {
		return Result{}, ErrPlanConsumed
	}
	plan.consumed = true

	ctx, cancel := context.WithTimeout(ctx, spec.timeout())
	defer cancel()

	adapter := spec.Adapter
	stage, line := StageDelete, 0

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if ids := plan.DeleteIDs(); len(ids) > 0 {
			if err := adapter.DeleteBatch(ctx, tx, plan.Tenant, ids); err != nil {
				return err
			}
		}

		stage = StageUpdate
		for _, u := range plan.ToUpdate {
			line = u.Candidate.Line
			if err := adapter.Update(ctx, tx, plan.Tenant, u.EntityID, u.Candidate.Fields); err != nil {
				return err
			}
		}

		stage = StageCreate
		for _, c := range plan.ToCreate {
			line = c.Line
			if err := adapter.Create(ctx, tx, plan.Tenant, c.Fields); err != nil {
				return err
			}
		}

		stage, line = StageCommit, 0
		return nil
	})
	if err != nil {
		return Result{}, &ApplyError{Stage: stage, Line: line, Err: err}
	}

	return plan.Preview(), nil
}
