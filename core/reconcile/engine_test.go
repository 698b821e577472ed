package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/moby/locker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func TestImport_AppliesConfirmedBatch(t *testing.T) {
	db := setupTestDB(t)
	seedWidgets(t, db, widget{ID: "w9", Tenant: "t1", Code: "9", Name: "Nine"})

	core, logs := observer.New(zap.InfoLevel)
	spec := testSpec(&widgetAdapter{})
	spec.Logger = zap.New(core)

	out, err := Import(context.Background(), spec, db, "t1", rows("1", "2", "3"), Options{Confirmed: true})
	require.NoError(t, err)

	assert.Equal(t, StateReported, out.State)
	assert.True(t, out.Applied())
	assert.NotEmpty(t, out.ImportID)
	assert.Equal(t, &Result{Created: 3, Deleted: 1, TotalProcessed: 3}, out.Result)
	assert.Contains(t, out.Summary, "This operation is irreversible.")
	assert.Len(t, loadWidgets(t, db, "t1"), 3)

	var states []string
	for _, entry := range logs.FilterMessage("Import state changed").All() {
		states = append(states, entry.ContextMap()["state"].(string))
	}
	assert.Equal(t, []string{"received", "validating", "validated", "matching", "planned", "applying", "applied", "reported"}, states)
}

func TestImport_StopsAtPlanned(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"dry run", Options{DryRun: true, Confirmed: true}},
		{"not confirmed", Options{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			seedWidgets(t, db, widget{ID: "w9", Tenant: "t1", Code: "9", Name: "Nine"})

			out, err := Import(context.Background(), testSpec(&widgetAdapter{}), db, "t1", rows("1"), tt.opts)
			require.NoError(t, err)

			assert.Equal(t, StatePlanned, out.State)
			assert.False(t, out.Applied())
			assert.Equal(t, &Result{Created: 1, Deleted: 1, TotalProcessed: 1}, out.Result)
			assert.Contains(t, out.Summary, "  - 9")
			assert.Len(t, loadWidgets(t, db, "t1"), 1, "nothing written")
		})
	}
}

func TestImport_RejectsInvalidBatch(t *testing.T) {
	db := setupTestDB(t)
	seedWidgets(t, db, widget{ID: "w9", Tenant: "t1", Code: "9", Name: "Nine"})
	batch := []Row{
		{"code": "111", "name": "A"},
		{"code": "abc", "name": "B"},
		{"code": "111", "name": "C"},
	}

	out, err := Import(context.Background(), testSpec(&widgetAdapter{}), db, "t1", batch, Options{Confirmed: true})

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, StateRejected, out.State)
	require.Len(t, out.Errors, 2)
	assert.Equal(t, KindFieldValidation, out.Errors[0].Kind)
	assert.Equal(t, KindBatchDuplicate, out.Errors[1].Kind)
	assert.Equal(t, "Validation errors in the import file:\n\n"+
		`Row 3: code "abc" has an invalid format`+"\n\n"+
		"Duplicated widgets in the import file:\n"+
		`• Code "111" repeated in rows: 2, 4`+"\n\n"+
		"Each widget must appear only once.", err.Error())
	assert.Len(t, loadWidgets(t, db, "t1"), 1, "nothing written")
}

func TestImport_Failures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		tenant  string
		adapter *widgetAdapter
		wantErr error
	}{
		{"missing tenant", " ", &widgetAdapter{}, ErrMissingTenant},
		{"rules unavailable", "t1", &widgetAdapter{rulesErr: boom}, boom},
		{"population unavailable", "t1", &widgetAdapter{loadErr: boom}, boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			out, err := Import(context.Background(), testSpec(tt.adapter), db, tt.tenant, rows("1"), Options{Confirmed: true})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, StateFailed, out.State)
			assert.Equal(t, tt.wantErr.Error(), out.Failure)
		})
	}
}

func TestImport_TransactionFailureLeavesDataUntouched(t *testing.T) {
	db := setupTestDB(t)
	seedWidgets(t, db, widget{ID: "w9", Tenant: "t1", Code: "9", Name: "Nine"})
	before := loadWidgets(t, db, "t1")

	out, err := Import(context.Background(), testSpec(&widgetAdapter{failCreate: "2"}), db, "t1", rows("1", "2"), Options{Confirmed: true})

	var applyErr *ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Equal(t, StateFailed, out.State)
	assert.Equal(t, before, loadWidgets(t, db, "t1"))
}

func TestImport_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	spec := testSpec(&widgetAdapter{})
	batch := rows("1", "2", "3")

	first, err := Import(context.Background(), spec, db, "t1", batch, Options{Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, 3, first.Result.Created)

	second, err := Import(context.Background(), spec, db, "t1", batch, Options{Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, &Result{Updated: 3, TotalProcessed: 3}, second.Result)
}

func TestImport_SerializesSameTenant(t *testing.T) {
	db := setupTestDB(t)
	spec := testSpec(&widgetAdapter{})
	spec.Locks = locker.New()

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = Import(context.Background(), spec, db, "t1", rows("1", "2"), Options{Confirmed: true})
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, loadWidgets(t, db, "t1"), 2, "each run sees the previous run's writes")
}

func TestImport_StopsWaitingForLockWhenCancelled(t *testing.T) {
	db := setupTestDB(t)
	spec := testSpec(&widgetAdapter{})
	spec.Locks = locker.New()
	key := spec.LockKey("t1")
	spec.Locks.Lock(key)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	out, err := Import(ctx, spec, db, "t1", rows("1"), Options{Confirmed: true})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateFailed, out.State)
	assert.Empty(t, loadWidgets(t, db, "t1"))

	// The abandoned wait hands the lock back once it gets it.
	require.NoError(t, spec.Locks.Unlock(key))
	out, err = Import(context.Background(), spec, db, "t1", rows("1"), Options{Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, StateReported, out.State)
}

func TestApply_WritesReviewedPlan(t *testing.T) {
	db := setupTestDB(t)
	seedWidgets(t, db, widget{ID: "w9", Tenant: "t1", Code: "9", Name: "Nine"})
	spec := testSpec(&widgetAdapter{})

	planned, err := Import(context.Background(), spec, db, "t1", rows("1", "9"), Options{DryRun: true})
	require.NoError(t, err)
	id := planned.ImportID

	out, err := Apply(context.Background(), spec, db, planned)
	require.NoError(t, err)
	assert.Equal(t, StateReported, out.State)
	assert.Equal(t, id, out.ImportID)
	assert.Equal(t, &Result{Created: 1, Updated: 1, TotalProcessed: 2}, out.Result)
	assert.Len(t, loadWidgets(t, db, "t1"), 2)
}

func TestApply_AbortsWhenRecordsChanged(t *testing.T) {
	tests := []struct {
		name   string
		change func(t *testing.T, db *gorm.DB)
	}{
		{"record added", func(t *testing.T, db *gorm.DB) {
			seedWidgets(t, db, widget{ID: "w7", Tenant: "t1", Code: "7", Name: "Seven"})
		}},
		{"record gained dependents", func(t *testing.T, db *gorm.DB) {
			require.NoError(t, db.Model(&widget{}).Where("id = ?", "w9").Update("orders", 1).Error)
		}},
		{"matched record removed", func(t *testing.T, db *gorm.DB) {
			require.NoError(t, db.Delete(&widget{}, "id = ?", "w1").Error)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			seedWidgets(t, db,
				widget{ID: "w1", Tenant: "t1", Code: "1", Name: "One"},
				widget{ID: "w9", Tenant: "t1", Code: "9", Name: "Nine"},
			)
			spec := testSpec(&widgetAdapter{})

			planned, err := Import(context.Background(), spec, db, "t1", rows("1", "2"), Options{})
			require.NoError(t, err)

			tt.change(t, db)
			before := loadWidgets(t, db, "t1")

			out, err := Apply(context.Background(), spec, db, planned)
			assert.ErrorIs(t, err, ErrPlanChanged)
			assert.Equal(t, StateFailed, out.State)
			assert.Equal(t, before, loadWidgets(t, db, "t1"), "nothing written")
		})
	}
}

func TestApply_RequiresPendingPlan(t *testing.T) {
	db := setupTestDB(t)
	spec := testSpec(&widgetAdapter{})

	done, err := Import(context.Background(), spec, db, "t1", rows("1"), Options{Confirmed: true})
	require.NoError(t, err)

	_, err = Apply(context.Background(), spec, db, done)
	assert.ErrorIs(t, err, ErrNotPlanned)

	_, err = Apply(context.Background(), spec, db, nil)
	assert.ErrorIs(t, err, ErrNotPlanned)
}
