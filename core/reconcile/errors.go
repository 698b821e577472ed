package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEntity is returned when no adapter is registered for an entity name.
	ErrUnknownEntity = errors.New("unknown entity type")

	// ErrMissingTenant is returned when an import is requested without a tenant.
	ErrMissingTenant = errors.New("tenant is required")

	// ErrPlanConsumed is returned when a plan is handed to ApplyPlan a second time.
	ErrPlanConsumed = errors.New("plan has already been applied")

	// ErrNotPlanned is returned when Apply gets an outcome that did not stop at StatePlanned.
	ErrNotPlanned = errors.New("import has no pending plan")

	// ErrPlanChanged is returned when the stored records changed between planning and Apply.
	ErrPlanChanged = errors.New("stored records changed since the plan was shown, no changes were saved")
)

// RejectedError is returned when a batch fails validation. Nothing was written.
type RejectedError struct {
	Labels Labels
	Errors []ValidationError
}

func (e *RejectedError) Error() string {
	return FormatErrors(e.Labels, e.Errors)
}

// Stage identifies the step of the apply transaction that failed.
type Stage string

const (
	StageDelete Stage = "delete"
	StageUpdate Stage = "update"
	StageCreate Stage = "create"
	StageCommit Stage = "commit"
)

// ApplyError is returned when the apply transaction fails and was rolled back.
type ApplyError struct {
	Stage Stage

	// Line is the spreadsheet row being written, 0 for bulk stages.
	Line int

	Err error
}

func (e *ApplyError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("import failed during %s of row %d, no changes were saved: %v", e.Stage, e.Line, e.Err)
	}
	return fmt.Sprintf("import failed during %s, no changes were saved: %v", e.Stage, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }
