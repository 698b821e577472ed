package reconcile

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moby/locker"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// State is a step of the import state machine.
type State string

const (
	StateReceived   State = "received"
	StateValidating State = "validating"
	StateRejected   State = "rejected"
	StateValidated  State = "validated"
	StateMatching   State = "matching"
	StatePlanned    State = "planned"
	StateApplying   State = "applying"
	StateFailed     State = "failed"
	StateApplied    State = "applied"
	StateReported   State = "reported"
)

// Spec binds an adapter to the engine settings used to run it.
type Spec struct {
	// Adapter provides everything entity-specific.
	Adapter Adapter

	// Config holds timeouts and validation tuning.
	Config Config

	// Logger receives one entry per state transition. Nil disables logging.
	Logger *zap.Logger

	// Locks serializes imports per entity and tenant. Nil uses a process-wide locker.
	Locks *locker.Locker
}

var defaultLocks = locker.New()

func (s *Spec) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Spec) locks() *locker.Locker {
	if s.Locks == nil {
		return defaultLocks
	}
	return s.Locks
}

func (s *Spec) timeout() time.Duration {
	if s.Config.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(s.Config.TimeoutSeconds) * time.Second
}

// LockKey returns the name under which imports of the tenant are serialized.
func (s *Spec) LockKey(tenant string) string {
	return s.Adapter.Name() + "|" + tenant
}

// Outcome is the record of one import call.
type Outcome struct {
	ImportID string `json:"import_id"`
	Entity   string `json:"entity"`
	Tenant   string `json:"tenant"`
	State    State  `json:"state"`

	// Plan is the computed plan, nil if the batch was rejected.
	Plan *Plan `json:"-"`

	// Result holds the applied counts, or the planned counts when the import
	// stopped at StatePlanned.
	Result *Result `json:"result,omitempty"`

	// Summary is the human-readable report.
	Summary string `json:"summary,omitempty"`

	// Errors lists the validation errors of a rejected batch.
	Errors []ValidationError `json:"errors,omitempty"`

	// Failure is the error message of a failed import.
	Failure string `json:"failure,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Applied reports whether the import changed persisted data.
func (o *Outcome) Applied() bool {
	return o.State == StateApplied || o.State == StateReported
}

// run tracks the state of one import and logs every transition.
type run struct {
	out *Outcome
	log *zap.Logger
}

func newRun(spec *Spec, out *Outcome) *run {
	return &run{
		out: out,
		log: spec.logger().With(
			zap.String("import_id", out.ImportID),
			zap.String("entity", out.Entity),
			zap.String("tenant", out.Tenant),
		),
	}
}

func (r *run) advance(s State) {
	r.out.State = s
	r.log.Info("Import state changed", zap.String("state", string(s)))
}

func (r *run) finish() { r.out.FinishedAt = time.Now() }

func (r *run) fail(err error) (*Outcome, error) {
	r.out.State = StateFailed
	r.out.Failure = err.Error()
	r.finish()
	r.log.Error("Import failed", zap.Error(err))
	return r.out, err
}

// apply writes a confirmed plan and reports the result.
func (r *run) apply(ctx context.Context, spec *Spec, db *gorm.DB, plan *Plan) (*Outcome, error) {
	r.advance(StateApplying)
	res, err := ApplyPlan(ctx, spec, db, plan, Options{Confirmed: true})
	if err != nil {
		return r.fail(err)
	}
	r.advance(StateApplied)

	r.out.Result = &res
	r.out.Summary = Summarize(spec.Adapter.Labels(), res)
	r.finish()
	r.advance(StateReported)
	r.log.Info("Import completed",
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("deleted", res.Deleted),
		zap.Int("total", res.TotalProcessed),
	)
	return r.out, nil
}

// lock takes the tenant lock, giving up when ctx is done first. The returned
// func releases the lock.
func (s *Spec) lock(ctx context.Context, tenant string) (func(), error) {
	key := s.LockKey(tenant)
	locks := s.locks()
	release := func() { _ = locks.Unlock(key) }

	acquired := make(chan struct{})
	go func() {
		locks.Lock(key)
		close(acquired)
	}()

	select {
	case <-acquired:
		if err := ctx.Err(); err != nil {
			release()
			return nil, err
		}
		return release, nil
	case <-ctx.Done():
		// Hand the lock back as soon as the pending Lock returns.
		go func() {
			<-acquired
			release()
		}()
		return nil, ctx.Err()
	}
}

// Import runs a full import of rows for the tenant:
// validate, match, plan and, if confirmed, apply.
//
// A rejected batch returns the outcome and a *RejectedError. A failed apply
// returns the outcome and an *ApplyError; nothing was written in either case.
// With opts.DryRun set or opts.Confirmed unset, the import stops at
// StatePlanned and the outcome carries the planned counts; Apply can then
// write that exact plan.
func Import(ctx context.Context, spec *Spec, db *gorm.DB, tenant string, rows []Row, opts Options) (*Outcome, error) {
	adapter := spec.Adapter
	r := newRun(spec, &Outcome{
		ImportID:  uuid.NewString(),
		Entity:    adapter.Name(),
		Tenant:    tenant,
		StartedAt: time.Now(),
	})
	out := r.out

	r.advance(StateReceived)
	if strings.TrimSpace(tenant) == "" {
		return r.fail(ErrMissingTenant)
	}

	// 1. Validate rows and batch uniqueness
	r.advance(StateValidating)
	rules, err := adapter.Rules(ctx, db)
	if err != nil {
		return r.fail(err)
	}
	candidates := Collect(rows, spec.Config.HeaderRows)
	errs, err := Validate(ctx, candidates, rules, spec.Config.ParallelThreshold)
	if err != nil {
		return r.fail(err)
	}
	errs = append(errs, CheckUniqueness(candidates, adapter.UniqueFields())...)
	if len(errs) > 0 {
		out.State = StateRejected
		out.Errors = errs
		r.finish()
		r.log.Warn("Import rejected", zap.Int("errors", len(errs)), zap.Int("rows", len(candidates)))
		return out, &RejectedError{Labels: adapter.Labels(), Errors: errs}
	}
	r.advance(StateValidated)

	// 2. Hold the tenant lock from reading the population until the write is done
	unlock, err := spec.lock(ctx, tenant)
	if err != nil {
		return r.fail(err)
	}
	defer unlock()

	// 3. Match and select deletions
	r.advance(StateMatching)
	entities, err := adapter.LoadEntities(ctx, db, tenant)
	if err != nil {
		return r.fail(err)
	}
	plan, err := BuildPlan(adapter, tenant, candidates, entities, nil)
	if err != nil {
		return r.fail(err)
	}
	out.Plan = plan
	preview := plan.Preview()
	out.Result = &preview
	out.Summary = DescribePlan(adapter.Labels(), plan)
	r.advance(StatePlanned)

	if opts.DryRun || !opts.Confirmed {
		r.finish()
		return out, nil
	}

	// 4. Apply and report
	return r.apply(ctx, spec, db, plan)
}

// Apply writes the plan of an outcome that stopped at StatePlanned, usually
// after someone reviewed its summary. The outcome is updated in place and
// keeps its import id.
//
// The population is reloaded under the tenant lock. If planning the same
// rows again no longer yields the same creates, updates and deletions, the
// import fails with ErrPlanChanged and nothing is written.
func Apply(ctx context.Context, spec *Spec, db *gorm.DB, out *Outcome) (*Outcome, error) {
	if out == nil || out.Plan == nil || out.State != StatePlanned || out.Entity != spec.Adapter.Name() {
		return out, ErrNotPlanned
	}
	r := newRun(spec, out)

	unlock, err := spec.lock(ctx, out.Tenant)
	if err != nil {
		return r.fail(err)
	}
	defer unlock()

	entities, err := spec.Adapter.LoadEntities(ctx, db, out.Tenant)
	if err != nil {
		return r.fail(err)
	}
	current, err := BuildPlan(spec.Adapter, out.Tenant, out.Plan.candidates(), entities, nil)
	if err != nil {
		return r.fail(err)
	}
	if !out.Plan.sameAs(current) {
		r.log.Warn("Stored records changed after planning",
			zap.Int("planned_deletes", len(out.Plan.ToDelete)),
			zap.Int("current_deletes", len(current.ToDelete)),
		)
		return r.fail(ErrPlanChanged)
	}

	return r.apply(ctx, spec, db, out.Plan)
}
