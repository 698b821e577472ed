package imports

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"backoffice/core/audit"
	"backoffice/core/logger"
	"backoffice/core/reconcile"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service runs imports for the registered entity types.
type Service struct {
	db      *gorm.DB
	logger  *zap.Logger
	archive *audit.Archive
	keep    int
	specs   map[string]*reconcile.Spec
}

// NewService creates an import service. archive may be nil, in which case
// outcomes are not archived. keep bounds the archive per entity and tenant;
// 0 keeps everything.
func NewService(db *gorm.DB, logger *zap.Logger, archive *audit.Archive, keep int, specs ...*reconcile.Spec) *Service {
	s := &Service{
		db:      db,
		logger:  logger,
		archive: archive,
		keep:    keep,
		specs:   make(map[string]*reconcile.Spec, len(specs)),
	}
	for _, spec := range specs {
		s.specs[spec.Adapter.Name()] = spec
	}
	return s
}

// Entities returns the names of the importable entity types, sorted.
func (s *Service) Entities() []string {
	names := make([]string, 0, len(s.specs))
	for name := range s.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Service) spec(entity string) (*reconcile.Spec, error) {
	spec, ok := s.specs[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %s", reconcile.ErrUnknownEntity, entity)
	}
	return spec, nil
}

// Import runs an import of rows for the tenant. Every import that did not
// stop at the planning step is archived; archive failures are logged only.
func (s *Service) Import(ctx context.Context, entity, tenant string, rows []reconcile.Row, opts reconcile.Options) (*reconcile.Outcome, error) {
	spec, err := s.spec(entity)
	if err != nil {
		return nil, err
	}

	out, err := reconcile.Import(ctx, spec, s.db, tenant, rows, opts)
	if out != nil && out.State != reconcile.StatePlanned {
		s.record(ctx, out)
	}
	return out, err
}

// Apply writes the plan of an import that stopped at StatePlanned. It fails
// with reconcile.ErrPlanChanged, writing nothing, when the stored records no
// longer produce that plan.
func (s *Service) Apply(ctx context.Context, planned *reconcile.Outcome) (*reconcile.Outcome, error) {
	if planned == nil {
		return nil, reconcile.ErrNotPlanned
	}
	spec, err := s.spec(planned.Entity)
	if err != nil {
		return planned, err
	}

	out, err := reconcile.Apply(ctx, spec, s.db, planned)
	if errors.Is(err, reconcile.ErrNotPlanned) {
		return out, err
	}
	s.record(ctx, out)
	return out, err
}

// History returns the archived imports of an entity type for the tenant, newest first.
func (s *Service) History(ctx context.Context, entity, tenant string) ([]reconcile.Outcome, error) {
	if _, err := s.spec(entity); err != nil {
		return nil, err
	}
	return s.archive.List(ctx, entity, tenant)
}

func (s *Service) record(ctx context.Context, out *reconcile.Outcome) {
	if s.archive == nil {
		return
	}
	l := logger.WithImport(s.logger, out.Entity, out.Tenant).With(zap.String("import_id", out.ImportID))

	// The import already finished; a cancelled request must not skip the archive.
	ctx = context.WithoutCancel(ctx)
	if err := s.archive.Record(ctx, out); err != nil {
		l.Warn("Failed to archive import", zap.Error(err))
		return
	}
	if s.keep <= 0 {
		return
	}
	if n, err := s.archive.Prune(ctx, out.Entity, out.Tenant, s.keep); err != nil {
		l.Warn("Failed to prune import archive", zap.Error(err))
	} else if n > 0 {
		l.Debug("Pruned import archive", zap.Int("removed", n))
	}
}
