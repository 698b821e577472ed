package reconcile

import (
	"context"

	"gorm.io/gorm"
)

// Adapter defines the entity-specific configuration of the reconciliation engine.
// Each entity type that supports bulk import (clients, suppliers, ...) provides one
// implementation; the engine itself never knows which entity it is reconciling.
type Adapter interface {
	// Name returns the unique name of the entity type (e.g. "clients").
	Name() string

	// Labels returns the wording used in messages and summaries.
	Labels() Labels

	// Rules returns the ordered validation rules applied to every row.
	// Implementations may read reference data (e.g. document types) to build
	// foreign-key rules.
	Rules(ctx context.Context, db *gorm.DB) ([]Rule, error)

	// UniqueFields returns the fields whose values must not repeat within a batch.
	UniqueFields() []UniqueField

	// PrimaryKey extracts the raw primary natural key from a row.
	PrimaryKey(row Row) string

	// SecondaryKey extracts the raw fallback natural key from a row.
	// Entity types without a fallback key return "".
	SecondaryKey(row Row) string

	// LoadEntities loads the persisted population of the tenant, including the
	// number of dependent transactional records of each entity.
	LoadEntities(ctx context.Context, db *gorm.DB, tenant string) ([]Entity, error)

	// DeleteBatch deletes the given entities. Implementations must only delete
	// records of the tenant that still have no dependents, and must return an
	// error if fewer records than requested were deleted.
	DeleteBatch(ctx context.Context, tx *gorm.DB, tenant string, ids []string) error

	// Update overwrites the persisted entity with the normalized row values.
	Update(ctx context.Context, tx *gorm.DB, tenant, id string, row Row) error

	// Create inserts a new entity owned by the tenant from the normalized row values.
	Create(ctx context.Context, tx *gorm.DB, tenant string, row Row) error
}
