package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// widget is the persisted record used by the engine tests.
type widget struct {
	ID     string `gorm:"primaryKey"`
	Tenant string `gorm:"index"`
	Code   string
	Name   string
	Orders int64
}

// widgetAdapter reconciles widgets by code, optionally falling back to name.
type widgetAdapter struct {
	fallback   bool
	failCreate string
	rulesErr   error
	loadErr    error
}

func (a *widgetAdapter) Name() string { return "widgets" }

func (a *widgetAdapter) Labels() Labels {
	return Labels{Singular: "widget", Plural: "widgets", Dependents: "orders"}
}

func (a *widgetAdapter) Rules(ctx context.Context, db *gorm.DB) ([]Rule, error) {
	if a.rulesErr != nil {
		return nil, a.rulesErr
	}
	return []Rule{
		Required("name", "name"),
		Digits("code", "code"),
		MaxLength("code", "code", 6),
		Optional(OneOf("status", "status", "ACTIVE", "INACTIVE")),
	}, nil
}

func (a *widgetAdapter) UniqueFields() []UniqueField {
	return []UniqueField{{Field: "code", Label: "Code"}, {Field: "name", Label: "Name"}}
}

func (a *widgetAdapter) PrimaryKey(row Row) string { return row.Get("code") }

func (a *widgetAdapter) SecondaryKey(row Row) string {
	if !a.fallback {
		return ""
	}
	return row.Get("name")
}

func (a *widgetAdapter) LoadEntities(ctx context.Context, db *gorm.DB, tenant string) ([]Entity, error) {
	if a.loadErr != nil {
		return nil, a.loadErr
	}
	var ws []widget
	if err := db.WithContext(ctx).Where("tenant = ?", tenant).Order("id").Find(&ws).Error; err != nil {
		return nil, err
	}
	out := make([]Entity, len(ws))
	for i, w := range ws {
		out[i] = Entity{ID: w.ID, PrimaryKey: w.Code, Dependents: w.Orders}
		if a.fallback {
			out[i].SecondaryKey = w.Name
		}
	}
	return out, nil
}

func (a *widgetAdapter) DeleteBatch(ctx context.Context, tx *gorm.DB, tenant string, ids []string) error {
	res := tx.Where("tenant = ? AND id IN ? AND orders = 0", tenant, ids).Delete(&widget{})
	if res.Error != nil {
		return res.Error
	}
	if int(res.RowsAffected) != len(ids) {
		return fmt.Errorf("expected to delete %d widgets, deleted %d", len(ids), res.RowsAffected)
	}
	return nil
}

func (a *widgetAdapter) Update(ctx context.Context, tx *gorm.DB, tenant, id string, row Row) error {
	return tx.Model(&widget{}).
		Where("tenant = ? AND id = ?", tenant, id).
		Updates(map[string]interface{}{"code": row.Get("code"), "name": row.Get("name")}).Error
}

func (a *widgetAdapter) Create(ctx context.Context, tx *gorm.DB, tenant string, row Row) error {
	if a.failCreate != "" && row.Get("code") == a.failCreate {
		return errors.New("insert rejected")
	}
	return tx.Create(&widget{
		ID:     uuid.NewString(),
		Tenant: tenant,
		Code:   row.Get("code"),
		Name:   row.Get("name"),
	}).Error
}

// setupTestDB creates an in-memory SQLite DB with the widgets table.
func setupTestDB(t *testing.T) *gorm.DB {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&widget{}))
	return db
}

func seedWidgets(t *testing.T, db *gorm.DB, ws ...widget) {
	t.Helper()
	for _, w := range ws {
		require.NoError(t, db.Create(&w).Error)
	}
}

func loadWidgets(t *testing.T, db *gorm.DB, tenant string) map[string]widget {
	t.Helper()
	var ws []widget
	require.NoError(t, db.Where("tenant = ?", tenant).Find(&ws).Error)
	out := make(map[string]widget, len(ws))
	for _, w := range ws {
		out[w.Code] = w
	}
	return out
}

func rows(codes ...string) []Row {
	out := make([]Row, len(codes))
	for i, c := range codes {
		out[i] = Row{"code": c, "name": "Widget " + c}
	}
	return out
}

func testSpec(a Adapter) *Spec {
	return &Spec{Adapter: a, Config: Config{TimeoutSeconds: 5, ParallelThreshold: 100, HeaderRows: 1}}
}
