package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"backoffice/core/config"
	"backoffice/core/reconcile"
	"backoffice/feature/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDecodeRows(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		rows, err := decodeRows(strings.NewReader(`
- document_number: 10203040
  first_name: Ana
  status: ACTIVE
- {}
- document_number: "00012345"
  first_name: Luis
`))
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "10203040", rows[0]["document_number"])
		assert.True(t, rows[1].IsBlank())
		assert.Equal(t, "00012345", rows[2]["document_number"])
	})

	t.Run("json", func(t *testing.T) {
		rows, err := decodeRows(strings.NewReader(`[{"tax_id": "900100200", "name": "Acme"}]`))
		require.NoError(t, err)
		assert.Equal(t, []reconcile.Row{{"tax_id": "900100200", "name": "Acme"}}, rows)
	})

	t.Run("empty", func(t *testing.T) {
		rows, err := decodeRows(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("not a list", func(t *testing.T) {
		_, err := decodeRows(strings.NewReader("name: Acme"))
		assert.ErrorContains(t, err, "failed to decode rows file")
	})
}

func TestConfirmDestructiveAction(t *testing.T) {
	t.Cleanup(func() { yesConfirm = false })

	var out bytes.Buffer
	assert.True(t, confirmDestructiveAction(strings.NewReader("yes\n"), &out))
	assert.Contains(t, out.String(), "Type 'yes'")
	assert.False(t, confirmDestructiveAction(strings.NewReader("y\n"), &out))
	assert.False(t, confirmDestructiveAction(strings.NewReader(""), &out))

	yesConfirm = true
	assert.True(t, confirmDestructiveAction(strings.NewReader(""), &out))
}

func openTestDB(t *testing.T) *gorm.DB {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, models.Migrate(db))
	return db
}

func TestSeedDocumentTypes(t *testing.T) {
	db := openTestDB(t)

	created, err := seedDocumentTypes(db, []string{"CC", "NIT"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, created)

	created, err = seedDocumentTypes(db, []string{"CC", "PP"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, created)
}

func TestNewImportService(t *testing.T) {
	cfg := &config.Config{}
	svc := newImportService(cfg, zap.NewNop(), nil, nil)
	assert.Equal(t, []string{"clients", "suppliers"}, svc.Entities())

	client, err := storageClient(cfg)
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func seedSupplier(t *testing.T, db *gorm.DB, id, taxID, name string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Supplier{
		Base:      models.Base{ID: id},
		CompanyID: "acme",
		TaxID:     &taxID,
		Name:      name,
		Phone:     "3000000000",
		Address:   "Old address",
	}).Error)
}

func supplierNames(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	var names []string
	require.NoError(t, db.Model(&models.Supplier{}).Where("company_id = ?", "acme").Order("name").Pluck("name", &names).Error)
	return names
}

func TestPlanAndApply(t *testing.T) {
	importTenant = "acme"
	t.Cleanup(func() { importTenant = "" })

	cfg := &config.Config{Reconcile: reconcile.Config{TimeoutSeconds: 5, HeaderRows: 1}}
	batch := []reconcile.Row{{
		"tax_id":        "900100200",
		"name":          "Acme",
		"phone":         "3001112222",
		"address":       "Calle 1 # 2-3",
		"supplier_type": "Company",
		"status":        "ACTIVE",
	}}

	t.Run("applies the confirmed plan", func(t *testing.T) {
		db := openTestDB(t)
		seedSupplier(t, db, "s-1", "900100200", "Acme")
		seedSupplier(t, db, "s-2", "900999999", "Stale")
		svc := newImportService(cfg, zap.NewNop(), db, nil)

		var out bytes.Buffer
		err := planAndApply(context.Background(), svc, zap.NewNop(), &out, "suppliers", batch, func() bool { return true })
		require.NoError(t, err)
		assert.Contains(t, out.String(), "  - 900999999")
		assert.Contains(t, out.String(), "This operation is irreversible.")
		assert.Equal(t, []string{"Acme"}, supplierNames(t, db))
	})

	t.Run("cancelled", func(t *testing.T) {
		db := openTestDB(t)
		seedSupplier(t, db, "s-2", "900999999", "Stale")
		svc := newImportService(cfg, zap.NewNop(), db, nil)

		var out bytes.Buffer
		err := planAndApply(context.Background(), svc, zap.NewNop(), &out, "suppliers", batch, func() bool { return false })
		require.NoError(t, err)
		assert.Equal(t, []string{"Stale"}, supplierNames(t, db))
	})

	t.Run("records changed while confirming", func(t *testing.T) {
		db := openTestDB(t)
		seedSupplier(t, db, "s-1", "900100200", "Acme")
		svc := newImportService(cfg, zap.NewNop(), db, nil)

		var out bytes.Buffer
		err := planAndApply(context.Background(), svc, zap.NewNop(), &out, "suppliers", batch, func() bool {
			// Not in the printed plan; the new plan would delete it.
			seedSupplier(t, db, "s-3", "900777777", "Late")
			return true
		})
		assert.ErrorIs(t, err, reconcile.ErrPlanChanged)
		assert.Contains(t, out.String(), "Run the import again")
		assert.Equal(t, []string{"Acme", "Late"}, supplierNames(t, db))

		var phones []string
		require.NoError(t, db.Model(&models.Supplier{}).Where("id = ?", "s-1").Pluck("phone", &phones).Error)
		assert.Equal(t, []string{"3000000000"}, phones, "the update was not applied either")
	})
}
