package suppliers

import (
	"context"
	"fmt"

	"backoffice/core/reconcile"
	"backoffice/core/utils"
	"backoffice/feature/models"

	"gorm.io/gorm"
)

// Import columns.
const (
	FieldTaxID        = "tax_id"
	FieldName         = "name"
	FieldPhone        = "phone"
	FieldAddress      = "address"
	FieldSupplierType = "supplier_type"
	FieldDescription  = "description"
	FieldStatus       = "status"
)

// Columns lists the import columns in template order.
var Columns = []string{
	FieldTaxID, FieldName, FieldPhone, FieldAddress, FieldSupplierType, FieldDescription, FieldStatus,
}

const deleteChunk = 500

// Adapter reconciles supplier imports. Suppliers are matched by tax id, or by
// name when a tax id is missing, and protected from deletion by their purchases.
type Adapter struct{}

// NewAdapter creates a supplier adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Name() string { return "suppliers" }

func (a *Adapter) Labels() reconcile.Labels {
	return reconcile.Labels{Singular: "supplier", Plural: "suppliers", Dependents: "purchases"}
}

func (a *Adapter) Rules(ctx context.Context, db *gorm.DB) ([]reconcile.Rule, error) {
	return []reconcile.Rule{
		reconcile.Required(FieldName, "name"),
		reconcile.Required(FieldPhone, "phone"),
		reconcile.Required(FieldAddress, "address"),
		reconcile.OneOf(FieldSupplierType, "supplier type", models.SupplierNatural, models.SupplierCompany),
		reconcile.Digits(FieldPhone, "phone"),
		reconcile.MinLength(FieldPhone, "phone", 8),
		reconcile.MaxLength(FieldPhone, "phone", 10),
		reconcile.OneOf(FieldStatus, "status", models.StatusActive, models.StatusInactive),
		reconcile.MaxLength(FieldTaxID, "tax id", 20),
		reconcile.MaxLength(FieldName, "name", 150),
		reconcile.MaxLength(FieldAddress, "address", 255),
		reconcile.MaxLength(FieldDescription, "description", 500),
	}, nil
}

func (a *Adapter) UniqueFields() []reconcile.UniqueField {
	return []reconcile.UniqueField{
		{Field: FieldTaxID, Label: "Tax id"},
		{Field: FieldPhone, Label: "Phone"},
		{Field: FieldName, Label: "Name"},
	}
}

func (a *Adapter) PrimaryKey(row reconcile.Row) string {
	return row.Get(FieldTaxID)
}

func (a *Adapter) SecondaryKey(row reconcile.Row) string {
	return row.Get(FieldName)
}

func (a *Adapter) LoadEntities(ctx context.Context, db *gorm.DB, tenant string) ([]reconcile.Entity, error) {
	var rows []struct {
		ID        string
		TaxID     *string
		Name      string
		Purchases int64
	}
	err := db.WithContext(ctx).
		Table("suppliers").
		Select("suppliers.id, suppliers.tax_id, suppliers.name, (SELECT COUNT(*) FROM purchases WHERE purchases.supplier_id = suppliers.id) AS purchases").
		Where("suppliers.company_id = ?", tenant).
		Order("suppliers.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load suppliers: %w", err)
	}

	entities := make([]reconcile.Entity, len(rows))
	for i, r := range rows {
		entities[i] = reconcile.Entity{
			ID:           r.ID,
			PrimaryKey:   utils.Deref(r.TaxID),
			SecondaryKey: r.Name,
			Dependents:   r.Purchases,
		}
	}
	return entities, nil
}

func (a *Adapter) DeleteBatch(ctx context.Context, tx *gorm.DB, tenant string, ids []string) error {
	var deleted int64
	for start := 0; start < len(ids); start += deleteChunk {
		chunk := ids[start:min(start+deleteChunk, len(ids))]
		res := tx.
			Where("company_id = ? AND id IN ?", tenant, chunk).
			Where("NOT EXISTS (SELECT 1 FROM purchases WHERE purchases.supplier_id = suppliers.id)").
			Delete(&models.Supplier{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete suppliers: %w", res.Error)
		}
		deleted += res.RowsAffected
	}
	if deleted != int64(len(ids)) {
		return fmt.Errorf("%d of %d suppliers could not be deleted, purchases may have been recorded since the import was planned", int64(len(ids))-deleted, len(ids))
	}
	return nil
}

// Update overwrites the supplier. A tax id missing from the row keeps the stored one.
func (a *Adapter) Update(ctx context.Context, tx *gorm.DB, tenant, id string, row reconcile.Row) error {
	values := map[string]interface{}{
		"name":          row.Get(FieldName),
		"phone":         row.Get(FieldPhone),
		"address":       row.Get(FieldAddress),
		"supplier_type": supplierType(row),
		"description":   utils.NullIfEmpty(row.Get(FieldDescription)),
		"status":        status(row),
	}
	if taxID := row.Get(FieldTaxID); taxID != "" {
		values["tax_id"] = taxID
	}

	err := tx.Model(&models.Supplier{}).Where("company_id = ? AND id = ?", tenant, id).Updates(values).Error
	if err != nil {
		return fmt.Errorf("failed to update supplier %s: %w", row.Get(FieldName), err)
	}
	return nil
}

func (a *Adapter) Create(ctx context.Context, tx *gorm.DB, tenant string, row reconcile.Row) error {
	supplier := models.Supplier{
		CompanyID:    tenant,
		TaxID:        utils.NullIfEmpty(row.Get(FieldTaxID)),
		Name:         row.Get(FieldName),
		Phone:        row.Get(FieldPhone),
		Address:      row.Get(FieldAddress),
		SupplierType: supplierType(row),
		Description:  utils.NullIfEmpty(row.Get(FieldDescription)),
		Status:       status(row),
	}
	if err := tx.Create(&supplier).Error; err != nil {
		return fmt.Errorf("failed to create supplier %s: %w", supplier.Name, err)
	}
	return nil
}

func supplierType(row reconcile.Row) string {
	s, _ := reconcile.Canonical([]string{models.SupplierNatural, models.SupplierCompany}, row.Get(FieldSupplierType))
	return s
}

func status(row reconcile.Row) string {
	s, _ := reconcile.Canonical([]string{models.StatusActive, models.StatusInactive}, row.Get(FieldStatus))
	return s
}
