package clients

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backoffice/core/reconcile"
	"backoffice/core/utils"
	"backoffice/feature/models"

	"gorm.io/gorm"
)

// Import columns.
const (
	FieldFirstName      = "first_name"
	FieldMiddleName     = "middle_name"
	FieldLastName       = "last_name"
	FieldSecondLastName = "second_last_name"
	FieldDocumentType   = "document_type"
	FieldDocumentNumber = "document_number"
	FieldEmail          = "email"
	FieldPhone          = "phone"
	FieldAddress        = "address"
	FieldStatus         = "status"
)

// Columns lists the import columns in template order.
var Columns = []string{
	FieldFirstName, FieldMiddleName, FieldLastName, FieldSecondLastName,
	FieldDocumentType, FieldDocumentNumber, FieldEmail, FieldPhone, FieldAddress, FieldStatus,
}

const documentTypesKey = "document_types"

// deleteChunk bounds the IN list of one bulk delete statement.
const deleteChunk = 500

// Adapter reconciles client imports. Clients are matched by document number
// and protected from deletion by their sales.
type Adapter struct {
	lookupTTL time.Duration
}

// NewAdapter creates a client adapter caching document types for lookupTTL.
func NewAdapter(lookupTTL time.Duration) *Adapter {
	return &Adapter{lookupTTL: lookupTTL}
}

func (a *Adapter) Name() string { return "clients" }

func (a *Adapter) Labels() reconcile.Labels {
	return reconcile.Labels{Singular: "client", Plural: "clients", Dependents: "sales"}
}

func (a *Adapter) Rules(ctx context.Context, db *gorm.DB) ([]reconcile.Rule, error) {
	types, err := a.documentTypes(ctx, db)
	if err != nil {
		return nil, err
	}

	return []reconcile.Rule{
		reconcile.Required(FieldFirstName, "first name"),
		reconcile.Required(FieldLastName, "last name"),
		reconcile.Required(FieldDocumentNumber, "document number"),
		reconcile.Required(FieldEmail, "email"),
		reconcile.Required(FieldPhone, "phone"),
		reconcile.Exists(FieldDocumentType, "document type", types.Names()),
		reconcile.Digits(FieldDocumentNumber, "document number"),
		reconcile.MinLength(FieldDocumentNumber, "document number", 8),
		reconcile.MaxLength(FieldDocumentNumber, "document number", 10),
		reconcile.Digits(FieldPhone, "phone"),
		reconcile.MinLength(FieldPhone, "phone", 8),
		reconcile.MaxLength(FieldPhone, "phone", 10),
		reconcile.Email(FieldEmail, "email"),
		reconcile.MaxLength(FieldEmail, "email", 150),
		reconcile.MaxLength(FieldFirstName, "first name", 100),
		reconcile.MaxLength(FieldMiddleName, "middle name", 100),
		reconcile.MaxLength(FieldLastName, "last name", 100),
		reconcile.MaxLength(FieldSecondLastName, "second last name", 100),
		reconcile.MaxLength(FieldAddress, "address", 255),
		reconcile.OneOf(FieldStatus, "status", models.StatusActive, models.StatusInactive),
	}, nil
}

func (a *Adapter) UniqueFields() []reconcile.UniqueField {
	return []reconcile.UniqueField{
		{Field: FieldDocumentNumber, Label: "Document number"},
		{Field: FieldEmail, Label: "Email"},
		{Field: FieldPhone, Label: "Phone"},
	}
}

func (a *Adapter) PrimaryKey(row reconcile.Row) string {
	return row.Get(FieldDocumentNumber)
}

// SecondaryKey is empty: clients have no fallback key.
func (a *Adapter) SecondaryKey(row reconcile.Row) string {
	return ""
}

func (a *Adapter) LoadEntities(ctx context.Context, db *gorm.DB, tenant string) ([]reconcile.Entity, error) {
	var rows []struct {
		ID             string
		DocumentNumber string
		Sales          int64
	}
	err := db.WithContext(ctx).
		Table("clients").
		Select("clients.id, clients.document_number, (SELECT COUNT(*) FROM sales WHERE sales.client_id = clients.id) AS sales").
		Where("clients.company_id = ?", tenant).
		Order("clients.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}

	entities := make([]reconcile.Entity, len(rows))
	for i, r := range rows {
		entities[i] = reconcile.Entity{ID: r.ID, PrimaryKey: r.DocumentNumber, Dependents: r.Sales}
	}
	return entities, nil
}

func (a *Adapter) DeleteBatch(ctx context.Context, tx *gorm.DB, tenant string, ids []string) error {
	var deleted int64
	for start := 0; start < len(ids); start += deleteChunk {
		chunk := ids[start:min(start+deleteChunk, len(ids))]
		res := tx.
			Where("company_id = ? AND id IN ?", tenant, chunk).
			Where("NOT EXISTS (SELECT 1 FROM sales WHERE sales.client_id = clients.id)").
			Delete(&models.Client{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete clients: %w", res.Error)
		}
		deleted += res.RowsAffected
	}
	if deleted != int64(len(ids)) {
		return fmt.Errorf("%d of %d clients could not be deleted, sales may have been recorded since the import was planned", int64(len(ids))-deleted, len(ids))
	}
	return nil
}

func (a *Adapter) Update(ctx context.Context, tx *gorm.DB, tenant, id string, row reconcile.Row) error {
	docType, err := a.documentTypeID(ctx, tx, row)
	if err != nil {
		return err
	}

	values := map[string]interface{}{
		"first_name":       row.Get(FieldFirstName),
		"middle_name":      utils.NullIfEmpty(row.Get(FieldMiddleName)),
		"last_name":        row.Get(FieldLastName),
		"second_last_name": utils.NullIfEmpty(row.Get(FieldSecondLastName)),
		"document_type_id": docType,
		"document_number":  row.Get(FieldDocumentNumber),
		"email":            strings.ToLower(row.Get(FieldEmail)),
		"phone":            row.Get(FieldPhone),
		"address":          utils.NullIfEmpty(row.Get(FieldAddress)),
		"status":           status(row),
	}
	err = tx.Model(&models.Client{}).Where("company_id = ? AND id = ?", tenant, id).Updates(values).Error
	if err != nil {
		return fmt.Errorf("failed to update client %s: %w", row.Get(FieldDocumentNumber), err)
	}
	return nil
}

func (a *Adapter) Create(ctx context.Context, tx *gorm.DB, tenant string, row reconcile.Row) error {
	docType, err := a.documentTypeID(ctx, tx, row)
	if err != nil {
		return err
	}

	client := models.Client{
		CompanyID:      tenant,
		FirstName:      row.Get(FieldFirstName),
		MiddleName:     utils.NullIfEmpty(row.Get(FieldMiddleName)),
		LastName:       row.Get(FieldLastName),
		SecondLastName: utils.NullIfEmpty(row.Get(FieldSecondLastName)),
		DocumentTypeID: docType,
		DocumentNumber: row.Get(FieldDocumentNumber),
		Email:          strings.ToLower(row.Get(FieldEmail)),
		Phone:          row.Get(FieldPhone),
		Address:        utils.NullIfEmpty(row.Get(FieldAddress)),
		Status:         status(row),
	}
	if err := tx.Create(&client).Error; err != nil {
		return fmt.Errorf("failed to create client %s: %w", client.DocumentNumber, err)
	}
	return nil
}

func status(row reconcile.Row) string {
	s, _ := reconcile.Canonical([]string{models.StatusActive, models.StatusInactive}, row.Get(FieldStatus))
	return s
}

func (a *Adapter) documentTypes(ctx context.Context, db *gorm.DB) (reconcile.Lookup, error) {
	return reconcile.GetOrLoadLookup(ctx, documentTypesKey, a.lookupTTL, func(ctx context.Context) (reconcile.Lookup, error) {
		var types []models.DocumentType
		if err := db.WithContext(ctx).Find(&types).Error; err != nil {
			return nil, fmt.Errorf("failed to load document types: %w", err)
		}
		lookup := make(reconcile.Lookup, len(types))
		for _, t := range types {
			lookup[reconcile.FoldKey(t.Name)] = t.ID
		}
		return lookup, nil
	})
}

func (a *Adapter) documentTypeID(ctx context.Context, db *gorm.DB, row reconcile.Row) (string, error) {
	types, err := a.documentTypes(ctx, db)
	if err != nil {
		return "", err
	}
	id, ok := types.ID(row.Get(FieldDocumentType))
	if !ok {
		return "", fmt.Errorf("document type %q does not exist", row.Get(FieldDocumentType))
	}
	return id, nil
}
