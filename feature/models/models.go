package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client and supplier status values.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// Supplier types.
const (
	SupplierNatural = "Natural"
	SupplierCompany = "Company"
)

// Base holds the columns shared by every table.
type Base struct {
	ID        string    `gorm:"primaryKey;column:id;type:varchar(36)"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// BeforeCreate assigns a UUID when the record has none.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// DocumentType is an identity document kind (e.g. "CC", "NIT"). Shared by all tenants.
type DocumentType struct {
	Base
	Name string `gorm:"column:name;type:varchar(50);not null;uniqueIndex"`
}

func (DocumentType) TableName() string {
	return "document_types"
}

// Client is a customer of a company.
type Client struct {
	Base
	CompanyID      string  `gorm:"column:company_id;type:varchar(36);not null;uniqueIndex:ux_clients_company_document,priority:1"`
	FirstName      string  `gorm:"column:first_name;type:varchar(100);not null"`
	MiddleName     *string `gorm:"column:middle_name;type:varchar(100)"`
	LastName       string  `gorm:"column:last_name;type:varchar(100);not null"`
	SecondLastName *string `gorm:"column:second_last_name;type:varchar(100)"`
	DocumentTypeID string  `gorm:"column:document_type_id;type:varchar(36);not null"`
	DocumentNumber string  `gorm:"column:document_number;type:varchar(20);not null;uniqueIndex:ux_clients_company_document,priority:2"`
	Email          string  `gorm:"column:email;type:varchar(150);not null"`
	Phone          string  `gorm:"column:phone;type:varchar(20);not null"`
	Address        *string `gorm:"column:address;type:varchar(255)"`
	Status         string  `gorm:"column:status;type:varchar(10);not null;default:ACTIVE"`
}

func (Client) TableName() string {
	return "clients"
}

// Sale is a transaction that references a client. A client with sales is never deleted.
type Sale struct {
	Base
	CompanyID string  `gorm:"column:company_id;type:varchar(36);not null;index"`
	ClientID  string  `gorm:"column:client_id;type:varchar(36);not null;index"`
	Total     float64 `gorm:"column:total;not null;default:0"`
}

func (Sale) TableName() string {
	return "sales"
}

// Supplier is a vendor of a company.
type Supplier struct {
	Base
	CompanyID    string  `gorm:"column:company_id;type:varchar(36);not null;uniqueIndex:ux_suppliers_company_name,priority:1;uniqueIndex:ux_suppliers_company_tax,priority:1"`
	TaxID        *string `gorm:"column:tax_id;type:varchar(20);uniqueIndex:ux_suppliers_company_tax,priority:2"`
	Name         string  `gorm:"column:name;type:varchar(150);not null;uniqueIndex:ux_suppliers_company_name,priority:2"`
	Phone        string  `gorm:"column:phone;type:varchar(20);not null"`
	Address      string  `gorm:"column:address;type:varchar(255);not null"`
	SupplierType string  `gorm:"column:supplier_type;type:varchar(10);not null;default:Natural"`
	Description  *string `gorm:"column:description;type:varchar(500)"`
	Status       string  `gorm:"column:status;type:varchar(10);not null;default:ACTIVE"`
}

func (Supplier) TableName() string {
	return "suppliers"
}

// Purchase is a transaction that references a supplier. A supplier with purchases is never deleted.
type Purchase struct {
	Base
	CompanyID  string  `gorm:"column:company_id;type:varchar(36);not null;index"`
	SupplierID string  `gorm:"column:supplier_id;type:varchar(36);not null;index"`
	Total      float64 `gorm:"column:total;not null;default:0"`
}

func (Purchase) TableName() string {
	return "purchases"
}

// All returns every model, in migration order.
func All() []any {
	return []any{&DocumentType{}, &Client{}, &Sale{}, &Supplier{}, &Purchase{}}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
