// Package models contains the GORM models of the records imported in bulk and of
// the transactions that protect them.
//
// Every record belongs to a company (the tenant, CompanyID) except document
// types, which are shared. Records are hard-deleted: a bulk import removes
// clients and suppliers that are absent from the file and have no sales or
// purchases.
//
// # Tables
//
//   - clients, natural key (company_id, document_number), protected by sales
//   - suppliers, natural key (company_id, tax_id) with name as fallback, protected by purchases
//   - document_types, referenced by clients
package models
