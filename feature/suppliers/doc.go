// Package suppliers provides the bulk import adapter for a company's suppliers.
//
// Suppliers are matched by tax id. When either the row or the stored supplier
// has no tax id, the name is used instead. A supplier absent from the imported
// file is deleted only when it has no purchases.
package suppliers
