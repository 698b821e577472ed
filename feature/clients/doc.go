// Package clients provides the bulk import adapter for a company's clients.
//
// Clients are matched by document number. A client absent from the imported
// file is deleted only when it has no sales. Rows reference document types by
// name; the names are cached for the configured TTL.
package clients
