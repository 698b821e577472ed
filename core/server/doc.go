// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package defines the
// configuration structure: listen port, API key, request body limit (import
// batches are posted as JSON) and the graceful shutdown timeout.
package server
