// Package integrity provides system health checks for the import service.
//
// # Checks Provided
//
//   - Server: Validates that the connected database schema matches the persistence models (columns, types).
//   - Storage: Checks that the import archive bucket exists, and creates it on request.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/server : Runs server schema check.
//   - GET /integrity/storage : Runs storage check (supports ?fix=true).
package integrity
