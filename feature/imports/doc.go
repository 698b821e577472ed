// Package imports exposes the bulk import engine over HTTP.
//
// It keeps one reconcile.Spec per entity type, runs imports for a tenant,
// archives every finished import and lists the archive.
//
// Routes:
//
//	POST /tenants/:tenant/imports/:entity   run an import (dry run, plan or apply)
//	GET  /tenants/:tenant/imports/:entity   list archived imports, newest first
package imports
