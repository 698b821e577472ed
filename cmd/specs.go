package cmd

import (
	"context"
	"fmt"
	"time"

	"backoffice/core/audit"
	"backoffice/core/config"
	"backoffice/core/reconcile"
	"backoffice/core/storage"
	"backoffice/feature/clients"
	"backoffice/feature/imports"
	"backoffice/feature/suppliers"

	"github.com/moby/locker"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// newSpecs returns one engine spec per importable entity type. The specs share
// one locker so imports of a tenant are serialized per entity type.
func newSpecs(cfg *config.Config, logg *zap.Logger) []*reconcile.Spec {
	locks := locker.New()
	return []*reconcile.Spec{
		{Adapter: clients.NewAdapter(cfg.Reconcile.LookupTTL()), Config: cfg.Reconcile, Logger: logg, Locks: locks},
		{Adapter: suppliers.NewAdapter(), Config: cfg.Reconcile, Logger: logg, Locks: locks},
	}
}

// storageClient returns the archive storage client, or nil when storage is disabled.
func storageClient(cfg *config.Config) (storage.Client, error) {
	if !cfg.Storage.Enabled {
		return nil, nil
	}
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return client, nil
}

// newStorage connects to the archive bucket, creating it if needed.
// It returns a nil client when storage is disabled.
func newStorage(ctx context.Context, cfg *config.Config) (storage.Client, error) {
	client, err := storageClient(cfg)
	if err != nil || client == nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Storage.TimeoutSeconds)*time.Second)
	defer cancel()
	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		return nil, err
	}
	return client, nil
}

// newImportService wires the engine specs, the database and the optional archive.
func newImportService(cfg *config.Config, logg *zap.Logger, db *gorm.DB, client storage.Client) *imports.Service {
	var archive *audit.Archive
	if client != nil {
		archive = audit.New(client, cfg.Storage.Bucket)
	}
	return imports.NewService(db, logg, archive, cfg.Storage.Retention, newSpecs(cfg, logg)...)
}
