package integrity

import (
	"context"
	"errors"

	"backoffice/core/storage"
	"backoffice/feature/integrity/checks"
	"backoffice/feature/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrStorageDisabled is returned by storage checks when no archive is configured.
var ErrStorageDisabled = errors.New("storage is not enabled")

// Service handles integrity checks.
type Service struct {
	client storage.Client
	bucket string
	region string
	logger *zap.Logger
	db     *gorm.DB
}

// NewService creates a new integrity service. client may be nil when storage is disabled.
func NewService(client storage.Client, bucket, region string, logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		region: region,
		logger: logger,
		db:     db,
	}
}

// CheckServer compares the live schema with the persistence models.
func (s *Service) CheckServer() (*checks.ServerReport, error) {
	return checks.CheckServerIntegrity(s.db, models.All())
}

// CheckStorage reports on the archive bucket.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	if s.client == nil {
		return nil, ErrStorageDisabled
	}
	return checks.CheckStorage(ctx, s.client, s.bucket)
}

// FixStorage creates the archive bucket.
func (s *Service) FixStorage(ctx context.Context) error {
	if s.client == nil {
		return ErrStorageDisabled
	}
	return checks.FixStorage(ctx, s.client, s.bucket, s.region, s.logger)
}
