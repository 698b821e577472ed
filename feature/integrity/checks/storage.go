package checks

import (
	"context"
	"fmt"

	"backoffice/core/storage"

	"go.uber.org/zap"
)

// StorageReport is the result of an archive bucket check.
type StorageReport struct {
	Bucket string `json:"bucket"`
	Exists bool   `json:"exists"`
	Status string `json:"status"` // "ok", "missing", "fixed"
}

// CheckStorage reports whether the archive bucket exists.
func CheckStorage(ctx context.Context, client storage.Client, bucket string) (*StorageReport, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	report := &StorageReport{Bucket: bucket, Exists: exists, Status: "ok"}
	if !exists {
		report.Status = "missing"
	}
	return report, nil
}

// FixStorage creates the archive bucket if it is missing.
func FixStorage(ctx context.Context, client storage.Client, bucket, region string, logger *zap.Logger) error {
	if err := storage.EnsureBucket(ctx, client, bucket, region); err != nil {
		logger.Error("Failed to create bucket", zap.String("bucket", bucket), zap.Error(err))
		return err
	}
	logger.Info("Archive bucket ready", zap.String("bucket", bucket))
	return nil
}
