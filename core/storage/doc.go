// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface, which supports both
// AWS S3 and self-hosted MinIO. The import archive (core/audit) is its only writer.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: bucket provisioning, see EnsureBucket.
//   - PutObject / GetObject: write and read archived outcomes.
//   - ListObjects: list archives under a prefix.
//   - RemoveObjects: bulk removal when pruning old archives.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
