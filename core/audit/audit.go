package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"backoffice/core/reconcile"
	"backoffice/core/storage"

	"github.com/minio/minio-go/v7"
)

const rootPrefix = "imports"

// Archive stores import outcomes as JSON objects in a bucket.
// A nil *Archive is valid and archives nothing.
type Archive struct {
	client storage.Client
	bucket string
}

// New creates an archive writing to bucket.
func New(client storage.Client, bucket string) *Archive {
	return &Archive{client: client, bucket: bucket}
}

// ObjectName returns the object key of an archived outcome.
func ObjectName(entity, tenant, importID string) string {
	return path.Join(rootPrefix, entity, tenant, importID+".json")
}

func prefix(entity, tenant string) string {
	return path.Join(rootPrefix, entity, tenant) + "/"
}

// Record archives the outcome of one import.
func (a *Archive) Record(ctx context.Context, out *reconcile.Outcome) error {
	if a == nil {
		return nil
	}

	body, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to encode outcome: %w", err)
	}

	name := ObjectName(out.Entity, out.Tenant, out.ImportID)
	_, err = a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", name, err)
	}
	return nil
}

// List returns the archived outcomes of an entity and tenant, newest first.
func (a *Archive) List(ctx context.Context, entity, tenant string) ([]reconcile.Outcome, error) {
	if a == nil {
		return []reconcile.Outcome{}, nil
	}

	objects, err := a.objects(ctx, entity, tenant)
	if err != nil {
		return nil, err
	}

	outcomes := make([]reconcile.Outcome, 0, len(objects))
	for _, obj := range objects {
		out, err := a.read(ctx, obj.Key)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, out)
	}

	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].StartedAt.After(outcomes[j].StartedAt)
	})
	return outcomes, nil
}

// Prune removes all but the keep most recent archives of an entity and tenant.
// It returns the number of archives removed.
func (a *Archive) Prune(ctx context.Context, entity, tenant string, keep int) (int, error) {
	if a == nil {
		return 0, nil
	}

	objects, err := a.objects(ctx, entity, tenant)
	if err != nil {
		return 0, err
	}
	if len(objects) <= keep {
		return 0, nil
	}

	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})
	stale := objects[keep:]

	objectsCh := make(chan minio.ObjectInfo, len(stale))
	for _, obj := range stale {
		objectsCh <- obj
	}
	close(objectsCh)

	for rerr := range a.client.RemoveObjects(ctx, a.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil {
			return 0, fmt.Errorf("failed to remove %s: %w", rerr.ObjectName, rerr.Err)
		}
	}
	return len(stale), nil
}

func (a *Archive) objects(ctx context.Context, entity, tenant string) ([]minio.ObjectInfo, error) {
	var objects []minio.ObjectInfo
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    prefix(entity, tenant),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list archives: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, ".json") {
			objects = append(objects, obj)
		}
	}
	return objects, nil
}

func (a *Archive) read(ctx context.Context, name string) (reconcile.Outcome, error) {
	var out reconcile.Outcome

	r, err := a.client.GetObject(ctx, a.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return out, fmt.Errorf("failed to read %s: %w", name, err)
	}
	defer r.Close()

	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return out, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return out, nil
}
