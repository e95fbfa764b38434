package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"catalog-sync/core/storage"
	"catalog-sync/feature/taxonomy"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// snapshotPrefix is the object key prefix snapshot archives are stored
// under.
const snapshotPrefix = "snapshots/"

// Archive stores flattened-tree snapshots in object storage.
type Archive struct {
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewArchive creates a snapshot archive over the given bucket.
func NewArchive(client storage.Client, bucket string, logger *zap.Logger) *Archive {
	return &Archive{
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

// snapshotPayload is the serialized archive shape. The hierarchy map is
// keyed by stringified node ids so the JSON object keys stay stable.
type snapshotPayload struct {
	GeneratedAt string                              `json:"generated_at"`
	Source      string                              `json:"source"`
	Statistics  taxonomy.TreeStats                  `json:"statistics"`
	Catalogs    []*taxonomy.CatalogNode             `json:"catalogs"`
	Hierarchy   map[string]*taxonomy.HierarchyEntry `json:"hierarchy_map"`
}

// Save marshals the snapshot and writes it under snapshots/ with a
// timestamped key. The object name is returned.
func (a *Archive) Save(ctx context.Context, snap *taxonomy.Snapshot) (string, error) {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return "", fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
		}
	}

	hierarchy := make(map[string]*taxonomy.HierarchyEntry, len(snap.Hierarchy))
	for id, entry := range snap.Hierarchy {
		hierarchy[strconv.Itoa(id)] = entry
	}

	payload := snapshotPayload{
		GeneratedAt: snap.FetchedAt.UTC().Format(time.RFC3339),
		Source:      "catalog-sync",
		Statistics:  snap.Stats,
		Catalogs:    snap.Nodes,
		Hierarchy:   hierarchy,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	objectName := fmt.Sprintf("%scatalog_%s.json", snapshotPrefix, snap.FetchedAt.UTC().Format("20060102T150405Z"))
	_, err = a.client.PutObject(ctx, a.bucket, objectName,
		bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return "", fmt.Errorf("failed to store snapshot: %w", err)
	}

	a.logger.Info("snapshot archived",
		zap.String("object", objectName),
		zap.Int("nodes", len(snap.Nodes)),
		zap.Int("bytes", len(body)),
	)
	return objectName, nil
}

// List returns the archived snapshot object names in ascending key
// order. The timestamped key format makes that oldest first.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	var names []string
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    snapshotPrefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", obj.Err)
		}
		names = append(names, obj.Key)
	}
	sort.Strings(names)
	return names, nil
}

// Open returns a reader over one archived snapshot. The caller closes it.
func (a *Archive) Open(ctx context.Context, objectName string) (io.ReadCloser, error) {
	rc, err := a.client.GetObject(ctx, a.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", objectName, err)
	}
	return rc, nil
}

// Prune removes the oldest snapshots so at most keep remain. It returns
// the removed object names.
func (a *Archive) Prune(ctx context.Context, keep int) ([]string, error) {
	if keep < 1 {
		keep = 1
	}
	names, err := a.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) <= keep {
		return nil, nil
	}

	stale := names[:len(names)-keep]
	for _, name := range stale {
		if err := a.client.RemoveObject(ctx, a.bucket, name, minio.RemoveObjectOptions{}); err != nil {
			return nil, fmt.Errorf("failed to remove snapshot %s: %w", name, err)
		}
	}
	a.logger.Info("snapshots pruned",
		zap.Int("removed", len(stale)),
		zap.Int("kept", keep),
	)
	return stale, nil
}
