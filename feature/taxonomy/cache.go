package taxonomy

import (
	"context"
	"sync"
	"time"

	"catalog-sync/core/pim"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache holds the current flattened snapshot of the catalog tree.
//
// Fetching and flattening the full tree is the expensive step of every
// operation, so the snapshot is cached with a TTL and rebuilt through
// singleflight to prevent stampedes. Any remote mutation must Invalidate
// the cache, because node ids and nested-set bounds are stale from that
// moment on.
type Cache struct {
	client    pim.Client
	catalogID int
	ttl       time.Duration
	logger    *zap.Logger

	mu   sync.RWMutex
	snap *Snapshot
	sf   singleflight.Group
}

// NewCache creates a snapshot cache over the given catalog subtree.
// A zero TTL disables caching; every Snapshot call re-fetches.
func NewCache(client pim.Client, catalogID int, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{
		client:    client,
		catalogID: catalogID,
		ttl:       ttl,
		logger:    logger,
	}
}

// Snapshot returns the current snapshot, rebuilding it when missing or
// expired.
func (c *Cache) Snapshot(ctx context.Context) (*Snapshot, error) {
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()

	if snap != nil && c.ttl > 0 && time.Since(snap.FetchedAt) <= c.ttl {
		return snap, nil
	}
	return c.Refresh(ctx)
}

// Refresh forces a re-fetch and re-flatten. Concurrent callers share one
// rebuild.
func (c *Cache) Refresh(ctx context.Context) (*Snapshot, error) {
	result, err, _ := c.sf.Do("snapshot", func() (any, error) {
		start := time.Now()

		raw, err := c.client.FetchTree(ctx, c.catalogID)
		if err != nil {
			return nil, err
		}

		snap, err := Flatten(raw)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.snap = snap
		c.mu.Unlock()

		c.logger.Debug("catalog snapshot rebuilt",
			zap.Int("catalog_id", c.catalogID),
			zap.Int("nodes", len(snap.Nodes)),
			zap.Duration("took", time.Since(start)),
		)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Snapshot), nil
}

// Invalidate drops the cached snapshot.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}
