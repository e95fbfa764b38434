package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"catalog-sync/core/pim"

	"go.uber.org/zap"
)

// Creator creates missing category paths on the remote catalog service.
//
// Creation walks are serialized through an internal mutex: two concurrent
// walks over overlapping path prefixes would both decide a segment is
// missing and create duplicate siblings, since the service assigns ids
// without any uniqueness constraint on the header. Callers that bypass this
// type and talk to the service directly must provide the same ordering
// themselves.
type Creator struct {
	client pim.Client
	cache  *Cache
	rootID int
	logger *zap.Logger

	mu sync.Mutex
}

// NewCreator creates a category creator over the given snapshot cache.
func NewCreator(client pim.Client, cache *Cache, rootID int, logger *zap.Logger) *Creator {
	return &Creator{
		client: client,
		cache:  cache,
		rootID: rootID,
		logger: logger,
	}
}

var errCreatedNodeNotVisible = errors.New("created node not present after re-fetch")

// EnsureCategoryPath walks the given path segments under the configured
// root, creating every missing segment remotely. After each creation the
// tree is re-fetched and re-flattened, because the new node's id and
// nested-set bounds are unknown until the service assigns them.
//
// The walk is idempotent: existing segments are advanced through without a
// remote call. On any failure the walk stops, no later segments are
// attempted, and a CategoryCreationError with the failing segment is
// returned.
func (c *Creator) EnsureCategoryPath(ctx context.Context, segments []string) (*CatalogNode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	trimmed := make([]string, 0, len(segments))
	for _, seg := range segments {
		if s := strings.TrimSpace(seg); s != "" {
			trimmed = append(trimmed, s)
		}
	}
	if len(trimmed) == 0 {
		return nil, nil
	}

	snap, err := c.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	root := snap.NodeByID(c.rootID)
	if root == nil {
		return nil, &CategoryCreationError{
			Segment: trimmed[0],
			Err:     fmt.Errorf("root catalog %d not present in snapshot", c.rootID),
		}
	}

	currentParent := root.ID
	currentKey := matchKey(root.PathArray)
	index := snap.PathIndex()

	for i, segment := range trimmed {
		nextKey := currentKey + matchSeparator + normalizeSegment(segment)

		if node, ok := index[nextKey]; ok {
			currentParent = node.ID
			currentKey = nextKey
			continue
		}

		c.logger.Info("creating missing category",
			zap.String("header", segment),
			zap.Int("parent_id", currentParent),
		)

		err := c.client.CreateNode(ctx, pim.CreateNodeRequest{
			Header:    segment,
			ParentID:  currentParent,
			LastLevel: i == len(trimmed)-1,
		})
		if err != nil {
			return nil, &CategoryCreationError{Segment: segment, Err: err}
		}

		// The snapshot is stale the moment the remote tree mutates.
		c.cache.Invalidate()
		snap, err = c.cache.Refresh(ctx)
		if err != nil {
			return nil, &CategoryCreationError{Segment: segment, Err: err}
		}
		index = snap.PathIndex()

		node, ok := index[nextKey]
		if !ok {
			return nil, &CategoryCreationError{Segment: segment, Err: errCreatedNodeNotVisible}
		}
		currentParent = node.ID
		currentKey = nextKey
	}

	return index[currentKey], nil
}
