package taxonomy

import (
	"context"
	"sync"
	"time"

	"catalog-sync/core/pim"

	"go.uber.org/zap"
)

// snapshotTTL bounds how long HTTP endpoints may serve a stale tree.
// Mutations invalidate the cache regardless.
const snapshotTTL = 5 * time.Minute

// Service bundles the snapshot cache, the resolver and the category
// creator over one configured catalog subtree.
type Service struct {
	cache   *Cache
	creator *Creator
	cfg     ResolverConfig
	logger  *zap.Logger

	mu           sync.Mutex
	resolverSnap *Snapshot
	resolver     *Resolver
}

// NewService creates the taxonomy service for the given root catalog.
func NewService(client pim.Client, rootID int, cfg ResolverConfig, logger *zap.Logger) *Service {
	cache := NewCache(client, rootID, snapshotTTL, logger)
	return &Service{
		cache:   cache,
		creator: NewCreator(client, cache, rootID, logger),
		cfg:     cfg,
		logger:  logger,
	}
}

// Snapshot returns the current flattened snapshot.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	return s.cache.Snapshot(ctx)
}

// Refresh forces a re-fetch of the tree.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	s.cache.Invalidate()
	return s.cache.Refresh(ctx)
}

// Resolver returns a resolver over the current snapshot. The resolver is
// memoized per snapshot; a cache rebuild produces a fresh one.
func (s *Service) Resolver(ctx context.Context) (*Resolver, error) {
	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolverSnap != snap {
		s.resolver = NewResolver(snap, s.cfg)
		s.resolverSnap = snap
	}
	return s.resolver, nil
}

// ResolveValue resolves a raw breadcrumb value against the current
// snapshot.
func (s *Service) ResolveValue(ctx context.Context, value any) (Resolution, error) {
	resolver, err := s.Resolver(ctx)
	if err != nil {
		return Resolution{}, err
	}
	return resolver.ResolveValue(value)
}

// EnsureCategoryPath creates the missing segments of a category path and
// returns the final node.
func (s *Service) EnsureCategoryPath(ctx context.Context, segments []string) (*CatalogNode, error) {
	return s.creator.EnsureCategoryPath(ctx, segments)
}

// Root returns the configured root node from the current snapshot.
func (s *Service) Root(ctx context.Context) (*CatalogNode, error) {
	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.NodeByID(s.cache.catalogID), nil
}

// Stats returns the aggregate statistics of the current snapshot.
func (s *Service) Stats(ctx context.Context) (TreeStats, error) {
	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return TreeStats{}, err
	}
	return snap.Stats, nil
}
