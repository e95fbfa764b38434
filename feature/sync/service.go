package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"catalog-sync/core/database"
	"catalog-sync/feature/links"
	"catalog-sync/feature/taxonomy"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"
)

// Service orchestrates one catalog synchronization run: resolve every
// source item's breadcrumb, create missing categories, compute and persist
// links, archive the final snapshot.
type Service struct {
	db          *gorm.DB
	taxonomy    *taxonomy.Service
	store       *links.Store
	archive     *Archive
	concurrency int64
	logger      *zap.Logger
}

// NewService creates a sync service. The archive may be nil; archiving is
// then skipped.
func NewService(db *gorm.DB, taxonomySvc *taxonomy.Service, store *links.Store, archive *Archive, concurrency int, logger *zap.Logger) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		db:          db,
		taxonomy:    taxonomySvc,
		store:       store,
		archive:     archive,
		concurrency: int64(concurrency),
		logger:      logger,
	}
}

// Run executes one full sync over the staging table.
//
// Items are processed concurrently under a counting semaphore; results are
// appended under a mutex in completion order. Item-level failures downgrade
// to a root fallback and never abort the batch; tree-level failures abort
// the run.
func (s *Service) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		RunID:          uuid.NewString(),
		StartedAt:      time.Now().UTC(),
		ResolvedByStep: make(map[taxonomy.MatchStep]int),
	}

	if _, err := s.taxonomy.Snapshot(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch catalog tree: %w", err)
	}
	root, err := s.taxonomy.Root(ctx)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, errors.New("configured root catalog not present in tree")
	}

	if err := s.validateStaging(ctx); err != nil {
		return nil, err
	}

	var items []SourceItem
	if err := s.db.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load source items: %w", err)
	}
	s.logger.Info("sync run started",
		zap.String("run_id", report.RunID),
		zap.Int("items", len(items)),
		zap.Int64("concurrency", s.concurrency),
	)

	results, err := s.processItems(ctx, items, root)
	if err != nil {
		return nil, err
	}

	itemCats := make([]links.ItemCategories, 0, len(results))
	createdPaths := make(map[string]bool)
	for i := range results {
		res := results[i]
		if res.Error != "" && !res.Fallback {
			report.InvalidItems++
			continue
		}

		report.ResolvedByStep[res.Step]++
		if res.Created {
			createdPaths[res.Breadcrumb] = true
		}
		if res.Fallback {
			report.RootFallbacks++
			if len(report.FallbackSamples) < FallbackSampleCount {
				report.FallbackSamples = append(report.FallbackSamples, res)
			}
		}

		catalogID := res.CatalogID
		itemCats = append(itemCats, links.ItemCategories{
			ProductID:        res.ProductID,
			PrimaryCatalogID: &catalogID,
		})
	}
	report.ProcessedItems = len(results)
	for path := range createdPaths {
		report.CreatedPaths = append(report.CreatedPaths, path)
	}
	sort.Strings(report.CreatedPaths)

	linkRows := links.BuildAll(itemCats)
	report.LinkStats = links.ComputeStats(linkRows, len(items))

	// Persist against the post-creation tree so freshly created nodes are
	// present before their links.
	finalSnap, err := s.taxonomy.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to re-fetch catalog tree: %w", err)
	}
	if report.PersistedCatalogs, err = s.store.UpsertCatalogs(ctx, finalSnap); err != nil {
		return nil, fmt.Errorf("failed to persist catalogs: %w", err)
	}

	// A product's links are rebuilt as a whole: catalogs it no longer
	// belongs to must not survive from earlier runs.
	productIDs := make([]int, 0, len(itemCats))
	for _, ic := range itemCats {
		productIDs = append(productIDs, ic.ProductID)
	}
	sort.Ints(productIDs)
	if err := s.store.DeleteLinksForProducts(ctx, productIDs); err != nil {
		return nil, fmt.Errorf("failed to clear stale links: %w", err)
	}
	if report.PersistedLinks, err = s.store.UpsertLinks(ctx, linkRows); err != nil {
		return nil, fmt.Errorf("failed to persist links: %w", err)
	}

	if s.archive != nil {
		object, err := s.archive.Save(ctx, finalSnap)
		if err != nil {
			// Archiving is best-effort; the persisted data is authoritative.
			s.logger.Warn("snapshot archive failed", zap.Error(err))
		} else {
			report.SnapshotObject = object
		}
	}

	report.DurationMS = time.Since(report.StartedAt).Milliseconds()
	s.logger.Info("sync run finished",
		zap.String("run_id", report.RunID),
		zap.Int("processed", report.ProcessedItems),
		zap.Int("fallbacks", report.RootFallbacks),
		zap.Int("created_paths", len(report.CreatedPaths)),
		zap.Int64("took_ms", report.DurationMS),
	)
	return report, nil
}

// requiredStagingColumns are the onec_catalog columns a run reads.
func requiredStagingColumns() []string {
	cols := []string{"id", "code_1c", "product_name"}
	for i := 1; i <= 10; i++ {
		cols = append(cols, fmt.Sprintf("group%d", i))
	}
	return cols
}

// validateStaging verifies the staging table exists and still carries
// every column the loader reads. Schema drift then fails the run up
// front instead of selecting nulls for a whole batch.
func (s *Service) validateStaging(ctx context.Context) error {
	table := SourceItem{}.TableName()
	if !database.HasTable(s.db.WithContext(ctx), table) {
		return fmt.Errorf("staging table %s does not exist", table)
	}

	columns, err := database.GetTableColumns(s.db.WithContext(ctx), table)
	if err != nil {
		return err
	}
	present := make(map[string]bool, len(columns))
	for _, col := range columns {
		present[col.Field] = true
	}
	for _, want := range requiredStagingColumns() {
		if !present[want] {
			return fmt.Errorf("staging table %s is missing column %s", table, want)
		}
	}
	return nil
}

// processItems fans the items out under the semaphore. Category creation
// walks are serialized inside the taxonomy service, so concurrent items
// with overlapping missing prefixes cannot create duplicate siblings.
func (s *Service) processItems(ctx context.Context, items []SourceItem, root *taxonomy.CatalogNode) ([]ItemResult, error) {
	sem := semaphore.NewWeighted(s.concurrency)
	group, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	results := make([]ItemResult, 0, len(items))

	for i := range items {
		item := items[i]
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		group.Go(func() error {
			defer sem.Release(1)

			res, err := s.processItem(ctx, item, root)
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// processItem resolves one item's breadcrumb, creating the category path
// when nothing matches. A failed creation downgrades to the root catalog.
// Only tree-level errors are returned.
func (s *Service) processItem(ctx context.Context, item SourceItem, root *taxonomy.CatalogNode) (ItemResult, error) {
	result := ItemResult{
		ProductID:  item.ID,
		Breadcrumb: item.Breadcrumb(),
	}

	res, err := s.taxonomy.ResolveValue(ctx, result.Breadcrumb)
	if err != nil {
		var invalid *taxonomy.InvalidBreadcrumbError
		if errors.As(err, &invalid) {
			result.Error = err.Error()
			return result, nil
		}
		return result, err
	}
	if res.Found() {
		result.CatalogID = res.Node.ID
		result.Step = res.Step
		return result, nil
	}

	result.Step = taxonomy.MatchNotFound

	segments := item.Segments()
	if len(segments) == 0 {
		result.CatalogID = root.ID
		result.Fallback = true
		return result, nil
	}

	node, err := s.taxonomy.EnsureCategoryPath(ctx, segments)
	if err != nil {
		var creation *taxonomy.CategoryCreationError
		if !errors.As(err, &creation) {
			return result, err
		}
		s.logger.Warn("category creation failed, falling back to root",
			zap.Int("product_id", item.ID),
			zap.String("breadcrumb", result.Breadcrumb),
			zap.Error(err),
		)
		result.CatalogID = root.ID
		result.Fallback = true
		result.Error = err.Error()
		return result, nil
	}
	if node == nil {
		result.CatalogID = root.ID
		result.Fallback = true
		return result, nil
	}

	result.CatalogID = node.ID
	result.Created = true
	return result, nil
}
