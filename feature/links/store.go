package links

import (
	"context"
	"sort"

	"catalog-sync/feature/taxonomy"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertBatchSize keeps upsert statements below the MySQL placeholder
// limit.
const upsertBatchSize = 1000

// Store persists catalog nodes and product links.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a link store.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// UpsertCatalogs writes the snapshot's nodes to the catalogs table,
// parents before children so foreign keys on parent_id never dangle. A
// parent id pointing outside the snapshot is stored as null.
func (s *Store) UpsertCatalogs(ctx context.Context, snap *taxonomy.Snapshot) (int, error) {
	rows := make([]CatalogRow, 0, len(snap.Nodes))
	for _, node := range snap.Nodes {
		parentID := node.ParentID
		if parentID != nil && snap.NodeByID(*parentID) == nil {
			parentID = nil
		}
		rows = append(rows, CatalogRow{
			ID:           node.ID,
			Header:       node.Header,
			SyncUID:      node.SyncUID,
			ParentID:     parentID,
			Lft:          node.Lft,
			Rgt:          node.Rgt,
			Level:        node.Level,
			LastLevel:    node.LastLevel,
			Path:         node.Path,
			Depth:        node.Depth,
			Pos:          node.Pos,
			Enabled:      node.Enabled,
			Deleted:      node.Deleted,
			ProductCount: node.ProductCount,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Level < rows[j].Level })

	for start := 0; start < len(rows); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]
		err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).
			Create(&batch).Error
		if err != nil {
			return start, err
		}
	}

	s.logger.Info("catalogs persisted", zap.Int("count", len(rows)))
	return len(rows), nil
}

// UpsertLinks writes computed link rows, keyed on (product_id, catalog_id).
func (s *Store) UpsertLinks(ctx context.Context, rows []ProductCatalogLink) (int, error) {
	for start := 0; start < len(rows); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]
		err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "product_id"}, {Name: "catalog_id"}},
				UpdateAll: true,
			}).
			Create(&batch).Error
		if err != nil {
			return start, err
		}
	}

	s.logger.Info("product links persisted", zap.Int("count", len(rows)))
	return len(rows), nil
}

// DeleteLinksForProducts removes all stored links of the given products,
// used before a full rebuild of one item's links when the source no longer
// lists a catalog.
func (s *Store) DeleteLinksForProducts(ctx context.Context, productIDs []int) error {
	if len(productIDs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Delete(&ProductCatalogLink{}).Error
}
