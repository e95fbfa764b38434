package links

import (
	"context"
	"encoding/json"
	"testing"

	"catalog-sync/feature/taxonomy"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestUpsertLinks(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `product_catalogs`.*ON DUPLICATE KEY UPDATE").
		WithArgs(7, 10, true, 0, 7, 11, false, 1).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	count, err := store.UpsertLinks(context.Background(), []ProductCatalogLink{
		{ProductID: 7, CatalogID: 10, IsPrimary: true, SortOrder: 0},
		{ProductID: 7, CatalogID: 11, IsPrimary: false, SortOrder: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertCatalogs_ParentsFirstAndDanglingParentNulled(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db, zap.NewNop())

	// Child appears before its parent in the payload; node 9 points at a
	// parent outside the snapshot.
	snap, err := taxonomy.Flatten(json.RawMessage(`{
		"id": 22, "header": "Каталог", "level": 1, "lft": 1, "rgt": 6,
		"children": [
			{"id": 30, "header": "Крепёж", "parentId": 22, "level": 2, "lft": 2, "rgt": 3, "children": []},
			{"id": 9, "header": "Сирота", "parentId": 999, "level": 2, "lft": 4, "rgt": 5, "children": []}
		]
	}`))
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `catalogs`.*ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	count, err := store.UpsertCatalogs(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteLinksForProducts(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `product_catalogs` WHERE product_id IN").
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	require.NoError(t, store.DeleteLinksForProducts(context.Background(), []int{1, 2}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteLinksForProducts_NoIDs(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db, zap.NewNop())

	require.NoError(t, store.DeleteLinksForProducts(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
