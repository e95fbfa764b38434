package sync

import (
	"context"
	"encoding/json"
	"testing"

	pimmocks "catalog-sync/core/pim/mocks"
	storagemocks "catalog-sync/core/storage/mocks"
	"catalog-sync/feature/links"
	"catalog-sync/feature/taxonomy"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const syncTreeBefore = `{
	"id": 22, "header": "Каталог", "parentId": null, "level": 1, "lft": 1, "rgt": 6,
	"children": [
		{"id": 30, "header": "Крепёж", "parentId": 22, "level": 2, "lft": 2, "rgt": 3, "lastLevel": true, "children": []}
	]
}`

const syncTreeAfter = `{
	"id": 22, "header": "Каталог", "parentId": null, "level": 1, "lft": 1, "rgt": 8,
	"children": [
		{"id": 30, "header": "Крепёж", "parentId": 22, "level": 2, "lft": 2, "rgt": 3, "lastLevel": true, "children": []},
		{"id": 60, "header": "Грунты", "parentId": 22, "level": 2, "lft": 4, "rgt": 5, "lastLevel": true, "children": []}
	]
}`

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

func sourceRows(mock sqlmock.Sqlmock) *sqlmock.Rows {
	return mock.NewRows([]string{"id", "code_1c", "product_name", "group1", "group2"})
}

func stagingColumnRows(mock sqlmock.Sqlmock, fields ...string) *sqlmock.Rows {
	rows := mock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	for _, f := range fields {
		rows.AddRow(f, "varchar(255)", "YES", "", nil, "")
	}
	return rows
}

// expectStagingSchema mocks the table-existence check and SHOW COLUMNS
// query that precede loading the staging rows.
func expectStagingSchema(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT DATABASE\(\)`).
		WillReturnRows(mock.NewRows([]string{"DATABASE()"}).AddRow("catalog"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM information_schema\.tables`).
		WillReturnRows(mock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectQuery("SHOW COLUMNS FROM `onec_catalog`").
		WillReturnRows(stagingColumnRows(mock, requiredStagingColumns()...))
}

func TestRun_ResolvesCreatesAndFallsBack(t *testing.T) {
	db, dbMock := setupMockDB(t)

	client := new(pimmocks.Client)
	client.On("FetchTree", mock.Anything, 22).
		Return(json.RawMessage(syncTreeBefore), nil).Once()
	client.On("CreateNode", mock.Anything, mock.Anything).Return(nil).Once()
	// Workers racing the invalidation may refresh more than once.
	client.On("FetchTree", mock.Anything, 22).
		Return(json.RawMessage(syncTreeAfter), nil)

	// Item 1 resolves, item 2 needs creation, item 3 has no groups at all.
	expectStagingSchema(dbMock)
	dbMock.ExpectQuery("SELECT \\* FROM `onec_catalog`").
		WillReturnRows(sourceRows(dbMock).
			AddRow(1, "c-1", "Уголок стальной", "Крепёж", nil).
			AddRow(2, "c-2", "Грунт ГФ-021", "Грунты", nil).
			AddRow(3, "c-3", "Без группы", nil, nil))
	dbMock.ExpectBegin()
	dbMock.ExpectExec("INSERT INTO `catalogs`.*ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(0, 3))
	dbMock.ExpectCommit()
	dbMock.ExpectBegin()
	dbMock.ExpectExec("DELETE FROM `product_catalogs` WHERE product_id IN").
		WithArgs(1, 2, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	dbMock.ExpectCommit()
	dbMock.ExpectBegin()
	dbMock.ExpectExec("INSERT INTO `product_catalogs`.*ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(0, 3))
	dbMock.ExpectCommit()

	storageClient := new(storagemocks.Client)
	storageClient.On("BucketExists", mock.Anything, "catalog-snapshots").Return(true, nil)
	storageClient.On("PutObject", mock.Anything, "catalog-snapshots",
		mock.MatchedBy(func(name string) bool { return len(name) > len("snapshots/") }),
		mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	taxonomySvc := taxonomy.NewService(client, 22, taxonomy.DefaultResolverConfig(), zap.NewNop())
	store := links.NewStore(db, zap.NewNop())
	archive := NewArchive(storageClient, "catalog-snapshots", zap.NewNop())
	svc := NewService(db, taxonomySvc, store, archive, 4, zap.NewNop())

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.ProcessedItems)
	assert.Equal(t, 1, report.RootFallbacks)
	require.Len(t, report.FallbackSamples, 1)
	assert.Equal(t, 3, report.FallbackSamples[0].ProductID)
	assert.Equal(t, []string{"Грунты"}, report.CreatedPaths)
	assert.Equal(t, 1, report.ResolvedByStep[taxonomy.MatchSegment])
	assert.Equal(t, 2, report.ResolvedByStep[taxonomy.MatchNotFound])

	assert.Equal(t, 3, report.LinkStats.TotalLinks)
	assert.Equal(t, 3, report.LinkStats.PrimaryLinks)
	assert.Equal(t, 3, report.PersistedCatalogs)
	assert.Equal(t, 3, report.PersistedLinks)
	assert.NotEmpty(t, report.SnapshotObject)

	client.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestRun_CreationFailureFallsBackToRoot(t *testing.T) {
	db, dbMock := setupMockDB(t)

	client := new(pimmocks.Client)
	client.On("FetchTree", mock.Anything, 22).
		Return(json.RawMessage(syncTreeBefore), nil)
	client.On("CreateNode", mock.Anything, mock.Anything).
		Return(assert.AnError).Once()

	expectStagingSchema(dbMock)
	dbMock.ExpectQuery("SELECT \\* FROM `onec_catalog`").
		WillReturnRows(sourceRows(dbMock).
			AddRow(1, "c-1", "Грунт ГФ-021", "Грунты", nil))
	dbMock.ExpectBegin()
	dbMock.ExpectExec("INSERT INTO `catalogs`.*ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(0, 2))
	dbMock.ExpectCommit()
	dbMock.ExpectBegin()
	dbMock.ExpectExec("DELETE FROM `product_catalogs` WHERE product_id IN").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	dbMock.ExpectCommit()
	dbMock.ExpectBegin()
	dbMock.ExpectExec("INSERT INTO `product_catalogs`.*ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectCommit()

	taxonomySvc := taxonomy.NewService(client, 22, taxonomy.DefaultResolverConfig(), zap.NewNop())
	store := links.NewStore(db, zap.NewNop())
	svc := NewService(db, taxonomySvc, store, nil, 2, zap.NewNop())

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.RootFallbacks)
	require.Len(t, report.FallbackSamples, 1)
	assert.Equal(t, 22, report.FallbackSamples[0].CatalogID)
	assert.NotEmpty(t, report.FallbackSamples[0].Error)
	assert.Empty(t, report.CreatedPaths)
	assert.Empty(t, report.SnapshotObject)
}

func TestRun_MalformedTreeAborts(t *testing.T) {
	db, _ := setupMockDB(t)

	client := new(pimmocks.Client)
	client.On("FetchTree", mock.Anything, 22).
		Return(json.RawMessage(`"scalar"`), nil)

	taxonomySvc := taxonomy.NewService(client, 22, taxonomy.DefaultResolverConfig(), zap.NewNop())
	svc := NewService(db, taxonomySvc, links.NewStore(db, zap.NewNop()), nil, 2, zap.NewNop())

	_, err := svc.Run(context.Background())
	var malformed *taxonomy.MalformedTaxonomyError
	require.ErrorAs(t, err, &malformed)
}

func TestRun_MissingStagingTableAborts(t *testing.T) {
	db, dbMock := setupMockDB(t)

	client := new(pimmocks.Client)
	client.On("FetchTree", mock.Anything, 22).
		Return(json.RawMessage(syncTreeBefore), nil)

	dbMock.ExpectQuery(`SELECT DATABASE\(\)`).
		WillReturnRows(dbMock.NewRows([]string{"DATABASE()"}).AddRow("catalog"))
	dbMock.ExpectQuery(`SELECT count\(\*\) FROM information_schema\.tables`).
		WillReturnRows(dbMock.NewRows([]string{"count(*)"}).AddRow(0))

	taxonomySvc := taxonomy.NewService(client, 22, taxonomy.DefaultResolverConfig(), zap.NewNop())
	svc := NewService(db, taxonomySvc, links.NewStore(db, zap.NewNop()), nil, 2, zap.NewNop())

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestRun_MissingStagingColumnAborts(t *testing.T) {
	db, dbMock := setupMockDB(t)

	client := new(pimmocks.Client)
	client.On("FetchTree", mock.Anything, 22).
		Return(json.RawMessage(syncTreeBefore), nil)

	dbMock.ExpectQuery(`SELECT DATABASE\(\)`).
		WillReturnRows(dbMock.NewRows([]string{"DATABASE()"}).AddRow("catalog"))
	dbMock.ExpectQuery(`SELECT count\(\*\) FROM information_schema\.tables`).
		WillReturnRows(dbMock.NewRows([]string{"count(*)"}).AddRow(1))
	dbMock.ExpectQuery("SHOW COLUMNS FROM `onec_catalog`").
		WillReturnRows(stagingColumnRows(dbMock, "id", "code_1c", "product_name"))

	taxonomySvc := taxonomy.NewService(client, 22, taxonomy.DefaultResolverConfig(), zap.NewNop())
	svc := NewService(db, taxonomySvc, links.NewStore(db, zap.NewNop()), nil, 2, zap.NewNop())

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column group1")
}

func TestRunReport_DurationSerializesAsMilliseconds(t *testing.T) {
	body, err := json.Marshal(RunReport{DurationMS: 1500})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"duration_ms":1500`)
}

func TestSourceItem_Segments(t *testing.T) {
	g1, g2, g4 := "Крепёж", " Уголки ", ""
	item := SourceItem{Group1: &g1, Group2: &g2, Group4: &g4}

	assert.Equal(t, []string{"Крепёж", "Уголки"}, item.Segments())
	assert.Equal(t, "Крепёж/Уголки", item.Breadcrumb())
}

func TestLoader(t *testing.T) {
	db, _ := setupMockDB(t)
	client := new(pimmocks.Client)
	taxonomySvc := taxonomy.NewService(client, 22, taxonomy.DefaultResolverConfig(), zap.NewNop())

	feature := NewFeature(db, taxonomySvc, nil, "", 4, zap.NewNop())
	assert.Equal(t, "sync", feature.Name())
	assert.True(t, feature.IsEnabled())
	assert.NotNil(t, feature.Service())
}
