package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestBuild_PrimaryAndAdditional(t *testing.T) {
	rows := Build(ItemCategories{
		ProductID:          7,
		PrimaryCatalogID:   intPtr(10),
		AdditionalCatalogs: []int{20, 30},
	})

	require.Len(t, rows, 3)
	assert.Equal(t, ProductCatalogLink{ProductID: 7, CatalogID: 10, IsPrimary: true, SortOrder: 0}, rows[0])
	assert.Equal(t, ProductCatalogLink{ProductID: 7, CatalogID: 20, IsPrimary: false, SortOrder: 1}, rows[1])
	assert.Equal(t, ProductCatalogLink{ProductID: 7, CatalogID: 30, IsPrimary: false, SortOrder: 2}, rows[2])
}

func TestBuild_PrimaryWinsOverDuplicateAdditional(t *testing.T) {
	rows := Build(ItemCategories{
		ProductID:          7,
		PrimaryCatalogID:   intPtr(10),
		AdditionalCatalogs: []int{10, 11},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, ProductCatalogLink{ProductID: 7, CatalogID: 10, IsPrimary: true, SortOrder: 0}, rows[0])
	assert.Equal(t, ProductCatalogLink{ProductID: 7, CatalogID: 11, IsPrimary: false, SortOrder: 1}, rows[1])
}

func TestBuild_RepeatedAdditionalKeptOnce(t *testing.T) {
	rows := Build(ItemCategories{
		ProductID:          7,
		AdditionalCatalogs: []int{11, 11, 12},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, 11, rows[0].CatalogID)
	assert.Equal(t, 1, rows[0].SortOrder)
	assert.Equal(t, 12, rows[1].CatalogID)
	assert.Equal(t, 2, rows[1].SortOrder)
}

func TestBuild_NoPrimary(t *testing.T) {
	rows := Build(ItemCategories{
		ProductID:          7,
		AdditionalCatalogs: []int{20},
	})

	require.Len(t, rows, 1)
	assert.False(t, rows[0].IsPrimary)
	assert.Equal(t, 1, rows[0].SortOrder)
}

func TestBuild_NoCategories(t *testing.T) {
	rows := Build(ItemCategories{ProductID: 7})
	assert.Empty(t, rows)
}

func TestComputeStats(t *testing.T) {
	links := BuildAll([]ItemCategories{
		{ProductID: 1, PrimaryCatalogID: intPtr(10), AdditionalCatalogs: []int{20}},
		{ProductID: 2, PrimaryCatalogID: intPtr(10)},
		{ProductID: 3, PrimaryCatalogID: intPtr(20), AdditionalCatalogs: []int{10, 30}},
		{ProductID: 4},
	})

	stats := ComputeStats(links, 4)
	assert.Equal(t, 4, stats.TotalProducts)
	assert.Equal(t, 6, stats.TotalLinks)
	assert.Equal(t, 3, stats.PrimaryLinks)
	assert.Equal(t, 3, stats.AdditionalLinks)
	assert.Equal(t, 3, stats.ProductsWithLinks)
	assert.Equal(t, 1, stats.ProductsWithoutLinks)
	assert.Equal(t, 3, stats.UniqueCatalogs)
	assert.Equal(t, 2.0, stats.AvgLinksPerProduct)

	// Count desc, id asc on ties: 10 has 3 items, 20 has 2, 30 has 1.
	require.Len(t, stats.TopCatalogs, 3)
	assert.Equal(t, TopCatalog{CatalogID: 10, ProductCount: 3}, stats.TopCatalogs[0])
	assert.Equal(t, TopCatalog{CatalogID: 20, ProductCount: 2}, stats.TopCatalogs[1])
	assert.Equal(t, TopCatalog{CatalogID: 30, ProductCount: 1}, stats.TopCatalogs[2])
}

func TestComputeStats_TieBreakByCatalogID(t *testing.T) {
	links := []ProductCatalogLink{
		{ProductID: 1, CatalogID: 30, IsPrimary: true},
		{ProductID: 2, CatalogID: 20, IsPrimary: true},
	}

	stats := ComputeStats(links, 2)
	require.Len(t, stats.TopCatalogs, 2)
	assert.Equal(t, 20, stats.TopCatalogs[0].CatalogID)
	assert.Equal(t, 30, stats.TopCatalogs[1].CatalogID)
}

func TestComputeStats_CapsRanking(t *testing.T) {
	var links []ProductCatalogLink
	for i := 0; i < 15; i++ {
		links = append(links, ProductCatalogLink{ProductID: 1, CatalogID: 100 + i})
	}

	stats := ComputeStats(links, 1)
	assert.Len(t, stats.TopCatalogs, TopCatalogCount)
	assert.Equal(t, 15, stats.UniqueCatalogs)
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil, 0)
	assert.Zero(t, stats.TotalLinks)
	assert.Zero(t, stats.AvgLinksPerProduct)
	assert.Empty(t, stats.TopCatalogs)
}
