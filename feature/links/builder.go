package links

import (
	"math"
	"sort"
)

// TopCatalogCount bounds the catalog ranking in computed statistics.
const TopCatalogCount = 10

// Build computes the link rows for one item. The primary link carries
// sort order 0; additional links are numbered from 1 in source order. A
// catalog listed both as primary and additional keeps only the primary
// row; the dropped duplicate does not consume a position.
func Build(item ItemCategories) []ProductCatalogLink {
	var out []ProductCatalogLink
	seen := make(map[int]bool, 1+len(item.AdditionalCatalogs))

	if item.PrimaryCatalogID != nil {
		out = append(out, ProductCatalogLink{
			ProductID: item.ProductID,
			CatalogID: *item.PrimaryCatalogID,
			IsPrimary: true,
			SortOrder: 0,
		})
		seen[*item.PrimaryCatalogID] = true
	}

	order := 0
	for _, catalogID := range item.AdditionalCatalogs {
		if seen[catalogID] {
			continue
		}
		seen[catalogID] = true
		order++
		out = append(out, ProductCatalogLink{
			ProductID: item.ProductID,
			CatalogID: catalogID,
			IsPrimary: false,
			SortOrder: order,
		})
	}

	return out
}

// BuildAll computes the link rows for a batch of items.
func BuildAll(items []ItemCategories) []ProductCatalogLink {
	var out []ProductCatalogLink
	for _, item := range items {
		out = append(out, Build(item)...)
	}
	return out
}

// ComputeStats derives summary statistics over a computed link set.
// totalProducts is the number of source items, including those that
// produced no links. The catalog ranking is deterministic: item count
// descending, catalog id ascending on ties.
func ComputeStats(links []ProductCatalogLink, totalProducts int) LinkStats {
	stats := LinkStats{
		TotalProducts: totalProducts,
		TotalLinks:    len(links),
	}

	linkedProducts := make(map[int]bool)
	distribution := make(map[int]int)
	for _, link := range links {
		if link.IsPrimary {
			stats.PrimaryLinks++
		} else {
			stats.AdditionalLinks++
		}
		linkedProducts[link.ProductID] = true
		distribution[link.CatalogID]++
	}

	stats.ProductsWithLinks = len(linkedProducts)
	stats.ProductsWithoutLinks = totalProducts - stats.ProductsWithLinks
	stats.UniqueCatalogs = len(distribution)
	if stats.ProductsWithLinks > 0 {
		avg := float64(stats.TotalLinks) / float64(stats.ProductsWithLinks)
		stats.AvgLinksPerProduct = math.Round(avg*100) / 100
	}

	ranking := make([]TopCatalog, 0, len(distribution))
	for catalogID, count := range distribution {
		ranking = append(ranking, TopCatalog{CatalogID: catalogID, ProductCount: count})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].ProductCount != ranking[j].ProductCount {
			return ranking[i].ProductCount > ranking[j].ProductCount
		}
		return ranking[i].CatalogID < ranking[j].CatalogID
	})
	if len(ranking) > TopCatalogCount {
		ranking = ranking[:TopCatalogCount]
	}
	stats.TopCatalogs = ranking

	return stats
}
