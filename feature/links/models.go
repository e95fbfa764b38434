package links

// ItemCategories is the resolved category assignment of one item: its
// primary catalog (if any) and the additional catalogs in source order.
type ItemCategories struct {
	ProductID          int
	PrimaryCatalogID   *int
	AdditionalCatalogs []int
}

// ProductCatalogLink is one row of the product_catalogs table.
// (product_id, catalog_id) is the natural key; re-computation upserts.
type ProductCatalogLink struct {
	ProductID int  `gorm:"column:product_id;primaryKey" json:"product_id"`
	CatalogID int  `gorm:"column:catalog_id;primaryKey" json:"catalog_id"`
	IsPrimary bool `gorm:"column:is_primary" json:"is_primary"`
	SortOrder int  `gorm:"column:sort_order" json:"sort_order"`
}

// TableName overrides the table name.
func (ProductCatalogLink) TableName() string {
	return "product_catalogs"
}

// CatalogRow is one row of the catalogs table, the persisted form of a
// flattened catalog node.
type CatalogRow struct {
	ID           int    `gorm:"column:id;primaryKey" json:"id"`
	Header       string `gorm:"column:header" json:"header"`
	SyncUID      string `gorm:"column:sync_uid" json:"sync_uid"`
	ParentID     *int   `gorm:"column:parent_id" json:"parent_id"`
	Lft          int    `gorm:"column:lft" json:"lft"`
	Rgt          int    `gorm:"column:rgt" json:"rgt"`
	Level        int    `gorm:"column:level" json:"level"`
	LastLevel    bool   `gorm:"column:last_level" json:"last_level"`
	Path         string `gorm:"column:path" json:"path"`
	Depth        int    `gorm:"column:depth" json:"depth"`
	Pos          int    `gorm:"column:pos" json:"pos"`
	Enabled      bool   `gorm:"column:enabled" json:"enabled"`
	Deleted      bool   `gorm:"column:deleted" json:"deleted"`
	ProductCount int    `gorm:"column:product_count_pim" json:"product_count_pim"`
}

// TableName overrides the table name.
func (CatalogRow) TableName() string {
	return "catalogs"
}

// TopCatalog is one entry of the catalog-by-item-count ranking.
type TopCatalog struct {
	CatalogID    int `json:"catalog_id"`
	ProductCount int `json:"product_count"`
}

// LinkStats summarizes one computed link set.
type LinkStats struct {
	TotalProducts        int          `json:"total_products"`
	TotalLinks           int          `json:"total_links"`
	PrimaryLinks         int          `json:"primary_links"`
	AdditionalLinks      int          `json:"additional_links"`
	ProductsWithLinks    int          `json:"products_with_links"`
	ProductsWithoutLinks int          `json:"products_without_links"`
	UniqueCatalogs       int          `json:"unique_catalogs"`
	AvgLinksPerProduct   float64      `json:"avg_links_per_product"`
	TopCatalogs          []TopCatalog `json:"top_catalogs"`
}
