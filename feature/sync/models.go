package sync

import (
	"strings"
	"time"

	"catalog-sync/feature/links"
	"catalog-sync/feature/taxonomy"
)

// SourceItem is one row of the onec_catalog staging table: an imported
// item with its category path spread over the group columns, outermost
// first.
type SourceItem struct {
	ID          int     `gorm:"column:id;primaryKey"`
	Code1C      *string `gorm:"column:code_1c"`
	ProductName *string `gorm:"column:product_name"`
	Group1      *string `gorm:"column:group1"`
	Group2      *string `gorm:"column:group2"`
	Group3      *string `gorm:"column:group3"`
	Group4      *string `gorm:"column:group4"`
	Group5      *string `gorm:"column:group5"`
	Group6      *string `gorm:"column:group6"`
	Group7      *string `gorm:"column:group7"`
	Group8      *string `gorm:"column:group8"`
	Group9      *string `gorm:"column:group9"`
	Group10     *string `gorm:"column:group10"`
}

// TableName overrides the table name.
func (SourceItem) TableName() string {
	return "onec_catalog"
}

// Segments returns the non-empty trimmed group values in order.
func (s SourceItem) Segments() []string {
	groups := []*string{
		s.Group1, s.Group2, s.Group3, s.Group4, s.Group5,
		s.Group6, s.Group7, s.Group8, s.Group9, s.Group10,
	}
	var out []string
	for _, g := range groups {
		if g == nil {
			continue
		}
		if trimmed := strings.TrimSpace(*g); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Breadcrumb joins the segments into the breadcrumb form the resolver
// consumes.
func (s SourceItem) Breadcrumb() string {
	return strings.Join(s.Segments(), "/")
}

// ItemResult is the outcome of processing one item. Results are appended
// in completion order, which is not the source order.
type ItemResult struct {
	ProductID  int                `json:"product_id"`
	Breadcrumb string             `json:"breadcrumb"`
	CatalogID  int                `json:"catalog_id"`
	Step       taxonomy.MatchStep `json:"step"`
	Created    bool               `json:"created"`
	Fallback   bool               `json:"fallback"`
	Error      string             `json:"error,omitempty"`
}

// FallbackSampleCount bounds the fallback examples carried in a report;
// the fallback counter is never capped.
const FallbackSampleCount = 10

// RunReport summarizes one sync run.
type RunReport struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	// DurationMS is the wall-clock run time in milliseconds.
	DurationMS int64 `json:"duration_ms"`

	ProcessedItems int                        `json:"processed_items"`
	ResolvedByStep map[taxonomy.MatchStep]int `json:"resolved_by_step"`
	CreatedPaths   []string                   `json:"created_paths"`

	// RootFallbacks counts every item that fell back to the root catalog;
	// FallbackSamples lists the first few of them.
	RootFallbacks   int          `json:"root_fallbacks"`
	FallbackSamples []ItemResult `json:"fallback_samples"`
	InvalidItems    int          `json:"invalid_items"`

	LinkStats         links.LinkStats `json:"link_stats"`
	PersistedCatalogs int             `json:"persisted_catalogs"`
	PersistedLinks    int             `json:"persisted_links"`
	SnapshotObject    string          `json:"snapshot_object,omitempty"`
}
