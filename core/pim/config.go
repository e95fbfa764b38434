package pim

// Config holds configuration for the catalog service (PIM) API.
type Config struct {
	// BaseURL is the API base URL, including the /api/v1 prefix if the
	// deployment uses one.
	BaseURL string `mapstructure:"base_url" default:"http://localhost:9090/api/v1"`
	// Login is the API account login.
	Login string `mapstructure:"login" default:""`
	// Password is the API account password.
	Password string `mapstructure:"password" default:""`
	// RootCatalogID is the catalog subtree this instance synchronizes against.
	RootCatalogID int `mapstructure:"root_catalog_id" default:"22"`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// Concurrency caps the number of in-flight item requests during a sync
	// run. Remote category creation is serialized separately and does not
	// consume this budget.
	Concurrency int `mapstructure:"concurrency" default:"16"`
}
