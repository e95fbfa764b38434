package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"catalog-sync/core/config"
	"catalog-sync/core/database"
	"catalog-sync/core/logger"
	"catalog-sync/core/pim"
	"catalog-sync/core/storage"
	"catalog-sync/feature/links"
	syncfeature "catalog-sync/feature/sync"
	"catalog-sync/feature/taxonomy"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	jsonReport  bool
	skipArchive bool
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one full catalog synchronization",
	Long: `Resolves every staged item's breadcrumb against the remote catalog
tree, creates missing category paths, persists catalogs and product links
to the item store and archives the final tree snapshot.

Examples:
  # Run a sync and print the summary
  catalog-sync sync

  # Full report as JSON
  catalog-sync sync --json

  # Skip the snapshot archive
  catalog-sync sync --no-archive`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&jsonReport, "json", false, "Print the full run report as JSON")
	syncCmd.Flags().BoolVar(&skipArchive, "no-archive", false, "Skip archiving the snapshot to object storage")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to item store: %w", err)
	}

	var archive *syncfeature.Archive
	if !skipArchive {
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
		archive = syncfeature.NewArchive(store, cfg.Storage.Bucket, l)
	}

	pimClient := pim.NewClient(cfg.Pim)
	taxonomySvc := taxonomy.NewService(pimClient, cfg.Pim.RootCatalogID, taxonomy.DefaultResolverConfig(), l)
	svc := syncfeature.NewService(db, taxonomySvc, links.NewStore(db, l), archive, cfg.Pim.Concurrency, l)

	report, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	if jsonReport {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	l.Info("Sync completed",
		zap.String("run_id", report.RunID),
		zap.Int("processed", report.ProcessedItems),
		zap.Int("invalid", report.InvalidItems),
		zap.Int("root_fallbacks", report.RootFallbacks),
		zap.Strings("created_paths", report.CreatedPaths),
		zap.Int("links", report.LinkStats.TotalLinks),
		zap.Int("catalogs_persisted", report.PersistedCatalogs),
		zap.String("snapshot", report.SnapshotObject),
		zap.Int64("took_ms", report.DurationMS),
	)
	for _, sample := range report.FallbackSamples {
		l.Warn("Item fell back to root catalog",
			zap.Int("product_id", sample.ProductID),
			zap.String("breadcrumb", sample.Breadcrumb),
			zap.String("error", sample.Error),
		)
	}
	return nil
}
