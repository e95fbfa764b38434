package cmd

import (
	"fmt"
	"io"
	"os"

	"catalog-sync/core/config"
	"catalog-sync/core/logger"
	"catalog-sync/core/pim"
	"catalog-sync/core/storage"
	syncfeature "catalog-sync/feature/sync"
	"catalog-sync/feature/taxonomy"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	listSnapshots bool
	showSnapshot  string
	keepSnapshots int
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch, flatten and archive the catalog tree",
	Long: `Fetches the remote catalog tree, flattens it and stores the
snapshot (nodes, hierarchy map, statistics) in object storage.

Examples:
  # Archive a fresh snapshot
  catalog-sync snapshot

  # Archive a snapshot and keep only the 10 most recent
  catalog-sync snapshot --keep 10

  # List archived snapshots
  catalog-sync snapshot --list

  # Print one archived snapshot
  catalog-sync snapshot --show snapshots/catalog_20260829T120000Z.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
		archive := syncfeature.NewArchive(store, cfg.Storage.Bucket, l)

		if listSnapshots {
			names, err := archive.List(ctx)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		}

		if showSnapshot != "" {
			rc, err := archive.Open(ctx, showSnapshot)
			if err != nil {
				return err
			}
			defer rc.Close()
			_, err = io.Copy(os.Stdout, rc)
			return err
		}

		pimClient := pim.NewClient(cfg.Pim)
		taxonomySvc := taxonomy.NewService(pimClient, cfg.Pim.RootCatalogID, taxonomy.DefaultResolverConfig(), l)

		snap, err := taxonomySvc.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch catalog tree: %w", err)
		}

		object, err := archive.Save(ctx, snap)
		if err != nil {
			return err
		}

		l.Info("Snapshot stored",
			zap.String("object", object),
			zap.Int("nodes", snap.Stats.TotalNodes),
			zap.Int("max_depth", snap.Stats.MaxDepth),
			zap.Int("items", snap.Stats.TotalItems),
		)

		if keepSnapshots > 0 {
			removed, err := archive.Prune(ctx, keepSnapshots)
			if err != nil {
				return err
			}
			if len(removed) > 0 {
				l.Info("Old snapshots removed", zap.Strings("objects", removed))
			}
		}
		return nil
	},
}

func init() {
	snapshotCmd.Flags().BoolVar(&listSnapshots, "list", false, "List archived snapshots instead of creating one")
	snapshotCmd.Flags().StringVar(&showSnapshot, "show", "", "Print one archived snapshot to stdout")
	snapshotCmd.Flags().IntVar(&keepSnapshots, "keep", 0, "After archiving, keep only the N most recent snapshots (0 keeps all)")

	RootCmd.AddCommand(snapshotCmd)
}
