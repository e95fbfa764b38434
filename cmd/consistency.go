package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"catalog-sync/core/config"
	"catalog-sync/core/logger"
	"catalog-sync/core/pim"
	"catalog-sync/feature/integrity"
	"catalog-sync/feature/taxonomy"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var jsonFindings bool

// consistencyCmd represents the consistency command
var consistencyCmd = &cobra.Command{
	Use:   "consistency",
	Short: "Check structural invariants of the catalog tree",
	Long: `Fetches the catalog tree and reports nested-set violations, leaf
contradictions, disabled-but-populated nodes, duplicate sync identifiers
and orphan parent references. Nothing is repaired.`,
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

		pimClient := pim.NewClient(cfg.Pim)
		taxonomySvc := taxonomy.NewService(pimClient, cfg.Pim.RootCatalogID, taxonomy.DefaultResolverConfig(), l)
		svc := integrity.NewService(taxonomySvc, l)

		report, err := svc.CheckCatalog(ctx)
		if err != nil {
			return err
		}

		if jsonFindings {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		l.Info("Consistency check finished",
			zap.Int("nodes", report.CheckedNodes),
			zap.Int("findings", report.TotalFindings),
			zap.Bool("truncated", report.Truncated),
		)
		for kind, count := range report.CountsByKind {
			l.Info("Finding kind", zap.String("kind", string(kind)), zap.Int("count", count))
		}
		for _, finding := range report.Findings {
			l.Warn(finding.Message, zap.String("kind", string(finding.Kind)))
		}
		return nil
	},
}

func init() {
	consistencyCmd.Flags().BoolVar(&jsonFindings, "json", false, "Print the full report as JSON")
	RootCmd.AddCommand(consistencyCmd)
}
