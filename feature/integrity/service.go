package integrity

import (
	"context"
	"time"

	"catalog-sync/feature/integrity/checks"
	"catalog-sync/feature/taxonomy"

	"go.uber.org/zap"
)

// DisplayCap bounds the findings carried in a report. The totals always
// reflect every finding.
const DisplayCap = 50

// Report is the outcome of one consistency run over a tree snapshot.
type Report struct {
	CheckedNodes  int                        `json:"checked_nodes"`
	TotalFindings int                        `json:"total_findings"`
	CountsByKind  map[checks.FindingKind]int `json:"counts_by_kind"`
	// Findings holds at most DisplayCap entries in check order.
	Findings  []checks.Finding `json:"findings"`
	Truncated bool             `json:"truncated"`
	CheckedAt time.Time        `json:"checked_at"`
}

// Service runs structural checks over catalog snapshots.
type Service struct {
	taxonomy *taxonomy.Service
	logger   *zap.Logger
}

// NewService creates a new integrity service.
func NewService(taxonomySvc *taxonomy.Service, logger *zap.Logger) *Service {
	return &Service{
		taxonomy: taxonomySvc,
		logger:   logger,
	}
}

// CheckCatalog fetches the current snapshot and reports its anomalies.
func (s *Service) CheckCatalog(ctx context.Context) (*Report, error) {
	snap, err := s.taxonomy.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.CheckSnapshot(snap), nil
}

// CheckSnapshot runs every check over an existing snapshot. It performs no
// remote calls.
func (s *Service) CheckSnapshot(snap *taxonomy.Snapshot) *Report {
	findings := checks.CheckAll(snap)

	report := &Report{
		CheckedNodes:  len(snap.Nodes),
		TotalFindings: len(findings),
		CountsByKind:  make(map[checks.FindingKind]int),
		Findings:      findings,
		CheckedAt:     time.Now().UTC(),
	}
	for _, f := range findings {
		report.CountsByKind[f.Kind]++
	}
	if len(report.Findings) > DisplayCap {
		report.Findings = report.Findings[:DisplayCap]
		report.Truncated = true
	}

	s.logger.Info("catalog consistency checked",
		zap.Int("nodes", report.CheckedNodes),
		zap.Int("findings", report.TotalFindings),
	)
	return report
}
