package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// ReportService generates the hierarchy reports against a WorkItemSource.
type ReportService interface {
	// MissingChildren lists parents that have no child feature in the child area.
	MissingChildren(ctx context.Context) (*models.MissingChildReport, error)
	// Health classifies the child area's features by target date and checks
	// their progress fields.
	Health(ctx context.Context) (*models.HealthReport, error)
	// Consistency compares in-progress children with their parents' state and
	// end date.
	Consistency(ctx context.Context) (*models.ConsistencyReport, error)
	// BoardCoverage lists parents none of whose children is on the child
	// team's board.
	BoardCoverage(ctx context.Context) (*models.BoardCoverageReport, error)
}

type reportService struct {
	deps     ReportDeps
	logger   *zap.Logger
	ordering reportOrdering
}

// reportOrdering holds the list ordering of each report.
type reportOrdering struct {
	MissingChildren OrderingPolicy
	Health          OrderingPolicy
	Consistency     OrderingPolicy
	BoardCoverage   OrderingPolicy
}

// NewReportService creates a ReportService. A nil Resolver in deps is
// replaced by one backed by deps.Source.
func NewReportService(deps ReportDeps, logger *zap.Logger) ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Resolver == nil {
		deps.Resolver = NewHierarchyResolver(deps.Source, logger)
	}
	return &reportService{deps: deps, logger: logger, ordering: orderingFor(deps.Config)}
}

// orderingFor reads the ordering section of cfg. Empty or unknown names keep
// each report's default.
func orderingFor(cfg *models.ReportConfig) reportOrdering {
	o := reportOrdering{
		MissingChildren: IDAscending,
		Health:          SourceOrder,
		Consistency:     SourceOrder,
		BoardCoverage:   IDAscending,
	}
	if cfg == nil {
		return o
	}
	set := func(dst *OrderingPolicy, name string) {
		if p, err := ParseOrderingPolicy(name); err == nil {
			*dst = p
		}
	}
	set(&o.MissingChildren, cfg.Ordering.MissingChildren)
	set(&o.Health, cfg.Ordering.Health)
	set(&o.Consistency, cfg.Ordering.Consistency)
	set(&o.BoardCoverage, cfg.Ordering.BoardCoverage)
	return o
}
