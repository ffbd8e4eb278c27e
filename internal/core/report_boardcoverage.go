package core

import (
	"context"
	"fmt"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// BoardCoverage walks each parent's forward links and checks whether any
// child lands on the child team's board, or in the child area when
// child.coverage_scope says so. A child in another project, or outside the
// coverage areas, does not count.
func (s *reportService) BoardCoverage(ctx context.Context) (*models.BoardCoverageReport, error) {
	cfg := s.deps.Config
	src := s.deps.Source

	kind, err := ParseCoverageScope(cfg.Child.CoverageScope)
	if err != nil {
		return nil, err
	}

	report := &models.BoardCoverageReport{
		GeneratedAt:   s.deps.now(),
		ParentQuery:   ParentQuery(cfg),
		CoverageScope: string(kind),
		Team:          cfg.Child.Team,
	}

	onBoard, err := s.coverageScope(ctx, kind, report)
	if err != nil {
		return nil, err
	}

	parentIDs, err := src.QueryIDs(ctx, report.ParentQuery)
	if err != nil {
		return nil, fmt.Errorf("querying parents: %w", err)
	}
	report.ParentCount = len(parentIDs)
	if len(parentIDs) == 0 {
		return report, nil
	}

	childrenOf, err := ResolveChildrenOf(ctx, s.deps.Resolver, parentIDs, s.deps.pacer(), s.deps.progress())
	if err != nil {
		return nil, fmt.Errorf("resolving parent children: %w", err)
	}

	var childIDs []int
	for _, kids := range childrenOf {
		childIDs = append(childIDs, kids...)
	}
	childIDs = UniqueSorted(childIDs)

	children, err := src.GetWorkItems(ctx, childIDs, withFields())
	if err != nil {
		return nil, fmt.Errorf("fetching children: %w", err)
	}
	cidx := IndexByID(children)

	parents, err := src.GetWorkItems(ctx, parentIDs, withFields(models.FieldTags))
	if err != nil {
		return nil, fmt.Errorf("fetching parents: %w", err)
	}
	// Parents are listed as the WIQL tag filter selected them.
	parents = s.ordering.BoardCoverage.Order(parents, parentIDs)

	for _, p := range parents {
		cov := models.ParentCoverage{Parent: p}
		for _, w := range PickInOrder(cidx, childrenOf[p.ID]) {
			cov.Children = append(cov.Children, models.ChildPlacement{Child: w, OnBoard: onBoard.Contains(w)})
		}
		if !cov.Covered() {
			report.Uncovered = append(report.Uncovered, cov)
		}
	}

	return report, nil
}

// coverageScope builds the predicate a child must satisfy and records the
// area rules it stands for in report.
func (s *reportService) coverageScope(ctx context.Context, kind CoverageScope, report *models.BoardCoverageReport) (Scope, error) {
	child := s.deps.Config.Child

	if kind == CoverageBoard {
		if child.Team == "" {
			return nil, fmt.Errorf("child.team is not configured")
		}
		board, err := LoadTeamBoardScope(ctx, s.deps.Source, child.Project, child.Team)
		if err != nil {
			return nil, err
		}
		report.Rules = board.Rules
		return AllOf(ProjectScope{Project: child.Project}, board), nil
	}

	q := models.Query{Project: child.Project, AreaPath: child.AreaPath, AreaMatch: models.AreaEquals}
	if kind == CoverageAreaUnder {
		q.AreaMatch = models.AreaUnder
	}
	report.Rules = []models.AreaRule{{BasePath: child.AreaPath, IncludeDescendants: q.AreaMatch == models.AreaUnder}}
	return ScopeForQuery(q), nil
}
