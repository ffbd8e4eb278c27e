package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// MissingChildren finds the parents (portfolio features in the configured
// state carrying the tag) that no child in the child area points back to.
// Links are resolved from the child side, so parents that do not expose
// forward links are still covered.
func (s *reportService) MissingChildren(ctx context.Context) (*models.MissingChildReport, error) {
	cfg := s.deps.Config
	src := s.deps.Source

	report := &models.MissingChildReport{
		GeneratedAt: s.deps.now(),
		ParentQuery: ParentQuery(cfg),
		ChildQuery: models.Query{
			Project:      cfg.Child.Project,
			WorkItemType: cfg.Child.WorkItemType,
			AreaPath:     cfg.Child.AreaPath,
			AreaMatch:    models.AreaUnder,
		},
	}

	parentIDs, err := src.QueryIDs(ctx, report.ParentQuery)
	if err != nil {
		return nil, fmt.Errorf("querying parents: %w", err)
	}
	report.ParentCount = len(parentIDs)

	childIDs, err := src.QueryIDs(ctx, report.ChildQuery)
	if err != nil {
		return nil, fmt.Errorf("querying children: %w", err)
	}
	report.ChildCount = len(childIDs)

	s.logger.Debug("resolving child parents",
		zap.Int("parents", len(parentIDs)), zap.Int("children", len(childIDs)))

	links, err := ResolveParents(ctx, s.deps.Resolver, childIDs, s.deps.pacer(), s.deps.progress())
	if err != nil {
		return nil, fmt.Errorf("resolving child parents: %w", err)
	}

	hasChild := make(map[int]bool, len(links))
	for _, pid := range links {
		hasChild[pid] = true
	}

	for _, pid := range parentIDs {
		if !hasChild[pid] {
			report.MissingIDs = append(report.MissingIDs, pid)
		}
	}
	if len(report.MissingIDs) == 0 {
		return report, nil
	}

	// The WIQL tag filter already selected these parents; they are listed
	// as returned, without re-checking the tag.
	parents, err := src.GetWorkItems(ctx, report.MissingIDs, withFields(models.FieldTags))
	if err != nil {
		return nil, fmt.Errorf("fetching missing parents: %w", err)
	}

	report.Missing = s.ordering.MissingChildren.Order(parents, report.MissingIDs)
	return report, nil
}
