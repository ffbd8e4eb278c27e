package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// Consistency checks in-progress children against their parents: the parent
// should be in progress too, and the child's target date should not run past
// the parent's end date. Parents outside the parent project are ignored.
func (s *reportService) Consistency(ctx context.Context) (*models.ConsistencyReport, error) {
	cfg := s.deps.Config
	src := s.deps.Source
	loc := cfg.Location()

	report := &models.ConsistencyReport{
		GeneratedAt: s.deps.now(),
		ChildQuery: models.Query{
			Project:      cfg.Child.Project,
			WorkItemType: cfg.Child.WorkItemType,
			States:       nonEmpty(cfg.Child.InProgressState),
			AreaPath:     cfg.Child.AreaPath,
			AreaMatch:    models.AreaEquals,
		},
		ParentProject:   cfg.Parent.Project,
		InProgressState: cfg.Child.InProgressState,
		ChildDateField:  cfg.Child.TargetDateField,
		ParentDateField: cfg.Parent.EndDateField,
	}

	ids, err := src.QueryIDs(ctx, report.ChildQuery)
	if err != nil {
		return nil, fmt.Errorf("querying children: %w", err)
	}
	report.ChildCount = len(ids)
	if len(ids) == 0 {
		return report, nil
	}

	children, err := src.GetWorkItems(ctx, ids, withFields(cfg.Child.TargetDateField))
	if err != nil {
		return nil, fmt.Errorf("fetching children: %w", err)
	}
	children = s.ordering.Consistency.Order(children, ids)

	childIDs := make([]int, len(children))
	for i, c := range children {
		childIDs[i] = c.ID
	}
	links, err := ResolveParents(ctx, s.deps.Resolver, childIDs, s.deps.pacer(), s.deps.progress())
	if err != nil {
		return nil, fmt.Errorf("resolving child parents: %w", err)
	}

	parentIDs := make([]int, 0, len(links))
	for _, pid := range links {
		parentIDs = append(parentIDs, pid)
	}
	parentIDs = UniqueSorted(parentIDs)

	parents, err := src.GetWorkItems(ctx, parentIDs, withFields(cfg.Parent.EndDateField))
	if err != nil {
		return nil, fmt.Errorf("fetching parents: %w", err)
	}
	pidx := IndexByID(parents)

	inParentProject := ProjectScope{Project: cfg.Parent.Project}
	for _, c := range children {
		pid, ok := links[c.ID]
		if !ok {
			continue
		}
		p, ok := pidx[pid]
		if !ok {
			s.logger.Debug("parent not returned by batch", zap.Int("child", c.ID), zap.Int("parent", pid))
			continue
		}
		if !inParentProject.Contains(p) {
			continue
		}
		if c.State() != cfg.Child.InProgressState {
			continue
		}

		if p.State() != cfg.Parent.InProgressState {
			report.ParentNotProgress = append(report.ParentNotProgress, models.StateViolation{Child: c, Parent: p})
		}

		childRaw, _ := c.Value(cfg.Child.TargetDateField)
		parentRaw, _ := p.Value(cfg.Parent.EndDateField)
		childEnd, okc := ParseTimestamp(childRaw, loc)
		parentEnd, okp := ParseTimestamp(parentRaw, loc)
		if okc && okp && childEnd.After(parentEnd) {
			report.TargetAfterEndDate = append(report.TargetAfterEndDate, models.DateViolation{
				Child:      c,
				Parent:     p,
				ChildDate:  c.String(cfg.Child.TargetDateField),
				ParentDate: p.String(cfg.Parent.EndDateField),
			})
		}
	}

	return report, nil
}
