package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// maxUrgent caps the items shown in the health summary.
const maxUrgent = 3

// Health builds the weekly traffic-light report of the child area. Each
// configured state is queried on its own; items are bucketed by target date
// relative to today and the next calendar week.
func (s *reportService) Health(ctx context.Context) (*models.HealthReport, error) {
	cfg := s.deps.Config
	src := s.deps.Source
	loc := cfg.Location()

	now := s.deps.now()
	today := DateOf(now, loc)
	monday := NextMonday(today)

	report := &models.HealthReport{
		GeneratedAt: now,
		Today:       today,
		NextMonday:  monday,
		WindowEnd:   WeekEnd(monday),
		Scope: models.Query{
			Project:      cfg.Child.Project,
			WorkItemType: cfg.Child.WorkItemType,
			States:       cfg.Child.States,
			AreaPath:     cfg.Child.AreaPath,
			AreaMatch:    models.AreaEquals,
		},
		FocusState:      cfg.Child.InProgressState,
		TargetDateField: cfg.Child.TargetDateField,
		AmberValue:      cfg.Progress.AmberValue,
	}

	idsByState := make(map[string][]int, len(cfg.Child.States))
	var all []int
	for _, state := range cfg.Child.States {
		q := report.Scope
		q.States = []string{state}
		ids, err := src.QueryIDs(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("querying %s features: %w", state, err)
		}
		idsByState[state] = ids
		all = append(all, ids...)
	}
	all = UniqueSorted(all)
	report.Total = len(all)

	fields := withFields(cfg.Child.TargetDateField, cfg.Progress.StatusField, cfg.Progress.InfoField)
	items, err := src.GetWorkItems(ctx, all, fields)
	if err != nil {
		return nil, fmt.Errorf("fetching features: %w", err)
	}
	idx := IndexByID(items)

	report.StatusField, report.InfoField, err = s.resolveProgressFields(ctx, all, idx)
	if err != nil {
		return nil, err
	}
	if extra := missingFields(fields, report.StatusField.Name, report.InfoField.Name); len(extra) > 0 {
		s.logger.Debug("refetching features with discovered progress fields", zap.Strings("fields", extra))
		items, err = src.GetWorkItems(ctx, all, append(fields, extra...))
		if err != nil {
			return nil, fmt.Errorf("fetching progress fields: %w", err)
		}
		idx = IndexByID(items)
	}

	for _, state := range cfg.Child.States {
		ids := idsByState[state]
		rows := s.ordering.Health.Order(PickInOrder(idx, ids), ids)
		sb := models.StateBuckets{State: state, Buckets: make(map[models.Classification][]models.WorkItem, len(models.Classifications))}
		for _, c := range models.Classifications {
			sb.Buckets[c] = nil
		}
		for _, w := range rows {
			raw, _ := w.Value(cfg.Child.TargetDateField)
			c := ClassifyTargetDate(raw, today, monday, loc)
			sb.Buckets[c] = append(sb.Buckets[c], w)
		}
		report.States = append(report.States, sb)
	}

	focus := report.Focus()
	urgent := append(append([]models.WorkItem{}, focus.Buckets[models.Missing]...), focus.Buckets[models.Red]...)
	if len(urgent) > maxUrgent {
		urgent = urgent[:maxUrgent]
	}
	report.Urgent = urgent

	for _, id := range all {
		w, ok := idx[id]
		if !ok {
			continue
		}
		if w.IsBlank(report.StatusField.Name) {
			report.MissingStatus = append(report.MissingStatus, w)
			continue
		}
		status, isStr := w.Fields[report.StatusField.Name].(string)
		if isStr && strings.TrimSpace(status) == cfg.Progress.AmberValue && w.IsBlank(report.InfoField.Name) {
			report.AmberMissingInfo = append(report.AmberMissingInfo, w)
		}
	}

	return report, nil
}

// resolveProgressFields picks the progress status and info field names from
// the first item. When a configured name is absent there, the item is fetched
// again with every field so discovery can see the names the process uses.
func (s *reportService) resolveProgressFields(ctx context.Context, ids []int, idx map[int]models.WorkItem) (models.FieldChoice, models.FieldChoice, error) {
	cfg := s.deps.Config
	var sample map[string]any
	if len(ids) > 0 {
		sample = idx[ids[0]].Fields
	}

	_, hasStatus := sample[cfg.Progress.StatusField]
	_, hasInfo := sample[cfg.Progress.InfoField]
	if sample != nil && (!hasStatus || !hasInfo) {
		full, err := s.deps.Source.GetWorkItems(ctx, ids[:1], nil)
		if err != nil {
			return models.FieldChoice{}, models.FieldChoice{}, fmt.Errorf("fetching sample feature %d: %w", ids[0], err)
		}
		if len(full) > 0 {
			sample = full[0].Fields
		}
	}

	status := ResolveField(sample, cfg.Progress.StatusField, ProgressStatusPattern)
	info := ResolveField(sample, cfg.Progress.InfoField, ProgressInfoPattern)
	s.logger.Debug("progress fields resolved",
		zap.String("status", status.Name), zap.String("status_source", string(status.Source)),
		zap.String("info", info.Name), zap.String("info_source", string(info.Source)))
	return status, info, nil
}

// missingFields returns the names not already in fields.
func missingFields(fields []string, names ...string) []string {
	have := make(map[string]bool, len(fields))
	for _, f := range fields {
		have[f] = true
	}
	var out []string
	for _, n := range names {
		if n != "" && !have[n] {
			have[n] = true
			out = append(out, n)
		}
	}
	return out
}
