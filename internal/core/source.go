package core

import (
	"context"
	"time"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// WorkItemSource is everything the report generators need from Azure DevOps.
// The HTTP client in internal/integration satisfies it through an adapter.
type WorkItemSource interface {
	RelationSource
	TeamRuleSource
	QueryIDs(ctx context.Context, q models.Query) ([]int, error)
	GetWorkItems(ctx context.Context, ids []int, fields []string) ([]models.WorkItem, error)
}

// Clock returns the current time. Reports take one so tests can pin "today".
type Clock func() time.Time

// ReportDeps bundles the collaborators shared by every report generator.
type ReportDeps struct {
	Source   WorkItemSource
	Resolver HierarchyResolver
	Config   *models.ReportConfig
	Clock    Clock
	// Progress receives "n/total" updates while relations are resolved one by
	// one. It may be nil.
	Progress ProgressFunc
	// NewPacer builds the pacer used between per-item calls. Defaults to
	// NewPacer(Config.RequestDelay).
	NewPacer func() *Pacer
}

func (d ReportDeps) now() time.Time {
	if d.Clock == nil {
		return time.Now()
	}
	return d.Clock()
}

func (d ReportDeps) pacer() *Pacer {
	if d.NewPacer != nil {
		return d.NewPacer()
	}
	return NewPacer(d.Config.RequestDelay)
}

func (d ReportDeps) progress() ProgressFunc {
	return EveryN(d.Config.ProgressEvery, d.Progress)
}

// baseFields are fetched for every listed work item.
var baseFields = []string{
	models.FieldID,
	models.FieldTitle,
	models.FieldState,
	models.FieldTeamProject,
	models.FieldAreaPath,
}

func withFields(extra ...string) []string {
	out := make([]string, 0, len(baseFields)+len(extra))
	out = append(out, baseFields...)
	seen := make(map[string]bool, len(out)+len(extra))
	for _, f := range out {
		seen[f] = true
	}
	for _, f := range extra {
		if f != "" && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// ParentQuery is the portfolio query shared by the missing-children and
// board-coverage reports.
func ParentQuery(cfg *models.ReportConfig) models.Query {
	return models.Query{
		Project:      cfg.Parent.Project,
		WorkItemType: cfg.Parent.WorkItemType,
		States:       nonEmpty(cfg.Parent.State),
		TagContains:  cfg.Parent.Tag,
	}
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
