package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// fakeSource serves work items from memory the way the REST API does: batch
// fetches return only the requested fields that exist, and ids it does not
// know are left out.
type fakeSource struct {
	items     map[int]models.WorkItem
	query     func(q models.Query) ([]int, error)
	rules     []models.AreaRule
	rulesErr  error
	batches   [][]int
	relCalls  []int
	lastQuery []models.Query
}

func newFakeSource(items ...models.WorkItem) *fakeSource {
	f := &fakeSource{items: make(map[int]models.WorkItem, len(items))}
	for _, it := range items {
		f.items[it.ID] = it
	}
	return f
}

func (f *fakeSource) QueryIDs(_ context.Context, q models.Query) ([]int, error) {
	f.lastQuery = append(f.lastQuery, q)
	if f.query == nil {
		return nil, nil
	}
	return f.query(q)
}

func (f *fakeSource) GetWorkItems(_ context.Context, ids []int, fields []string) ([]models.WorkItem, error) {
	f.batches = append(f.batches, ids)
	var out []models.WorkItem
	for _, id := range ids {
		it, ok := f.items[id]
		if !ok {
			continue
		}
		sel := make(map[string]any)
		for k, v := range it.Fields {
			if fields == nil {
				sel[k] = v
				continue
			}
			for _, want := range fields {
				if want == k {
					sel[k] = v
				}
			}
		}
		out = append(out, models.WorkItem{ID: id, Fields: sel})
	}
	return out, nil
}

func (f *fakeSource) GetRelations(_ context.Context, id int) ([]models.Relation, error) {
	f.relCalls = append(f.relCalls, id)
	return f.items[id].Relations, nil
}

func (f *fakeSource) GetTeamAreaRules(context.Context, string, string) ([]models.AreaRule, error) {
	return f.rules, f.rulesErr
}

func wi(id int, project, area, state string, extra map[string]any, rels ...models.Relation) models.WorkItem {
	fields := map[string]any{
		models.FieldID:          id,
		models.FieldTitle:       fmt.Sprintf("Item %d", id),
		models.FieldTeamProject: project,
		models.FieldAreaPath:    area,
		models.FieldState:       state,
	}
	for k, v := range extra {
		fields[k] = v
	}
	return models.WorkItem{ID: id, Fields: fields, Relations: rels}
}

func testConfig() *models.ReportConfig {
	cfg := DefaultReportConfig()
	cfg.RequestDelay = 0
	cfg.Timezone = "UTC"
	return cfg
}

func testDeps(src *fakeSource, cfg *models.ReportConfig) ReportDeps {
	return ReportDeps{
		Source: src,
		Config: cfg,
		Clock:  func() time.Time { return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC) },
	}
}

// --- MissingChildren ---

func TestMissingChildren(t *testing.T) {
	cfg := testConfig()
	tags := func(s string) map[string]any { return map[string]any{models.FieldTags: s} }
	src := newFakeSource(
		wi(100, "EEM Portfolio", "EEM", "Ready For Delivery", tags("MEET")),
		wi(101, "EEM Portfolio", "EEM", "Ready For Delivery", tags("MEET; Q3")),
		wi(102, "EEM Portfolio", "EEM", "Ready For Delivery", tags("MEETING")),
		wi(1, "AGI", `AGI\MEET`, "New", nil, parentLink("100")),
		wi(2, "AGI", `AGI\MEET\Sub`, "New", nil),
		wi(3, "AGI", `AGI\MEET`, "Closed", nil, parentLink("999")),
	)
	src.query = func(q models.Query) ([]int, error) {
		if q.Project == "EEM Portfolio" {
			return []int{102, 101, 100}, nil
		}
		return []int{1, 2, 3}, nil
	}

	var progress []int
	deps := testDeps(src, cfg)
	deps.Progress = func(done, total int) { progress = append(progress, done) }

	report, err := NewReportService(deps, zap.NewNop()).MissingChildren(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.ParentCount != 3 || report.ChildCount != 3 {
		t.Errorf("counts = %d/%d, want 3/3", report.ParentCount, report.ChildCount)
	}
	if got := ids(report.Missing); !equalInts(got, []int{101, 102}) {
		t.Errorf("missing = %v, want [101 102]", got)
	}
	if !equalInts(src.relCalls, []int{1, 2, 3}) {
		t.Errorf("relation calls = %v", src.relCalls)
	}
	if !equalInts(progress, []int{1}) {
		t.Errorf("progress = %v, want [1]", progress)
	}

	pq, cq := src.lastQuery[0], src.lastQuery[1]
	if pq.TagContains != "MEET" || len(pq.States) != 1 || pq.States[0] != "Ready For Delivery" {
		t.Errorf("parent query = %+v", pq)
	}
	if cq.AreaMatch != models.AreaUnder || cq.AreaPath != `AGI\MEET` {
		t.Errorf("child query = %+v", cq)
	}
}

func TestMissingChildren_ListsEveryQueriedParent(t *testing.T) {
	// WIQL CONTAINS ignores case, and the batch may leave out System.Tags;
	// neither drops a parent the query selected.
	src := newFakeSource(
		wi(200, "EEM Portfolio", "EEM", "Ready For Delivery", map[string]any{models.FieldTags: "meet"}),
		wi(201, "EEM Portfolio", "EEM", "Ready For Delivery", nil),
	)
	src.query = func(q models.Query) ([]int, error) {
		if q.Project == "EEM Portfolio" {
			// 202 is not returned by the batch fetch.
			return []int{202, 201, 200}, nil
		}
		return nil, nil
	}

	report, err := NewReportService(testDeps(src, testConfig()), nil).MissingChildren(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(report.Missing); !equalInts(got, []int{200, 201}) {
		t.Errorf("missing = %v, want [200 201]", got)
	}
	if !equalInts(report.MissingIDs, []int{202, 201, 200}) {
		t.Errorf("missing ids = %v", report.MissingIDs)
	}
	if report.MissingCount() != 3 {
		t.Errorf("MissingCount() = %d, want 3", report.MissingCount())
	}
}

func TestMissingChildren_SourceOrdering(t *testing.T) {
	cfg := testConfig()
	cfg.Ordering.MissingChildren = "source"
	src := newFakeSource(
		wi(100, "EEM Portfolio", "EEM", "Ready For Delivery", nil),
		wi(101, "EEM Portfolio", "EEM", "Ready For Delivery", nil),
	)
	src.query = func(q models.Query) ([]int, error) {
		if q.Project == "EEM Portfolio" {
			return []int{101, 100}, nil
		}
		return nil, nil
	}

	report, err := NewReportService(testDeps(src, cfg), nil).MissingChildren(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(report.Missing); !equalInts(got, []int{101, 100}) {
		t.Errorf("missing = %v, want query order [101 100]", got)
	}
}

func TestMissingChildren_NoneMissingSkipsBatch(t *testing.T) {
	src := newFakeSource(wi(1, "AGI", `AGI\MEET`, "New", nil, parentLink("100")))
	src.query = func(q models.Query) ([]int, error) {
		if q.Project == "EEM Portfolio" {
			return []int{100}, nil
		}
		return []int{1}, nil
	}

	report, err := NewReportService(testDeps(src, testConfig()), nil).MissingChildren(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Missing) != 0 {
		t.Errorf("missing = %v", ids(report.Missing))
	}
	if len(src.batches) != 0 {
		t.Errorf("batch calls = %v, want none", src.batches)
	}
}

func TestMissingChildren_QueryError(t *testing.T) {
	boom := errors.New("WIQL failed HTTP=500")
	src := newFakeSource()
	src.query = func(models.Query) ([]int, error) { return nil, boom }

	_, err := NewReportService(testDeps(src, testConfig()), nil).MissingChildren(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped query error", err)
	}
}

// --- Health ---

func healthSource() *fakeSource {
	const (
		target = "Microsoft.VSTS.Scheduling.TargetDate"
		status = "Custom.ProgressStatus"
		info   = "Custom.ProgressInfo"
	)
	src := newFakeSource(
		wi(1, "AGI", `AGI\MEET`, "In Progress", map[string]any{status: "1-Green", info: "fine"}),
		wi(2, "AGI", `AGI\MEET`, "In Progress", map[string]any{target: "2025-06-01T00:00:00Z", status: "2-Amber", info: ""}),
		wi(3, "AGI", `AGI\MEET`, "New", map[string]any{target: "2025-06-18T00:00:00Z"}),
		wi(4, "AGI", `AGI\MEET`, "In Progress", map[string]any{target: "2025-07-30T00:00:00Z", status: "1-Green"}),
		wi(5, "AGI", `AGI\MEET`, "New", map[string]any{target: "2025-06-02T00:00:00Z", status: "2-Amber", info: "on track"}),
		wi(6, "AGI", `AGI\MEET`, "In Progress", map[string]any{target: "garbage", status: "  "}),
	)
	src.query = func(q models.Query) ([]int, error) {
		switch q.States[0] {
		case "New":
			return []int{5, 3}, nil
		default:
			return []int{4, 1, 2, 6}, nil
		}
	}
	return src
}

func TestHealth(t *testing.T) {
	src := healthSource()
	report, err := NewReportService(testDeps(src, testConfig()), nil).Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Total != 6 {
		t.Errorf("Total = %d, want 6", report.Total)
	}
	if got := report.NextMonday.Format("2006-01-02"); got != "2025-06-16" {
		t.Errorf("NextMonday = %s", got)
	}
	if got := report.WindowEnd.Format("2006-01-02"); got != "2025-06-22" {
		t.Errorf("WindowEnd = %s", got)
	}
	if len(report.States) != 2 || report.States[0].State != "New" || report.States[1].State != "In Progress" {
		t.Fatalf("states = %+v", report.States)
	}

	ip := report.Focus()
	checks := []struct {
		c    models.Classification
		want []int
	}{
		{models.Green, []int{4}},
		{models.Yellow, nil},
		{models.Red, []int{2}},
		{models.Missing, []int{1, 6}},
	}
	for _, c := range checks {
		if got := ids(ip.Buckets[c.c]); !equalInts(got, c.want) {
			t.Errorf("In Progress %s = %v, want %v", c.c, got, c.want)
		}
	}

	nw := report.States[0]
	if !equalInts(ids(nw.Buckets[models.Red]), []int{5}) || !equalInts(ids(nw.Buckets[models.Yellow]), []int{3}) {
		t.Errorf("New buckets = %+v", nw.Buckets)
	}

	if got := ids(report.Urgent); !equalInts(got, []int{1, 6, 2}) {
		t.Errorf("Urgent = %v, want [1 6 2]", got)
	}
	if got := ids(report.MissingStatus); !equalInts(got, []int{3, 6}) {
		t.Errorf("MissingStatus = %v, want [3 6]", got)
	}
	if got := ids(report.AmberMissingInfo); !equalInts(got, []int{2}) {
		t.Errorf("AmberMissingInfo = %v, want [2]", got)
	}
	if report.StatusField.Source != models.FieldPreferred || report.InfoField.Source != models.FieldPreferred {
		t.Errorf("fields = %+v / %+v, want preferred", report.StatusField, report.InfoField)
	}
	if len(src.batches) != 1 || !equalInts(src.batches[0], []int{1, 2, 3, 4, 5, 6}) {
		t.Errorf("batches = %v, want one call with sorted ids", src.batches)
	}
}

func TestHealth_UrgentCappedAtThree(t *testing.T) {
	var items []models.WorkItem
	for id := 1; id <= 5; id++ {
		items = append(items, wi(id, "AGI", `AGI\MEET`, "In Progress", map[string]any{
			"Custom.ProgressStatus": "1-Green", "Custom.ProgressInfo": "ok",
		}))
	}
	src := newFakeSource(items...)
	src.query = func(q models.Query) ([]int, error) {
		if q.States[0] == "In Progress" {
			return []int{5, 4, 3, 2, 1}, nil
		}
		return nil, nil
	}

	report, err := NewReportService(testDeps(src, testConfig()), nil).Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(report.Urgent); !equalInts(got, []int{5, 4, 3}) {
		t.Errorf("Urgent = %v, want [5 4 3]", got)
	}
}

func TestHealth_DiscoversProgressFields(t *testing.T) {
	src := newFakeSource(
		wi(1, "AGI", `AGI\MEET`, "In Progress", map[string]any{"Custom.Progress_Status": "2-Amber"}),
		wi(2, "AGI", `AGI\MEET`, "In Progress", map[string]any{"Custom.Progress_Status": "1-Green"}),
		wi(3, "AGI", `AGI\MEET`, "In Progress", nil),
	)
	src.query = func(q models.Query) ([]int, error) {
		if q.States[0] == "In Progress" {
			return []int{1, 2, 3}, nil
		}
		return nil, nil
	}

	report, err := NewReportService(testDeps(src, testConfig()), nil).Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := models.FieldChoice{Name: "Custom.Progress_Status", Source: models.FieldDiscovered}
	if report.StatusField != want {
		t.Errorf("StatusField = %+v, want %+v", report.StatusField, want)
	}
	if report.InfoField.Source != models.FieldFallback {
		t.Errorf("InfoField = %+v, want fallback", report.InfoField)
	}
	if got := ids(report.MissingStatus); !equalInts(got, []int{3}) {
		t.Errorf("MissingStatus = %v, want [3]", got)
	}
	if got := ids(report.AmberMissingInfo); !equalInts(got, []int{1}) {
		t.Errorf("AmberMissingInfo = %v, want [1]", got)
	}
	// Batch, full sample, refetch with the discovered field.
	if len(src.batches) != 3 {
		t.Errorf("batches = %v, want 3 calls", src.batches)
	}
}

func TestHealth_Empty(t *testing.T) {
	src := newFakeSource()
	report, err := NewReportService(testDeps(src, testConfig()), nil).Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Total != 0 || len(report.Urgent) != 0 || len(report.MissingStatus) != 0 {
		t.Errorf("report = %+v", report)
	}
	if report.StatusField.Source != models.FieldFallback {
		t.Errorf("StatusField = %+v", report.StatusField)
	}
}

// --- Consistency ---

func TestConsistency(t *testing.T) {
	const (
		target = "Microsoft.VSTS.Scheduling.TargetDate"
		end    = "Custom.ImplementationEndDate"
	)
	src := newFakeSource(
		wi(11, "AGI", `AGI\MEET`, "In Progress", map[string]any{target: "2025-07-15T00:00:00Z"}, parentLink("100")),
		wi(12, "AGI", `AGI\MEET`, "In Progress", map[string]any{target: "2025-07-01T00:00:00Z"}, parentLink("101")),
		wi(13, "AGI", `AGI\MEET`, "In Progress", map[string]any{target: "2030-01-01T00:00:00Z"}, parentLink("200")),
		wi(14, "AGI", `AGI\MEET`, "In Progress", nil),
		wi(15, "AGI", `AGI\MEET`, "In Progress", nil, parentLink("101")),
		wi(100, "EEM Portfolio", "EEM", "New", map[string]any{end: "2025-06-30T00:00:00Z"}),
		wi(101, "EEM Portfolio", "EEM", "In Progress", map[string]any{end: "2025-08-01T00:00:00Z"}),
		wi(200, "Other", "Other", "New", map[string]any{end: "2020-01-01T00:00:00Z"}),
	)
	src.query = func(models.Query) ([]int, error) { return []int{11, 12, 13, 14, 15}, nil }

	report, err := NewReportService(testDeps(src, testConfig()), nil).Consistency(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.ChildCount != 5 {
		t.Errorf("ChildCount = %d", report.ChildCount)
	}
	if len(report.ParentNotProgress) != 1 || report.ParentNotProgress[0].Child.ID != 11 || report.ParentNotProgress[0].Parent.ID != 100 {
		t.Errorf("ParentNotProgress = %+v", report.ParentNotProgress)
	}
	if len(report.TargetAfterEndDate) != 1 {
		t.Fatalf("TargetAfterEndDate = %+v", report.TargetAfterEndDate)
	}
	v := report.TargetAfterEndDate[0]
	if v.Child.ID != 11 || v.ChildDate != "2025-07-15T00:00:00Z" || v.ParentDate != "2025-06-30T00:00:00Z" {
		t.Errorf("violation = %+v", v)
	}
	q := src.lastQuery[0]
	if q.AreaMatch != models.AreaEquals || len(q.States) != 1 || q.States[0] != "In Progress" {
		t.Errorf("child query = %+v", q)
	}
}

func TestConsistency_NoChildren(t *testing.T) {
	src := newFakeSource()
	report, err := NewReportService(testDeps(src, testConfig()), nil).Consistency(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.ChildCount != 0 || len(src.batches) != 0 {
		t.Errorf("report = %+v, batches = %v", report, src.batches)
	}
}

// --- BoardCoverage ---

func TestBoardCoverage(t *testing.T) {
	tags := map[string]any{models.FieldTags: "MEET"}
	src := newFakeSource(
		wi(300, "EEM Portfolio", "EEM", "Ready For Delivery", tags, childLink("21"), childLink("22")),
		wi(301, "EEM Portfolio", "EEM", "Ready For Delivery", tags, childLink("23"), childLink("24")),
		wi(302, "EEM Portfolio", "EEM", "Ready For Delivery", tags),
		wi(21, "AGI", `AGI\MEET\Sub`, "New", nil),
		wi(22, "AGI", `AGI\Other`, "New", nil),
		wi(23, "AGI", `AGI\Other`, "New", nil),
		wi(24, "X", `AGI\MEET`, "New", nil),
	)
	src.rules = []models.AreaRule{{BasePath: `AGI\MEET`, IncludeDescendants: true}}
	src.query = func(models.Query) ([]int, error) { return []int{302, 301, 300}, nil }

	report, err := NewReportService(testDeps(src, testConfig()), nil).BoardCoverage(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.ParentCount != 3 || report.Team != "MEET" || len(report.Rules) != 1 {
		t.Errorf("report = %+v", report)
	}
	if len(report.Uncovered) != 2 {
		t.Fatalf("Uncovered = %+v", report.Uncovered)
	}
	if report.Uncovered[0].Parent.ID != 301 || report.Uncovered[1].Parent.ID != 302 {
		t.Errorf("uncovered parents = %d, %d", report.Uncovered[0].Parent.ID, report.Uncovered[1].Parent.ID)
	}
	kids := report.Uncovered[0].Children
	if len(kids) != 2 || kids[0].Child.ID != 23 || kids[1].Child.ID != 24 || kids[0].OnBoard || kids[1].OnBoard {
		t.Errorf("children of 301 = %+v", kids)
	}
	if !equalInts(src.relCalls, []int{302, 301, 300}) {
		t.Errorf("relation calls = %v, want query order", src.relCalls)
	}
}

func TestBoardCoverage_ListsEveryQueriedParent(t *testing.T) {
	src := newFakeSource(
		wi(200, "EEM Portfolio", "EEM", "Ready For Delivery", map[string]any{models.FieldTags: "meet"}),
		wi(201, "EEM Portfolio", "EEM", "Ready For Delivery", nil),
	)
	src.rules = []models.AreaRule{{BasePath: `AGI\MEET`, IncludeDescendants: true}}
	src.query = func(models.Query) ([]int, error) { return []int{201, 200}, nil }

	report, err := NewReportService(testDeps(src, testConfig()), nil).BoardCoverage(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Uncovered) != 2 || report.Uncovered[0].Parent.ID != 200 || report.Uncovered[1].Parent.ID != 201 {
		t.Errorf("uncovered = %+v, want parents 200 and 201", report.Uncovered)
	}
}

func coverageSource() *fakeSource {
	src := newFakeSource(
		wi(300, "EEM Portfolio", "EEM", "Ready For Delivery", nil, childLink("21")),
		wi(301, "EEM Portfolio", "EEM", "Ready For Delivery", nil, childLink("22")),
		wi(302, "EEM Portfolio", "EEM", "Ready For Delivery", nil, childLink("23")),
		wi(21, "AGI", `AGI\MEET\Sub`, "New", nil),
		wi(22, "AGI", `AGI\MEET`, "New", nil),
		wi(23, "X", `AGI\MEET`, "New", nil),
	)
	src.rulesErr = errors.New("board rules must not be loaded")
	src.query = func(models.Query) ([]int, error) { return []int{302, 301, 300}, nil }
	return src
}

func TestBoardCoverage_AreaScopes(t *testing.T) {
	tests := []struct {
		scope     string
		uncovered []int
		rule      models.AreaRule
	}{
		{"area_under", []int{302}, models.AreaRule{BasePath: `AGI\MEET`, IncludeDescendants: true}},
		{"area_equals", []int{300, 302}, models.AreaRule{BasePath: `AGI\MEET`}},
	}
	for _, tt := range tests {
		t.Run(tt.scope, func(t *testing.T) {
			cfg := testConfig()
			cfg.Child.Team = ""
			cfg.Child.CoverageScope = tt.scope

			report, err := NewReportService(testDeps(coverageSource(), cfg), nil).BoardCoverage(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var got []int
			for _, cov := range report.Uncovered {
				got = append(got, cov.Parent.ID)
			}
			if !equalInts(got, tt.uncovered) {
				t.Errorf("uncovered = %v, want %v", got, tt.uncovered)
			}
			if report.CoverageScope != tt.scope || len(report.Rules) != 1 || report.Rules[0] != tt.rule {
				t.Errorf("scope = %q, rules = %+v", report.CoverageScope, report.Rules)
			}
		})
	}
}

func TestBoardCoverage_UnknownScope(t *testing.T) {
	cfg := testConfig()
	cfg.Child.CoverageScope = "sprint"
	if _, err := NewReportService(testDeps(newFakeSource(), cfg), nil).BoardCoverage(context.Background()); err == nil {
		t.Error("expected error for an unknown coverage scope")
	}
}

func TestBoardCoverage_SourceOrdering(t *testing.T) {
	cfg := testConfig()
	cfg.Child.CoverageScope = "area_equals"
	cfg.Ordering.BoardCoverage = "source"

	report, err := NewReportService(testDeps(coverageSource(), cfg), nil).BoardCoverage(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Uncovered) != 2 || report.Uncovered[0].Parent.ID != 302 || report.Uncovered[1].Parent.ID != 300 {
		t.Errorf("uncovered = %+v, want query order 302, 300", report.Uncovered)
	}
}

func TestOrderingFor(t *testing.T) {
	if got := orderingFor(nil); got.MissingChildren != IDAscending || got.Health != SourceOrder ||
		got.Consistency != SourceOrder || got.BoardCoverage != IDAscending {
		t.Errorf("defaults = %+v", got)
	}

	cfg := testConfig()
	cfg.Ordering = models.OrderingConfig{Health: "id", Consistency: "bogus"}
	got := orderingFor(cfg)
	if got.Health != IDAscending {
		t.Errorf("Health = %q, want id", got.Health)
	}
	if got.Consistency != SourceOrder || got.MissingChildren != IDAscending {
		t.Errorf("unset or unknown names should keep the defaults: %+v", got)
	}
}

func TestBoardCoverage_RequiresTeam(t *testing.T) {
	cfg := testConfig()
	cfg.Child.Team = ""
	if _, err := NewReportService(testDeps(newFakeSource(), cfg), nil).BoardCoverage(context.Background()); err == nil {
		t.Error("expected error without a team")
	}
}

func TestBoardCoverage_RulesError(t *testing.T) {
	src := newFakeSource()
	src.rulesErr = errors.New("teamfieldvalues failed HTTP=404")
	_, err := NewReportService(testDeps(src, testConfig()), nil).BoardCoverage(context.Background())
	if !errors.Is(err, src.rulesErr) {
		t.Errorf("err = %v", err)
	}
}
