package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/adorep/internal/core"
	"github.com/valter-silva-au/adorep/internal/observability"
	"github.com/valter-silva-au/adorep/pkg/models"
)

// --- Fake implementations ---

type fakeReports struct {
	health        *models.HealthReport
	missing       *models.MissingChildReport
	consistency   *models.ConsistencyReport
	boardCoverage *models.BoardCoverageReport
	err           error
}

func (f *fakeReports) MissingChildren(context.Context) (*models.MissingChildReport, error) {
	return f.missing, f.err
}

func (f *fakeReports) Health(context.Context) (*models.HealthReport, error) {
	return f.health, f.err
}

func (f *fakeReports) Consistency(context.Context) (*models.ConsistencyReport, error) {
	return f.consistency, f.err
}

func (f *fakeReports) BoardCoverage(context.Context) (*models.BoardCoverageReport, error) {
	return f.boardCoverage, f.err
}

// --- Test helpers ---

func testConfig() *models.ReportConfig {
	cfg := core.DefaultReportConfig()
	cfg.Timezone = "UTC"
	return cfg
}

func wi(id int, state, title string) models.WorkItem {
	return models.WorkItem{ID: id, Fields: map[string]any{models.FieldState: state, models.FieldTitle: title}}
}

func newTestServer(reports core.ReportService, alerts observability.AlertEngine) *Server {
	return NewServer(Options{
		Reports: func() (core.ReportService, error) { return reports, nil },
		Alerts:  alerts,
		Config:  testConfig(),
		Clock:   func() time.Time { return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC) },
		Version: "test",
	})
}

// callTool connects a client to the server over in-memory transports and
// calls a tool.
func callTool(t *testing.T, srv *Server, toolName string, args map[string]any) *gomcp.CallToolResult {
	t.Helper()

	ctx := context.Background()
	client := gomcp.NewClient(&gomcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)

	t1, t2 := gomcp.NewInMemoryTransports()

	go func() {
		_ = srv.MCPServer().Run(ctx, t1)
	}()

	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	result, err := session.CallTool(ctx, &gomcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("call tool %s: %v", toolName, err)
	}

	return result
}

// decode reads the structured output of a successful call into out.
func decode(t *testing.T, result *gomcp.CallToolResult, out any) {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}
	data := []byte(extractText(result))
	if result.StructuredContent != nil {
		var err error
		if data, err = json.Marshal(result.StructuredContent); err != nil {
			t.Fatalf("marshalling structured content: %v", err)
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("unmarshalling output: %v (data was: %s)", err, data)
	}
}

func extractText(result *gomcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(*gomcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// --- Tests ---

func TestListTools(t *testing.T) {
	srv := newTestServer(&fakeReports{}, nil)

	ctx := context.Background()
	client := gomcp.NewClient(&gomcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	t1, t2 := gomcp.NewInMemoryTransports()
	go func() {
		_ = srv.MCPServer().Run(ctx, t1)
	}()
	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	res, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("listing tools: %v", err)
	}
	got := map[string]bool{}
	for _, tool := range res.Tools {
		got[tool.Name] = true
	}
	for _, name := range []string{"health_report", "missing_children", "parent_consistency", "board_coverage", "classify_target_date", "build_child_patch"} {
		if !got[name] {
			t.Errorf("tool %s not registered", name)
		}
	}
}

func TestHealthReport(t *testing.T) {
	report := &models.HealthReport{
		GeneratedAt: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC),
		NextMonday:  time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2025, 6, 22, 0, 0, 0, 0, time.UTC),
		Scope:       models.Query{Project: "AGI"},
		Total:       3,
		FocusState:  "In Progress",
		States: []models.StateBuckets{{
			State: "In Progress",
			Buckets: map[models.Classification][]models.WorkItem{
				models.Green: {wi(1, "In Progress", "a")},
				models.Red:   {wi(2, "In Progress", "b")},
			},
		}},
		Urgent:        []models.WorkItem{wi(2, "In Progress", "b")},
		StatusField:   models.FieldChoice{Name: "Custom.ProgressStatus"},
		MissingStatus: []models.WorkItem{wi(3, "In Progress", "c")},
	}
	srv := newTestServer(&fakeReports{health: report}, observability.NewAlertEngine(models.AlertConfig{}))

	var out healthOutput
	decode(t, callTool(t, srv, "health_report", map[string]any{}), &out)

	if out.Total != 3 || out.NextWeek != "2025-06-16..2025-06-22" {
		t.Errorf("unexpected header: total=%d next_week=%s", out.Total, out.NextWeek)
	}
	if len(out.States) != 1 || out.States[0].Green != 1 || len(out.States[0].Red) != 1 {
		t.Fatalf("unexpected states: %+v", out.States)
	}
	if got := out.States[0].Red[0].URL; got != "https://dev.azure.com/eon-seed/AGI/_workitems/edit/2" {
		t.Errorf("unexpected url %s", got)
	}
	if len(out.Urgent) != 1 || out.Urgent[0].ID != 2 {
		t.Errorf("unexpected urgent: %+v", out.Urgent)
	}
	// One RED in focus and one missing status, both above zero thresholds.
	if len(out.Alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %+v", out.Alerts)
	}
	if out.Alerts[0].Severity != "high" || out.Alerts[1].Severity != "low" {
		t.Errorf("unexpected alert severities: %+v", out.Alerts)
	}
}

func TestHealthReport_Error(t *testing.T) {
	srv := newTestServer(&fakeReports{err: errors.New("WIQL failed HTTP=401: denied")}, nil)

	result := callTool(t, srv, "health_report", map[string]any{})
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if text := extractText(result); !strings.Contains(text, "HTTP=401") {
		t.Errorf("expected upstream error in %q", text)
	}
}

func TestReports_ProviderError(t *testing.T) {
	srv := NewServer(Options{
		Reports: func() (core.ReportService, error) { return nil, core.ErrMissingCredential },
		Config:  testConfig(),
	})

	for _, tool := range []string{"health_report", "missing_children", "parent_consistency", "board_coverage"} {
		result := callTool(t, srv, tool, map[string]any{})
		if !result.IsError {
			t.Errorf("%s: expected error result", tool)
		}
		if text := extractText(result); !strings.Contains(text, "reports not available") {
			t.Errorf("%s: unexpected error %q", tool, text)
		}
	}
}

func TestMissingChildren(t *testing.T) {
	srv := newTestServer(&fakeReports{missing: &models.MissingChildReport{
		ParentQuery: models.Query{Project: "EEM Portfolio"},
		ParentCount: 5,
		ChildCount:  9,
		Missing:     []models.WorkItem{wi(101, "Ready For Delivery", "x"), wi(102, "Ready For Delivery", "y")},
	}}, nil)

	var out missingChildrenOutput
	decode(t, callTool(t, srv, "missing_children", map[string]any{}), &out)

	if out.Count != 2 || out.ParentCount != 5 || out.ChildCount != 9 {
		t.Errorf("unexpected counts: %+v", out)
	}
	if out.Missing[0].URL != "https://dev.azure.com/eon-seed/EEM%20Portfolio/_workitems/edit/101" {
		t.Errorf("unexpected url %s", out.Missing[0].URL)
	}
}

func TestParentConsistency(t *testing.T) {
	srv := newTestServer(&fakeReports{consistency: &models.ConsistencyReport{
		ChildQuery:        models.Query{Project: "AGI"},
		ChildCount:        4,
		ParentProject:     "EEM Portfolio",
		ParentNotProgress: []models.StateViolation{{Child: wi(11, "In Progress", "c"), Parent: wi(100, "New", "p")}},
		TargetAfterEndDate: []models.DateViolation{{
			Child: wi(12, "In Progress", "c2"), Parent: wi(100, "In Progress", "p"),
			ChildDate: "2025-07-15T00:00:00Z", ParentDate: "2025-06-30T00:00:00Z",
		}},
	}}, nil)

	var out consistencyOutput
	decode(t, callTool(t, srv, "parent_consistency", map[string]any{}), &out)

	if out.ChildCount != 4 || len(out.ParentNotInProgress) != 1 || len(out.TargetAfterEndDate) != 1 {
		t.Fatalf("unexpected output: %+v", out)
	}
	if out.ParentNotInProgress[0].Parent.State != "New" {
		t.Errorf("unexpected parent state %s", out.ParentNotInProgress[0].Parent.State)
	}
	if v := out.TargetAfterEndDate[0]; v.ChildDate != "2025-07-15T00:00:00Z" || v.ParentDate != "2025-06-30T00:00:00Z" {
		t.Errorf("unexpected dates %+v", v)
	}
}

func TestBoardCoverage(t *testing.T) {
	srv := newTestServer(&fakeReports{boardCoverage: &models.BoardCoverageReport{
		CoverageScope: "board",
		Team:          "MEET",
		ParentCount:   3,
		Uncovered:     []models.ParentCoverage{{Parent: wi(301, "Ready For Delivery", "u")}},
	}}, nil)

	var out boardCoverageOutput
	decode(t, callTool(t, srv, "board_coverage", map[string]any{}), &out)

	if out.CoverageScope != "board" || out.Team != "MEET" || out.Count != 1 || out.Uncovered[0].ID != 301 {
		t.Errorf("unexpected output: %+v", out)
	}
}

func TestClassifyTargetDate(t *testing.T) {
	// Tuesday 2025-06-10; next week runs 2025-06-16..2025-06-22.
	srv := newTestServer(nil, nil)

	tests := []struct {
		args map[string]any
		want string
	}{
		{map[string]any{"target_date": "2025-06-09"}, "RED"},
		{map[string]any{"target_date": "2025-06-10"}, "GREEN"},
		{map[string]any{"target_date": "2025-06-16T00:00:00Z"}, "YELLOW"},
		{map[string]any{"target_date": "2025-06-22"}, "YELLOW"},
		{map[string]any{"target_date": "2025-06-23"}, "GREEN"},
		{map[string]any{"target_date": "soon"}, "MISSING"},
		{map[string]any{"target_date": "2025-06-16", "today": "2025-06-16"}, "GREEN"},
	}
	for _, tt := range tests {
		var out classifyOutput
		decode(t, callTool(t, srv, "classify_target_date", tt.args), &out)
		if out.Classification != tt.want {
			t.Errorf("%v: got %s, want %s", tt.args, out.Classification, tt.want)
		}
	}

	var out classifyOutput
	decode(t, callTool(t, srv, "classify_target_date", map[string]any{"target_date": "2025-06-18"}), &out)
	if out.Today != "2025-06-10" || out.NextMonday != "2025-06-16" || out.WeekEnd != "2025-06-22" {
		t.Errorf("unexpected window: %+v", out)
	}
}

func TestClassifyTargetDate_InvalidToday(t *testing.T) {
	srv := newTestServer(nil, nil)
	result := callTool(t, srv, "classify_target_date", map[string]any{"target_date": "2025-06-18", "today": "tuesday"})
	if !result.IsError {
		t.Fatal("expected error result for invalid today")
	}
}

func TestBuildChildPatch(t *testing.T) {
	srv := newTestServer(nil, nil)

	var out childPatchOutput
	decode(t, callTool(t, srv, "build_child_patch", map[string]any{
		"parent": map[string]any{
			"id": 4711,
			"fields": map[string]any{
				"System.Title":       "Smart meter rollout",
				"System.TeamProject": "EEM Portfolio",
			},
		},
	}), &out)

	if len(out.Operations) != 5 {
		t.Fatalf("expected 5 operations, got %d: %+v", len(out.Operations), out.Operations)
	}
	if out.Operations[0].Path != "/fields/System.Title" || out.Operations[0].Value != "Smart meter rollout" {
		t.Errorf("unexpected first op %+v", out.Operations[0])
	}
	last := out.Operations[len(out.Operations)-1]
	if last.Path != "/relations/-" {
		t.Errorf("expected relation last, got %s", last.Path)
	}
	rel, _ := last.Value.(map[string]any)
	if rel["url"] != "https://dev.azure.com/eon-seed/_apis/wit/workitems/4711" {
		t.Errorf("unexpected relation %+v", last.Value)
	}
}

func TestBuildChildPatch_MissingID(t *testing.T) {
	srv := newTestServer(nil, nil)
	result := callTool(t, srv, "build_child_patch", map[string]any{"parent": map[string]any{"id": 0, "fields": map[string]any{}}})
	if !result.IsError {
		t.Fatal("expected error result for missing parent id")
	}
}
