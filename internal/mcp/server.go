// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the adorep reports as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/adorep/internal/core"
	"github.com/valter-silva-au/adorep/internal/observability"
	"github.com/valter-silva-au/adorep/internal/render"
	"github.com/valter-silva-au/adorep/pkg/models"
)

// ReportProvider returns the report service, building it on first use. The
// report tools need a credential; the offline tools never call it.
type ReportProvider func() (core.ReportService, error)

// Options configures a Server. Alerts is optional; when set, health_report
// includes the triggered alerts.
type Options struct {
	Reports ReportProvider
	Alerts  observability.AlertEngine
	Config  *models.ReportConfig
	Clock   core.Clock
	Version string
}

// Server wraps the report services and exposes them as MCP tools.
type Server struct {
	server  *gomcp.Server
	reports ReportProvider
	alerts  observability.AlertEngine
	cfg     *models.ReportConfig
	clock   core.Clock
}

// NewServer creates a new MCP server.
func NewServer(opts Options) *Server {
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	s := &Server{
		reports: opts.Reports,
		alerts:  opts.Alerts,
		cfg:     opts.Config,
		clock:   clock,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "adorep", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run serves on stdio, blocking until the client disconnects or the context
// is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type workItemOutput struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	State string `json:"state"`
	URL   string `json:"url"`
}

type noInput struct{}

type stateOutput struct {
	State   string           `json:"state"`
	Green   int              `json:"green"`
	Yellow  []workItemOutput `json:"yellow"`
	Red     []workItemOutput `json:"red"`
	Missing []workItemOutput `json:"missing_target_date"`
}

type alertOutput struct {
	ID        string `json:"id"`
	Condition string `json:"condition"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
}

type healthOutput struct {
	GeneratedAt      string           `json:"generated_at"`
	NextWeek         string           `json:"next_week"`
	Total            int              `json:"total"`
	FocusState       string           `json:"focus_state"`
	States           []stateOutput    `json:"states"`
	Urgent           []workItemOutput `json:"urgent"`
	StatusField      string           `json:"status_field"`
	InfoField        string           `json:"info_field"`
	MissingStatus    []workItemOutput `json:"missing_status"`
	AmberMissingInfo []workItemOutput `json:"amber_missing_info"`
	Alerts           []alertOutput    `json:"alerts"`
}

type missingChildrenOutput struct {
	ParentCount int              `json:"parent_count"`
	ChildCount  int              `json:"child_count"`
	Missing     []workItemOutput `json:"missing"`
	Count       int              `json:"count"`
}

type violationOutput struct {
	Child      workItemOutput `json:"child"`
	Parent     workItemOutput `json:"parent"`
	ChildDate  string         `json:"child_date,omitempty"`
	ParentDate string         `json:"parent_date,omitempty"`
}

type consistencyOutput struct {
	ChildCount          int               `json:"child_count"`
	ParentNotInProgress []violationOutput `json:"parent_not_in_progress"`
	TargetAfterEndDate  []violationOutput `json:"target_after_end_date"`
}

type boardCoverageOutput struct {
	CoverageScope string           `json:"coverage_scope"`
	Team          string           `json:"team"`
	ParentCount   int              `json:"parent_count"`
	Uncovered     []workItemOutput `json:"uncovered"`
	Count         int              `json:"count"`
}

type classifyInput struct {
	TargetDate string `json:"target_date" jsonschema:"the target date value, e.g. 2025-06-18 or 2025-06-18T00:00:00Z"`
	Today      string `json:"today,omitempty" jsonschema:"reference date (YYYY-MM-DD). Defaults to the current date."`
}

type classifyOutput struct {
	Classification string `json:"classification"`
	Today          string `json:"today"`
	NextMonday     string `json:"next_monday"`
	WeekEnd        string `json:"week_end"`
}

type childPatchInput struct {
	Parent core.ParentPayload `json:"parent" jsonschema:"the parent work item as returned by the REST API (id and fields)"`
}

type childPatchOutput struct {
	Operations []models.PatchOperation `json:"operations"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "health_report",
		Description: "Classify the child area's features by target date (GREEN, YELLOW next week, RED past, MISSING) and check progress status fields.",
	}, s.handleHealth)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "missing_children",
		Description: "List tagged parent features that have no child feature in the child area.",
	}, s.handleMissingChildren)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "parent_consistency",
		Description: "Find in-progress child features whose parent is not in progress or ends before the child's target date.",
	}, s.handleConsistency)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "board_coverage",
		Description: "List tagged parent features none of whose children appears on the child team's board.",
	}, s.handleBoardCoverage)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "classify_target_date",
		Description: "Classify a single target date as GREEN, YELLOW, RED or MISSING relative to today.",
	}, s.handleClassify)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "build_child_patch",
		Description: "Build the JSON PATCH document that creates a child feature linked to the given parent. Nothing is sent to Azure DevOps.",
	}, s.handleChildPatch)
}

// --- Tool handlers ---

func (s *Server) handleHealth(ctx context.Context, _ *gomcp.CallToolRequest, _ noInput) (*gomcp.CallToolResult, healthOutput, error) {
	svc, err := s.reportService()
	if err != nil {
		return errorResult(err.Error()), healthOutput{}, nil
	}
	r, err := svc.Health(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("building health report: %s", err)), healthOutput{}, nil
	}

	project := r.Scope.Project
	out := healthOutput{
		GeneratedAt:      r.GeneratedAt.Format(time.RFC3339),
		NextWeek:         r.NextMonday.Format("2006-01-02") + ".." + r.WindowEnd.Format("2006-01-02"),
		Total:            r.Total,
		FocusState:       r.FocusState,
		States:           make([]stateOutput, 0, len(r.States)),
		Urgent:           s.itemsOutput(project, r.Urgent),
		StatusField:      r.StatusField.Name,
		InfoField:        r.InfoField.Name,
		MissingStatus:    s.itemsOutput(project, r.MissingStatus),
		AmberMissingInfo: s.itemsOutput(project, r.AmberMissingInfo),
		Alerts:           []alertOutput{},
	}
	for _, sb := range r.States {
		out.States = append(out.States, stateOutput{
			State:   sb.State,
			Green:   sb.Count(models.Green),
			Yellow:  s.itemsOutput(project, sb.Buckets[models.Yellow]),
			Red:     s.itemsOutput(project, sb.Buckets[models.Red]),
			Missing: s.itemsOutput(project, sb.Buckets[models.Missing]),
		})
	}

	if s.alerts != nil {
		alerts, err := s.alerts.Evaluate(r)
		if err != nil {
			return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), healthOutput{}, nil
		}
		for _, a := range alerts {
			out.Alerts = append(out.Alerts, alertOutput{
				ID:        a.ID,
				Condition: a.Condition,
				Severity:  string(a.Severity),
				Message:   a.Message,
			})
		}
	}

	return nil, out, nil
}

func (s *Server) handleMissingChildren(ctx context.Context, _ *gomcp.CallToolRequest, _ noInput) (*gomcp.CallToolResult, missingChildrenOutput, error) {
	svc, err := s.reportService()
	if err != nil {
		return errorResult(err.Error()), missingChildrenOutput{}, nil
	}
	r, err := svc.MissingChildren(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("building missing children report: %s", err)), missingChildrenOutput{}, nil
	}

	return nil, missingChildrenOutput{
		ParentCount: r.ParentCount,
		ChildCount:  r.ChildCount,
		Missing:     s.itemsOutput(r.ParentQuery.Project, r.Missing),
		Count:       r.MissingCount(),
	}, nil
}

func (s *Server) handleConsistency(ctx context.Context, _ *gomcp.CallToolRequest, _ noInput) (*gomcp.CallToolResult, consistencyOutput, error) {
	svc, err := s.reportService()
	if err != nil {
		return errorResult(err.Error()), consistencyOutput{}, nil
	}
	r, err := svc.Consistency(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("building consistency report: %s", err)), consistencyOutput{}, nil
	}

	childProject := r.ChildQuery.Project
	out := consistencyOutput{
		ChildCount:          r.ChildCount,
		ParentNotInProgress: make([]violationOutput, 0, len(r.ParentNotProgress)),
		TargetAfterEndDate:  make([]violationOutput, 0, len(r.TargetAfterEndDate)),
	}
	for _, v := range r.ParentNotProgress {
		out.ParentNotInProgress = append(out.ParentNotInProgress, violationOutput{
			Child:  s.itemOutput(childProject, v.Child),
			Parent: s.itemOutput(r.ParentProject, v.Parent),
		})
	}
	for _, v := range r.TargetAfterEndDate {
		out.TargetAfterEndDate = append(out.TargetAfterEndDate, violationOutput{
			Child:      s.itemOutput(childProject, v.Child),
			Parent:     s.itemOutput(r.ParentProject, v.Parent),
			ChildDate:  v.ChildDate,
			ParentDate: v.ParentDate,
		})
	}
	return nil, out, nil
}

func (s *Server) handleBoardCoverage(ctx context.Context, _ *gomcp.CallToolRequest, _ noInput) (*gomcp.CallToolResult, boardCoverageOutput, error) {
	svc, err := s.reportService()
	if err != nil {
		return errorResult(err.Error()), boardCoverageOutput{}, nil
	}
	r, err := svc.BoardCoverage(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("building board coverage report: %s", err)), boardCoverageOutput{}, nil
	}

	parents := make([]models.WorkItem, len(r.Uncovered))
	for i, c := range r.Uncovered {
		parents[i] = c.Parent
	}
	return nil, boardCoverageOutput{
		CoverageScope: r.CoverageScope,
		Team:          r.Team,
		ParentCount:   r.ParentCount,
		Uncovered:     s.itemsOutput(r.ParentQuery.Project, parents),
		Count:         len(parents),
	}, nil
}

func (s *Server) handleClassify(_ context.Context, _ *gomcp.CallToolRequest, input classifyInput) (*gomcp.CallToolResult, classifyOutput, error) {
	loc := s.location()
	today := core.DateOf(s.clock(), loc)
	if input.Today != "" {
		d, ok := core.ParseTargetDate(input.Today, loc)
		if !ok {
			return errorResult(fmt.Sprintf("invalid today %q: expected YYYY-MM-DD", input.Today)), classifyOutput{}, nil
		}
		today = d
	}

	monday := core.NextMonday(today)
	return nil, classifyOutput{
		Classification: string(core.ClassifyTargetDate(input.TargetDate, today, monday, loc)),
		Today:          today.Format("2006-01-02"),
		NextMonday:     monday.Format("2006-01-02"),
		WeekEnd:        core.WeekEnd(monday).Format("2006-01-02"),
	}, nil
}

func (s *Server) handleChildPatch(_ context.Context, _ *gomcp.CallToolRequest, input childPatchInput) (*gomcp.CallToolResult, childPatchOutput, error) {
	if s.cfg == nil {
		return errorResult("configuration not available"), childPatchOutput{}, nil
	}
	if input.Parent.ID <= 0 {
		return errorResult("parent.id is required"), childPatchOutput{}, nil
	}
	return nil, childPatchOutput{Operations: core.BuildChildPatch(input.Parent, s.cfg)}, nil
}

// --- Helpers ---

func (s *Server) reportService() (core.ReportService, error) {
	if s.reports == nil {
		return nil, fmt.Errorf("reports not available")
	}
	svc, err := s.reports()
	if err != nil {
		return nil, fmt.Errorf("reports not available: %w", err)
	}
	return svc, nil
}

func (s *Server) location() *time.Location {
	if s.cfg == nil {
		return time.Local
	}
	return s.cfg.Location()
}

func (s *Server) orgURL() string {
	if s.cfg == nil {
		return ""
	}
	return s.cfg.OrgURL()
}

func (s *Server) itemOutput(project string, w models.WorkItem) workItemOutput {
	return workItemOutput{
		ID:    w.ID,
		Title: w.Title(),
		State: w.State(),
		URL:   render.ItemURL(s.orgURL(), project, w.ID),
	}
}

func (s *Server) itemsOutput(project string, items []models.WorkItem) []workItemOutput {
	out := make([]workItemOutput, len(items))
	for i, w := range items {
		out[i] = s.itemOutput(project, w)
	}
	return out
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
