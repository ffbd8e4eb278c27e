package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/adorep/internal/observability"
	"github.com/valter-silva-au/adorep/pkg/models"
)

// maxPanelItems caps the items listed per bucket in a panel.
const maxPanelItems = 8

// healthLoader fetches a fresh health report and its alerts.
type healthLoader func() (*models.HealthReport, []observability.Alert, error)

// Panels are one per child state followed by the data quality panel.
type dashboardModel struct {
	load        healthLoader
	activePanel int
	width       int
	height      int

	report *models.HealthReport
	alerts []observability.Alert

	loading bool
	err     error
}

// healthLoadedMsg carries loaded data back to the model.
type healthLoadedMsg struct {
	report *models.HealthReport
	alerts []observability.Alert
	err    error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	bucketStyles = map[models.Classification]lipgloss.Style{
		models.Green:   lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		models.Yellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		models.Red:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		models.Missing: lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
	}

	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel(load healthLoader) dashboardModel {
	return dashboardModel{
		load:    load,
		loading: true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m dashboardModel) loadCmd() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		report, alerts, err := load()
		return healthLoadedMsg{report: report, alerts: alerts, err: err}
	}
}

// panelCount is the number of state panels plus the data quality panel.
func (m dashboardModel) panelCount() int {
	if m.report == nil {
		return 1
	}
	return len(m.report.States) + 1
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % m.panelCount()
			return m, nil
		case "shift+tab":
			n := m.panelCount()
			m.activePanel = (m.activePanel - 1 + n) % n
			return m, nil
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, m.loadCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case healthLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.report = msg.report
		m.alerts = msg.alerts
		m.err = nil
		if m.activePanel >= m.panelCount() {
			m.activePanel = 0
		}
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" adorep health ")
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading report...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	r := m.report
	subtitle := fmt.Sprintf("  %s / %s | next week %s .. %s | %d features",
		r.Scope.Project, r.Scope.AreaPath,
		r.NextMonday.Format("2006-01-02"), r.WindowEnd.Format("2006-01-02"), r.Total)

	panels := make([]string, 0, m.panelCount())
	for _, sb := range r.States {
		panels = append(panels, m.renderStatePanel(sb))
	}
	panels = append(panels, m.renderQualityPanel())

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 40*len(panels) {
		colWidth := availableWidth / len(panels)
		for i := range panels {
			panels[i] = m.applyPanelStyle(i, panels[i], colWidth-4)
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top, panels...)
	} else {
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		for i := range panels {
			panels[i] = m.applyPanelStyle(i, panels[i], panelWidth)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, panels...)
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, subtitle, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderStatePanel(sb models.StateBuckets) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(sb.State))
	b.WriteString("\n")

	for _, c := range models.Classifications {
		label := fmt.Sprintf("  %-8s %d", c, sb.Count(c))
		b.WriteString(bucketStyles[c].Render(label))
		b.WriteString("\n")
	}

	for _, c := range []models.Classification{models.Red, models.Yellow, models.Missing} {
		items := sb.Buckets[c]
		if len(items) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(bucketStyles[c].Render(string(c)))
		b.WriteString("\n")
		writeItems(&b, items, m.report.TargetDateField, c != models.Missing)
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m dashboardModel) renderQualityPanel() string {
	r := m.report
	var b strings.Builder
	b.WriteString(headerStyle.Render("Data quality"))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("  Missing %s: %d\n", r.StatusField.Name, len(r.MissingStatus)))
	writeItems(&b, r.MissingStatus, "", false)
	b.WriteString(fmt.Sprintf("  '%s' without %s: %d\n", r.AmberValue, r.InfoField.Name, len(r.AmberMissingInfo)))
	writeItems(&b, r.AmberMissingInfo, "", false)

	b.WriteString("\n")
	if len(m.alerts) == 0 {
		b.WriteString("  No active alerts.")
		return b.String()
	}
	for _, a := range m.alerts {
		sev := styleForSeverity(a.Severity).Render(fmt.Sprintf("[%s]", strings.ToUpper(string(a.Severity))))
		b.WriteString(fmt.Sprintf("  %s %s\n", sev, a.Message))
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeItems(b *strings.Builder, items []models.WorkItem, dateField string, dated bool) {
	for i, it := range items {
		if i == maxPanelItems {
			b.WriteString(fmt.Sprintf("    ... %d more\n", len(items)-maxPanelItems))
			return
		}
		line := fmt.Sprintf("    %d %s", it.ID, it.Title())
		if dated {
			line += " (" + it.Display(dateField) + ")"
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func styleForSeverity(severity observability.AlertSeverity) lipgloss.Style {
	switch severity {
	case observability.SeverityHigh:
		return severityHigh
	case observability.SeverityMedium:
		return severityMedium
	case observability.SeverityLow:
		return severityLow
	default:
		return lipgloss.NewStyle()
	}
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI view of the health report",
	Long: `Launch an interactive terminal dashboard showing the health report with one
panel per child state and a data quality panel with the active alerts.

Navigate between panels with Tab, re-run the report with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if rt == nil || rt.NewReports == nil {
			return fmt.Errorf("report service not initialized")
		}
		// Progress output would tear the alternate screen.
		svc, err := rt.NewReports(nil)
		if err != nil {
			return err
		}
		ctx, stop := reportContext(cmd)
		defer stop()

		load := func() (*models.HealthReport, []observability.Alert, error) {
			report, err := svc.Health(ctx)
			if err != nil {
				return nil, nil, fmt.Errorf("building health report: %w", err)
			}
			alerts, err := rt.Alerts.Evaluate(report)
			if err != nil {
				return nil, nil, fmt.Errorf("evaluating alerts: %w", err)
			}
			return report, alerts, nil
		}

		p := tea.NewProgram(newDashboardModel(load), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
