// Package render writes reports as plain text with clickable work item links.
// Labels are styled with lipgloss for the writer's terminal; when the writer
// is not a terminal the output carries no escape codes.
package render

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// ItemURL returns the web link of a work item.
func ItemURL(orgURL, project string, id int) string {
	return fmt.Sprintf("%s/%s/_workitems/edit/%d", strings.TrimRight(orgURL, "/"), url.PathEscape(project), id)
}

// printer remembers the first write error and drops everything after it.
type printer struct {
	w      io.Writer
	err    error
	styles styles
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, styles: newStyles(w)}
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) println(s string) {
	p.printf("%s\n", s)
}

// item writes "<indent>- <id> | <state> | <title><suffix>" and the link below it.
func (p *printer) item(indent, orgURL, project string, w models.WorkItem, suffix string) {
	p.printf("%s- %d | %s | %s%s\n", indent, w.ID, w.Display(models.FieldState), w.Display(models.FieldTitle), suffix)
	p.printf("%s  %s\n", indent, ItemURL(orgURL, project, w.ID))
}

type styles struct {
	heading lipgloss.Style
	ok      lipgloss.Style
	buckets map[models.Classification]lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		heading: r.NewStyle().Bold(true),
		ok:      r.NewStyle().Foreground(lipgloss.Color("2")),
		buckets: map[models.Classification]lipgloss.Style{
			models.Green:   r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
			models.Yellow:  r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
			models.Red:     r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
			models.Missing: r.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		},
	}
}

func (s styles) bucket(c models.Classification) string {
	return s.buckets[c].Render(string(c))
}

func stamp(t time.Time) string {
	return t.Format("2006-01-02 15:04 MST")
}

// shortField turns Custom.ImplementationEndDate into ImplementationEndDate.
func shortField(ref string) string {
	if i := strings.LastIndex(ref, "."); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// Progress returns a callback that writes "<what>: n/total..." lines to w.
// Write errors are ignored; progress is advisory.
func Progress(w io.Writer, what string) func(done, total int) {
	return func(done, total int) {
		_, _ = fmt.Fprintf(w, "%s: %d/%d...\n", what, done, total)
	}
}
