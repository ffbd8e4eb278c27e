package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// Health writes the weekly traffic-light report. Only RED, YELLOW and
// MISSING items are listed; GREEN is counted.
func Health(w io.Writer, orgURL string, r *models.HealthReport) error {
	p := newPrinter(w)
	project := r.Scope.Project
	target := shortField(r.TargetDateField)

	p.println(p.styles.heading.Render(fmt.Sprintf("Health report (%s)", stamp(r.GeneratedAt))))
	p.printf("Scope: %s / %s / %s\n", r.Scope.Project, r.Scope.AreaPath, r.Scope.WorkItemType)
	p.printf("Calendar week window (%s): next week %s .. %s\n",
		p.styles.bucket(models.Yellow), r.NextMonday.Format("2006-01-02"), r.WindowEnd.Format("2006-01-02"))
	p.printf("Total features (%s): %d\n", strings.Join(r.Scope.States, " + "), r.Total)

	focus := r.Focus()
	p.printf("\n%s\n", p.styles.heading.Render("SUMMARY (quick), focus: "+r.FocusState+" risks"))
	p.printf("  %s: %s=%d | %s(next week)=%d | %s(past)=%d | %s %s=%d\n", r.FocusState,
		p.styles.bucket(models.Green), focus.Count(models.Green),
		p.styles.bucket(models.Yellow), focus.Count(models.Yellow),
		p.styles.bucket(models.Red), focus.Count(models.Red),
		p.styles.bucket(models.Missing), target, focus.Count(models.Missing))
	if len(r.Urgent) == 0 {
		p.println("  Top issues: none")
	} else {
		p.printf("  Top issues (up to %d):\n", len(r.Urgent))
		for _, it := range r.Urgent {
			p.item("    ", orgURL, project, it, " | "+target+"="+dateOrMissing(it, r.TargetDateField))
		}
	}

	for _, sb := range r.States {
		p.printf("\n%s\n", p.styles.heading.Render("STATE = "+sb.State))
		p.printf("  %s=%d | %s=%d | %s=%d | %s %s=%d\n",
			p.styles.bucket(models.Green), sb.Count(models.Green),
			p.styles.bucket(models.Yellow), sb.Count(models.Yellow),
			p.styles.bucket(models.Red), sb.Count(models.Red),
			p.styles.bucket(models.Missing), target, sb.Count(models.Missing))

		sections := []struct {
			c     models.Classification
			title string
			dated bool
		}{
			{models.Red, fmt.Sprintf("(%s in the past)", target), true},
			{models.Yellow, fmt.Sprintf("(%s next calendar week)", target), true},
			{models.Missing, target, false},
		}
		for _, sec := range sections {
			items := sb.Buckets[sec.c]
			if len(items) == 0 {
				continue
			}
			p.printf("  %s %s:\n", p.styles.bucket(sec.c), sec.title)
			for _, it := range items {
				suffix := ""
				if sec.dated {
					suffix = " | " + target + "=" + it.Display(r.TargetDateField)
				}
				p.item("    ", orgURL, project, it, suffix)
			}
		}
	}

	p.printf("\n%s\n", p.styles.heading.Render("DATA QUALITY"))
	p.printf("  Progress Status field used: %s (%s)\n", r.StatusField.Name, r.StatusField.Source)
	p.printf("  Progress Info field used: %s (%s)\n", r.InfoField.Name, r.InfoField.Source)

	if len(r.MissingStatus) == 0 {
		p.printf("  %s\n", p.styles.ok.Render("OK: All features have Progress Status"))
	} else {
		p.printf("  Missing Progress Status: %d\n", len(r.MissingStatus))
		for _, it := range r.MissingStatus {
			p.item("    ", orgURL, project, it, "")
		}
	}

	if len(r.AmberMissingInfo) == 0 {
		p.printf("  %s\n", p.styles.ok.Render(fmt.Sprintf("OK: All '%s' features have Progress Info", r.AmberValue)))
	} else {
		p.printf("  '%s' but missing Progress Info: %d\n", r.AmberValue, len(r.AmberMissingInfo))
		for _, it := range r.AmberMissingInfo {
			p.item("    ", orgURL, project, it, "")
		}
	}

	return p.err
}

func dateOrMissing(w models.WorkItem, field string) string {
	if w.IsBlank(field) {
		return string(models.Missing)
	}
	return w.Display(field)
}
