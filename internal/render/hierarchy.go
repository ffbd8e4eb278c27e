package render

import (
	"fmt"
	"io"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// MissingChildren writes the parents lacking a child in the child area.
func MissingChildren(w io.Writer, orgURL string, r *models.MissingChildReport) error {
	p := newPrinter(w)
	pq, cq := r.ParentQuery, r.ChildQuery

	p.println(p.styles.heading.Render(fmt.Sprintf("Missing child report (%s)", stamp(r.GeneratedAt))))
	p.printf("Parent filter: %s | State='%s' | Tag contains '%s'\n", pq.Project, firstOr(pq.States, "any"), pq.TagContains)
	p.printf("Child filter: %s | AreaPath UNDER '%s'\n", cq.Project, cq.AreaPath)
	p.printf("Found %d parent %ss\n", r.ParentCount, pq.WorkItemType)
	p.printf("Found %d child %ss in %s/%s (all states)\n", r.ChildCount, cq.WorkItemType, cq.Project, cq.AreaPath)

	p.printf("\nMissing child %ss in %s/%s: %d\n", cq.WorkItemType, cq.Project, cq.AreaPath, r.MissingCount())
	if r.MissingCount() == 0 {
		p.println(p.styles.ok.Render("OK (no missing child features found)"))
		return p.err
	}

	p.printf("\n%s\n", p.styles.heading.Render("LIST:"))
	for _, it := range r.Missing {
		p.item("", orgURL, pq.Project, it, "")
	}
	return p.err
}

// Consistency writes the two parent/child consistency checks.
func Consistency(w io.Writer, orgURL string, r *models.ConsistencyReport) error {
	p := newPrinter(w)
	cq := r.ChildQuery
	childDate, parentDate := shortField(r.ChildDateField), shortField(r.ParentDateField)

	p.println(p.styles.heading.Render(fmt.Sprintf("Consistency report (%s)", stamp(r.GeneratedAt))))
	p.printf("Found %d child %ss in %s/%s with state='%s'\n", r.ChildCount, cq.WorkItemType, cq.Project, cq.AreaPath, r.InProgressState)

	p.printf("\n%s\n", p.styles.heading.Render(fmt.Sprintf(
		"CHECK 1: %s %s is '%s' but parent (%s) is NOT '%s'",
		cq.AreaPath, cq.WorkItemType, r.InProgressState, r.ParentProject, r.InProgressState)))
	if len(r.ParentNotProgress) == 0 {
		p.printf("  %s\n", p.styles.ok.Render("OK (no issues)"))
	}
	for _, v := range r.ParentNotProgress {
		p.printf("  Child %d | %s\n", v.Child.ID, v.Child.Display(models.FieldTitle))
		p.printf("    %s\n", ItemURL(orgURL, cq.Project, v.Child.ID))
		p.printf("    Parent %d | %s | state=%s\n", v.Parent.ID, v.Parent.Display(models.FieldTitle), v.Parent.Display(models.FieldState))
		p.printf("      %s\n", ItemURL(orgURL, r.ParentProject, v.Parent.ID))
	}

	p.printf("\n%s\n", p.styles.heading.Render(fmt.Sprintf(
		"CHECK 2: %s %s is '%s' and its %s > parent %s",
		cq.AreaPath, cq.WorkItemType, r.InProgressState, childDate, parentDate)))
	if len(r.TargetAfterEndDate) == 0 {
		p.printf("  %s\n", p.styles.ok.Render("OK (no issues)"))
	}
	for _, v := range r.TargetAfterEndDate {
		p.printf("  Child %d | %s | %s=%s\n", v.Child.ID, v.Child.Display(models.FieldTitle), childDate, v.ChildDate)
		p.printf("    %s\n", ItemURL(orgURL, cq.Project, v.Child.ID))
		p.printf("    Parent %d | %s | %s=%s\n", v.Parent.ID, v.Parent.Display(models.FieldTitle), parentDate, v.ParentDate)
		p.printf("      %s\n", ItemURL(orgURL, r.ParentProject, v.Parent.ID))
	}

	return p.err
}

// BoardCoverage writes the parents none of whose children is on the team board.
func BoardCoverage(w io.Writer, orgURL string, r *models.BoardCoverageReport) error {
	p := newPrinter(w)
	pq := r.ParentQuery

	p.println(p.styles.heading.Render(fmt.Sprintf("Board coverage report (%s)", stamp(r.GeneratedAt))))
	p.printf("Parent filter: %s | State='%s' | Tag contains '%s'\n", pq.Project, firstOr(pq.States, "any"), pq.TagContains)
	if r.CoverageScope == "" || r.CoverageScope == "board" {
		p.printf("Board: %s (%d area rules)\n", r.Team, len(r.Rules))
	} else {
		p.printf("Coverage: child area, %s (%d area rules)\n", r.CoverageScope, len(r.Rules))
	}
	for _, rule := range r.Rules {
		if rule.IncludeDescendants {
			p.printf("  %s (incl. sub-areas)\n", rule.BasePath)
		} else {
			p.printf("  %s\n", rule.BasePath)
		}
	}
	p.printf("Found %d parent %ss\n", r.ParentCount, pq.WorkItemType)

	p.printf("\nParents without a child on the board: %d\n", len(r.Uncovered))
	if len(r.Uncovered) == 0 {
		p.println(p.styles.ok.Render("OK (every parent has a child on the board)"))
		return p.err
	}

	for _, cov := range r.Uncovered {
		p.item("", orgURL, pq.Project, cov.Parent, "")
		if len(cov.Children) == 0 {
			p.println("    no children")
		}
		for _, c := range cov.Children {
			p.printf("    child %d | %s | %s\n", c.Child.ID, c.Child.Display(models.FieldTeamProject), c.Child.Display(models.FieldAreaPath))
		}
	}
	return p.err
}

func firstOr(ss []string, def string) string {
	if len(ss) == 0 {
		return def
	}
	return ss[0]
}
