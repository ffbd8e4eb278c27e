package integration

import (
	"strings"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// QuoteWIQL renders s as a WIQL string literal, doubling embedded quotes.
func QuoteWIQL(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// BuildWIQL renders a structured query as WIQL text selecting only ids.
// Empty parts of the query add no condition.
func BuildWIQL(q models.Query) string {
	var conds []string
	if q.Project != "" {
		conds = append(conds, "[System.TeamProject] = "+QuoteWIQL(q.Project))
	}
	if q.WorkItemType != "" {
		conds = append(conds, "[System.WorkItemType] = "+QuoteWIQL(q.WorkItemType))
	}
	if q.AreaPath != "" {
		op := "="
		if q.AreaMatch == models.AreaUnder {
			op = "UNDER"
		}
		conds = append(conds, "[System.AreaPath] "+op+" "+QuoteWIQL(q.AreaPath))
	}
	switch len(q.States) {
	case 0:
	case 1:
		conds = append(conds, "[System.State] = "+QuoteWIQL(q.States[0]))
	default:
		quoted := make([]string, len(q.States))
		for i, s := range q.States {
			quoted[i] = QuoteWIQL(s)
		}
		conds = append(conds, "[System.State] IN ("+strings.Join(quoted, ", ")+")")
	}
	if q.TagContains != "" {
		conds = append(conds, "[System.Tags] CONTAINS "+QuoteWIQL(q.TagContains))
	}

	var b strings.Builder
	b.WriteString("SELECT [System.Id]\nFROM WorkItems")
	if len(conds) > 0 {
		b.WriteString("\nWHERE\n  ")
		b.WriteString(strings.Join(conds, "\n  AND "))
	}
	b.WriteString("\n")
	return b.String()
}

// chunkIDs splits ids into consecutive slices of at most size elements.
func chunkIDs(ids []int, size int) [][]int {
	if size < 1 {
		size = 1
	}
	var chunks [][]int
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
