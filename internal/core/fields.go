package core

import (
	"regexp"
	"sort"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// Patterns used to discover the progress fields when the configured names are
// not present on the work items. Process templates name them freely, e.g.
// Custom.ProgressStatus or Custom.Progress_Status_Info.
var (
	ProgressStatusPattern = regexp.MustCompile(`(?i)Progress.*Status`)
	ProgressInfoPattern   = regexp.MustCompile(`(?i)Progress.*Info`)
)

// DiscoverField returns the first field name, in sorted order, matching
// pattern. Sorting keeps the pick stable across runs since JSON objects have
// no order. A name matching both progress patterns (Progress_Status_Info) is
// returned for either, which is a known limitation of the heuristic.
func DiscoverField(fields map[string]any, pattern *regexp.Regexp) (string, bool) {
	if pattern == nil {
		return "", false
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if pattern.MatchString(name) {
			return name, true
		}
	}
	return "", false
}

// ResolveField picks a field name in two tiers: the preferred name when the
// sample item carries it, else the first discovered match, else the preferred
// name anyway so reports still name what they looked for.
func ResolveField(sample map[string]any, preferred string, pattern *regexp.Regexp) models.FieldChoice {
	if preferred != "" {
		if _, ok := sample[preferred]; ok {
			return models.FieldChoice{Name: preferred, Source: models.FieldPreferred}
		}
	}
	if name, ok := DiscoverField(sample, pattern); ok {
		return models.FieldChoice{Name: name, Source: models.FieldDiscovered}
	}
	return models.FieldChoice{Name: preferred, Source: models.FieldFallback}
}
