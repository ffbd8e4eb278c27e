package models

import (
	"fmt"
	"strings"
)

// Well-known Azure DevOps field reference names.
const (
	FieldID          = "System.Id"
	FieldTitle       = "System.Title"
	FieldState       = "System.State"
	FieldTeamProject = "System.TeamProject"
	FieldAreaPath    = "System.AreaPath"
	FieldTags        = "System.Tags"
	FieldDescription = "System.Description"
)

// RelationKind identifies the link type of a work item relation.
type RelationKind string

const (
	// HierarchyForward points from a parent to one of its children.
	HierarchyForward RelationKind = "System.LinkTypes.Hierarchy-Forward"
	// HierarchyReverse points from a child to its parent.
	HierarchyReverse RelationKind = "System.LinkTypes.Hierarchy-Reverse"
)

// Relation is a link attached to a work item. The target id is embedded as
// the trailing path segment of URL.
type Relation struct {
	Kind       RelationKind   `json:"rel"`
	URL        string         `json:"url"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// WorkItem is a tracked unit in Azure DevOps, as returned by the REST API.
// Field values are kept exactly as decoded from JSON (strings, numbers, nil).
type WorkItem struct {
	ID        int            `json:"id"`
	Fields    map[string]any `json:"fields"`
	Relations []Relation     `json:"relations,omitempty"`
}

// Value returns the raw value of a field and whether the key was present.
func (w WorkItem) Value(field string) (any, bool) {
	if w.Fields == nil {
		return nil, false
	}
	v, ok := w.Fields[field]
	return v, ok
}

// String returns the field as a string. Missing, null and non-string values
// yield "".
func (w WorkItem) String(field string) string {
	v, _ := w.Value(field)
	s, _ := v.(string)
	return s
}

// IsBlank reports whether the field is missing, null, or a whitespace-only string.
func (w WorkItem) IsBlank(field string) bool {
	v, ok := w.Value(field)
	if !ok || v == nil {
		return true
	}
	if s, isStr := v.(string); isStr {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// Display renders a field for report output; missing values print as "None".
func (w WorkItem) Display(field string) string {
	v, ok := w.Value(field)
	if !ok || v == nil {
		return "None"
	}
	return fmt.Sprint(v)
}

// Title returns the System.Title field.
func (w WorkItem) Title() string { return w.String(FieldTitle) }

// State returns the System.State field.
func (w WorkItem) State() string { return w.String(FieldState) }

// Project returns the System.TeamProject field.
func (w WorkItem) Project() string { return w.String(FieldTeamProject) }

// AreaPath returns the System.AreaPath field.
func (w WorkItem) AreaPath() string { return w.String(FieldAreaPath) }

// Tags returns the raw semicolon-joined System.Tags field.
func (w WorkItem) Tags() string { return w.String(FieldTags) }

// AreaRule is one entry of a team board's area configuration.
type AreaRule struct {
	BasePath           string `json:"base_path" yaml:"base_path"`
	IncludeDescendants bool   `json:"include_descendants" yaml:"include_descendants"`
}

// Classification is the traffic-light bucket of a work item's target date.
type Classification string

const (
	Green   Classification = "GREEN"
	Yellow  Classification = "YELLOW"
	Red     Classification = "RED"
	Missing Classification = "MISSING"
)

// Classifications lists every bucket in report order.
var Classifications = []Classification{Green, Yellow, Red, Missing}
