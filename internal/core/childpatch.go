package core

import (
	"fmt"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// ParentPayload is a parent work item as returned by the REST API, the input
// of BuildChildPatch. Only id and fields are read.
type ParentPayload struct {
	ID     int            `json:"id"`
	Fields map[string]any `json:"fields"`
}

// BuildChildPatch returns the JSON PATCH document that creates a child
// feature in the child area linked to parent. Fields whose value is null are
// left out; a missing title or description becomes "".
func BuildChildPatch(parent ParentPayload, cfg *models.ReportConfig) []models.PatchOperation {
	fields := parent.Fields
	if fields == nil {
		fields = map[string]any{}
	}

	lookup := func(name string, def any) any {
		v, ok := fields[name]
		if !ok {
			return def
		}
		return v
	}

	state := cfg.Child.InitialState
	if state == "" {
		state = "New"
	}

	var ops []models.PatchOperation
	add := func(name string, value any) {
		if value == nil {
			return
		}
		ops = append(ops, models.PatchOperation{Op: "add", Path: "/fields/" + name, Value: value})
	}

	add(models.FieldTitle, lookup(models.FieldTitle, ""))
	add(models.FieldAreaPath, cfg.Child.AreaPath)
	add(models.FieldState, state)
	add(models.FieldDescription, lookup(models.FieldDescription, ""))
	if cfg.Child.StartDateField != "" {
		add(cfg.Child.StartDateField, lookup(cfg.Child.StartDateField, nil))
	}
	if cfg.Child.TargetDateField != "" {
		add(cfg.Child.TargetDateField, lookup(cfg.Child.TargetDateField, nil))
	}

	ops = append(ops, models.PatchOperation{
		Op:   "add",
		Path: "/relations/-",
		Value: models.Relation{
			Kind: models.HierarchyReverse,
			URL:  fmt.Sprintf("%s/_apis/wit/workitems/%d", cfg.OrgURL(), parent.ID),
			Attributes: map[string]any{
				"comment": fmt.Sprintf("Auto-linked from %s (%s) -> %s",
					cfg.Parent.Project, cfg.Parent.Tag, cfg.Child.AreaPath),
			},
		},
	})
	return ops
}
