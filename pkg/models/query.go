package models

// AreaMatch selects how a Query compares the area path.
type AreaMatch string

const (
	// AreaEquals matches the area path exactly.
	AreaEquals AreaMatch = "equals"
	// AreaUnder matches the area path and all of its sub-areas.
	AreaUnder AreaMatch = "under"
)

// Query is a structured WIQL request. Empty fields are left out of the
// WHERE clause.
type Query struct {
	Project      string
	WorkItemType string
	States       []string
	AreaPath     string
	AreaMatch    AreaMatch
	TagContains  string
}

// PatchOperation is one element of a JSON PATCH document.
type PatchOperation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}
