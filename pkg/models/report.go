package models

import "time"

// MissingChildReport lists parents that have no child in the child area.
type MissingChildReport struct {
	GeneratedAt time.Time
	ParentQuery Query
	ChildQuery  Query
	ParentCount int
	ChildCount  int
	// MissingIDs are the parent ids no child points to, in query order.
	MissingIDs []int
	// Missing holds the fetched details of MissingIDs. Ids the batch fetch
	// did not return are absent.
	Missing []WorkItem
}

// MissingCount is the number of parents without a child, including any whose
// details could not be fetched.
func (r *MissingChildReport) MissingCount() int {
	if len(r.MissingIDs) > len(r.Missing) {
		return len(r.MissingIDs)
	}
	return len(r.Missing)
}

// StateBuckets groups the work items of one state by target date classification.
// Items inside a bucket keep the order of the state's query.
type StateBuckets struct {
	State   string
	Buckets map[Classification][]WorkItem
}

// Count returns the number of items in the given bucket.
func (s StateBuckets) Count(c Classification) int {
	return len(s.Buckets[c])
}

// HealthReport is the weekly traffic-light view of the child area.
type HealthReport struct {
	GeneratedAt     time.Time
	Today           time.Time
	NextMonday      time.Time
	WindowEnd       time.Time
	Scope           Query
	Total           int
	States          []StateBuckets
	FocusState      string
	Urgent          []WorkItem
	TargetDateField string
	StatusField     FieldChoice
	InfoField       FieldChoice
	AmberValue      string
	// MissingStatus holds items without a progress status.
	MissingStatus []WorkItem
	// AmberMissingInfo holds amber items without progress info.
	AmberMissingInfo []WorkItem
}

// Focus returns the buckets of FocusState, or empty buckets when the state
// is not part of the report.
func (r *HealthReport) Focus() StateBuckets {
	for _, s := range r.States {
		if s.State == r.FocusState {
			return s
		}
	}
	return StateBuckets{State: r.FocusState, Buckets: map[Classification][]WorkItem{}}
}

// FieldSource records which discovery tier chose a field name.
type FieldSource string

const (
	FieldPreferred  FieldSource = "preferred"
	FieldDiscovered FieldSource = "discovered"
	FieldFallback   FieldSource = "fallback"
)

// FieldChoice is the outcome of a two-tier field lookup.
type FieldChoice struct {
	Name   string
	Source FieldSource
}

// StateViolation is a child in progress whose parent is not.
type StateViolation struct {
	Child  WorkItem
	Parent WorkItem
}

// DateViolation is a child whose target date runs past its parent's end date.
type DateViolation struct {
	Child      WorkItem
	Parent     WorkItem
	ChildDate  string
	ParentDate string
}

// ConsistencyReport compares in-progress children with their parents.
type ConsistencyReport struct {
	GeneratedAt        time.Time
	ChildQuery         Query
	ChildCount         int
	ParentProject      string
	InProgressState    string
	ChildDateField     string
	ParentDateField    string
	ParentNotProgress  []StateViolation
	TargetAfterEndDate []DateViolation
}

// ChildPlacement tells whether one child sits on the team board.
type ChildPlacement struct {
	Child   WorkItem
	OnBoard bool
}

// ParentCoverage is one parent with its resolved children.
type ParentCoverage struct {
	Parent   WorkItem
	Children []ChildPlacement
}

// Covered reports whether at least one child is on the board.
func (p ParentCoverage) Covered() bool {
	for _, c := range p.Children {
		if c.OnBoard {
			return true
		}
	}
	return false
}

// BoardCoverageReport lists parents whose children never reach the team board.
type BoardCoverageReport struct {
	GeneratedAt time.Time
	ParentQuery Query
	// CoverageScope is the child.coverage_scope the report ran with.
	CoverageScope string
	Team          string
	Rules         []AreaRule
	ParentCount   int
	// Uncovered follows the board coverage ordering policy.
	Uncovered []ParentCoverage
}
