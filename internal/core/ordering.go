package core

import (
	"fmt"
	"sort"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// OrderingPolicy controls how report lists are ordered.
type OrderingPolicy string

const (
	// IDAscending sorts by work item id.
	IDAscending OrderingPolicy = "id"
	// SourceOrder keeps the order the ids came back from the query.
	SourceOrder OrderingPolicy = "source"
)

// ParseOrderingPolicy validates a policy name.
func ParseOrderingPolicy(s string) (OrderingPolicy, error) {
	switch OrderingPolicy(s) {
	case IDAscending, SourceOrder:
		return OrderingPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown ordering %q, must be one of: id, source", s)
	}
}

// Order returns items arranged by the policy. For SourceOrder, sourceIDs
// gives the reference order; items absent from it keep their relative order
// at the end. The input slice is not modified.
func (p OrderingPolicy) Order(items []models.WorkItem, sourceIDs []int) []models.WorkItem {
	out := make([]models.WorkItem, len(items))
	copy(out, items)

	switch p {
	case SourceOrder:
		rank := make(map[int]int, len(sourceIDs))
		for i, id := range sourceIDs {
			if _, seen := rank[id]; !seen {
				rank[id] = i
			}
		}
		sort.SliceStable(out, func(i, j int) bool {
			ri, iok := rank[out[i].ID]
			rj, jok := rank[out[j].ID]
			switch {
			case iok && jok:
				return ri < rj
			case iok:
				return true
			default:
				return false
			}
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}
	return out
}

// IndexByID maps work items by id.
func IndexByID(items []models.WorkItem) map[int]models.WorkItem {
	idx := make(map[int]models.WorkItem, len(items))
	for _, it := range items {
		idx[it.ID] = it
	}
	return idx
}

// PickInOrder returns the items of idx for ids, in ids order, skipping ids
// the service did not return.
func PickInOrder(idx map[int]models.WorkItem, ids []int) []models.WorkItem {
	out := make([]models.WorkItem, 0, len(ids))
	for _, id := range ids {
		if it, ok := idx[id]; ok {
			out = append(out, it)
		}
	}
	return out
}

// UniqueSorted returns the distinct ids in ascending order.
func UniqueSorted(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}
