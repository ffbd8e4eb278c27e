package core

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/valter-silva-au/adorep/pkg/models"
)

// workItemURLPattern extracts the id from .../workitems/<id>. Azure DevOps
// capitalises the segment inconsistently (workItems vs workitems).
var workItemURLPattern = regexp.MustCompile(`(?i)/workitems/(\d+)$`)

// ParseWorkItemID returns the numeric id at the end of a work item URL.
func ParseWorkItemID(url string) (int, bool) {
	m := workItemURLPattern.FindStringSubmatch(url)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// RelationSource fetches the relations of a single work item.
type RelationSource interface {
	GetRelations(ctx context.Context, id int) ([]models.Relation, error)
}

// HierarchyResolver walks parent/child links of work items.
type HierarchyResolver interface {
	// ResolveParent returns the parent id from the first reverse hierarchy link.
	ResolveParent(ctx context.Context, id int) (int, bool, error)
	// ResolveChildren returns child ids in the order the service lists them.
	ResolveChildren(ctx context.Context, id int) ([]int, error)
}

type hierarchyResolver struct {
	source RelationSource
	logger *zap.Logger
}

// NewHierarchyResolver creates a HierarchyResolver backed by source.
func NewHierarchyResolver(source RelationSource, logger *zap.Logger) HierarchyResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &hierarchyResolver{source: source, logger: logger}
}

func (r *hierarchyResolver) ResolveParent(ctx context.Context, id int) (int, bool, error) {
	rels, err := r.source.GetRelations(ctx, id)
	if err != nil {
		return 0, false, fmt.Errorf("fetching relations of %d: %w", id, err)
	}

	var parents []string
	for _, rel := range rels {
		if rel.Kind == models.HierarchyReverse {
			parents = append(parents, rel.URL)
		}
	}
	if len(parents) == 0 {
		return 0, false, nil
	}
	if len(parents) > 1 {
		// Only the first link is used; which one the service lists first is not specified.
		r.logger.Warn("work item has several parent links, using the first",
			zap.Int("id", id), zap.Strings("parents", parents))
	}

	pid, ok := ParseWorkItemID(parents[0])
	if !ok {
		r.logger.Debug("unparseable parent link", zap.Int("id", id), zap.String("url", parents[0]))
	}
	return pid, ok, nil
}

func (r *hierarchyResolver) ResolveChildren(ctx context.Context, id int) ([]int, error) {
	rels, err := r.source.GetRelations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching relations of %d: %w", id, err)
	}

	var children []int
	for _, rel := range rels {
		if rel.Kind != models.HierarchyForward || rel.URL == "" {
			continue
		}
		cid, ok := ParseWorkItemID(rel.URL)
		if !ok {
			r.logger.Debug("skipping unparseable child link", zap.Int("id", id), zap.String("url", rel.URL))
			continue
		}
		children = append(children, cid)
	}
	return children, nil
}

// Pacer spaces out successive per-item calls by a fixed delay. It is a crude
// rate limit, not backpressure.
type Pacer struct {
	Delay time.Duration
	sleep func(time.Duration)
	calls int
}

// NewPacer creates a Pacer that waits delay between calls.
func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{Delay: delay, sleep: time.Sleep}
}

// Wait sleeps for the delay, except before the first call.
func (p *Pacer) Wait() {
	if p == nil {
		return
	}
	p.calls++
	if p.calls == 1 || p.Delay <= 0 {
		return
	}
	if p.sleep == nil {
		p.sleep = time.Sleep
	}
	p.sleep(p.Delay)
}

// ProgressFunc is told the 1-based position of the item about to be resolved.
type ProgressFunc func(done, total int)

// EveryN wraps fn so it fires for the first item and every n-th item after.
func EveryN(n int, fn ProgressFunc) ProgressFunc {
	if fn == nil {
		return nil
	}
	if n < 1 {
		n = 1
	}
	return func(done, total int) {
		if done == 1 || done%n == 0 {
			fn(done, total)
		}
	}
}

// ResolveParents resolves the parent of every id, one call at a time.
// Children without a parent are left out of the result.
func ResolveParents(ctx context.Context, resolver HierarchyResolver, ids []int, pacer *Pacer, progress ProgressFunc) (map[int]int, error) {
	parents := make(map[int]int, len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if progress != nil {
			progress(i+1, len(ids))
		}
		pacer.Wait()

		pid, ok, err := resolver.ResolveParent(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			parents[id] = pid
		}
	}
	return parents, nil
}

// ResolveChildrenOf resolves the children of every id, one call at a time.
func ResolveChildrenOf(ctx context.Context, resolver HierarchyResolver, ids []int, pacer *Pacer, progress ProgressFunc) (map[int][]int, error) {
	children := make(map[int][]int, len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if progress != nil {
			progress(i+1, len(ids))
		}
		pacer.Wait()

		kids, err := resolver.ResolveChildren(ctx, id)
		if err != nil {
			return nil, err
		}
		children[id] = kids
	}
	return children, nil
}
