package core

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

// =============================================================================
// Property 5: Work item URL id extraction
// =============================================================================

// Feature: adorep, Property 5: Work item URL id extraction
// *For any* positive id and any casing of the workitems segment, the id is
// read back from the end of the URL.
func TestProperty5_WorkItemURLRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		id := rapid.IntRange(1, 1<<30).Draw(rt, "id")
		segment := rapid.SampledFrom([]string{"workitems", "workItems", "WorkItems", "WORKITEMS"}).Draw(rt, "segment")
		org := rapid.StringMatching(`[a-z][a-z0-9-]{0,15}`).Draw(rt, "org")
		url := fmt.Sprintf("https://dev.azure.com/%s/_apis/wit/%s/%d", org, segment, id)

		got, ok := ParseWorkItemID(url)
		if !ok || got != id {
			rt.Fatalf("ParseWorkItemID(%q) = (%d, %v), want (%d, true)", url, got, ok, id)
		}
	})
}

// Feature: adorep, Property 5b: Trailing text defeats extraction
// *For any* URL with something after the id, no id is extracted.
func TestProperty5b_TrailingTextRejected(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		id := rapid.IntRange(1, 1<<30).Draw(rt, "id")
		tail := rapid.StringMatching(`[/?#a-z][a-z0-9]{0,5}`).Draw(rt, "tail")
		url := fmt.Sprintf("https://dev.azure.com/org/_apis/wit/workitems/%d%s", id, tail)

		if got, ok := ParseWorkItemID(url); ok {
			rt.Fatalf("ParseWorkItemID(%q) = %d, want no match", url, got)
		}
	})
}
