package scheduler

import "sort"

// sortNodeViews orders a slice of NodeView by the standard comparator:
// higher weight first, then node-id lexicographic as a stable
// tie-break. Every public algorithm step that iterates a node set must
// pass through this before making an observable decision.
func sortNodeViews(views []*NodeView) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if c := b.Weight.Compare(a.Weight); c != 0 {
			return c < 0
		}
		return a.NodeID < b.NodeID
	})
}

// sortResourceIDs sorts resource ids lexicographically, the secondary
// half of the (resource_id, node_id) sort key used for deterministic
// iteration.
func sortResourceIDs(ids []string) {
	sort.Strings(ids)
}
