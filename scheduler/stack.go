package scheduler

// assignStack chains the iterators a single native assign() call runs
// allowed nodes through: convert allowed_nodes to ranked nodes, drop
// anything already banned (-∞), then take the max score. This core has
// no constraint/driver/bin-pack stages of its own — those concerns
// live in the external RuleEvaluator and in the colocation scores
// already folded into each NodeView's weight before the stack runs.
type assignStack struct {
	source   *StaticRankIterator
	banned   *BanFilterIterator
	maxScore *MaxScoreIterator
}

func newAssignStack(views []*NodeView) *assignStack {
	ranked := make([]*RankedNode, len(views))
	for i, v := range views {
		ranked[i] = &RankedNode{NodeID: v.NodeID, Score: v.Weight}
	}
	s := &assignStack{source: NewStaticRankIterator(ranked)}
	s.banned = NewBanFilterIterator(s.source)
	s.maxScore = NewMaxScoreIterator(s.banned)
	return s
}

// Select returns the single best candidate node id, or nil if every
// allowed node is banned.
func (s *assignStack) Select() *RankedNode {
	return s.maxScore.Next()
}
