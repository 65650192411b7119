package scheduler

import "fmt"

// RankedNode pairs a node id with the score it earned from a
// RankIterator chain. This core has no resource-fit dimension, so the
// payload is just the node id plus the placement Score.
type RankedNode struct {
	NodeID string
	Score  Score
}

func (r *RankedNode) GoString() string {
	return fmt.Sprintf("<Node: %s Score: %s>", r.NodeID, r.Score)
}

// RankIterator is used to iteratively yield ranked nodes. The iterator
// chain lets each stage (ban filter, preference boost, selection) stay
// independently testable.
type RankIterator interface {
	Next() *RankedNode
}

// StaticRankIterator returns a fixed set of ranked nodes in order.
// Used for testing and as the base of the chain once allowed_nodes has
// been converted to RankedNode values.
type StaticRankIterator struct {
	nodes  []*RankedNode
	offset int
}

func NewStaticRankIterator(nodes []*RankedNode) *StaticRankIterator {
	return &StaticRankIterator{nodes: nodes}
}

func (it *StaticRankIterator) Next() *RankedNode {
	if it.offset >= len(it.nodes) {
		return nil
	}
	n := it.nodes[it.offset]
	it.offset++
	return n
}

// BanFilterIterator drops any node whose score is already -∞,
// implementing the ban half of the "ban unavailable" step once
// banUnavailableAllowedNodes has written -∞ into the node table.
type BanFilterIterator struct {
	source RankIterator
}

func NewBanFilterIterator(source RankIterator) *BanFilterIterator {
	return &BanFilterIterator{source: source}
}

func (it *BanFilterIterator) Next() *RankedNode {
	for {
		n := it.source.Next()
		if n == nil {
			return nil
		}
		if !n.Score.Banned() {
			return n
		}
	}
}

// MaxScoreIterator consumes its source fully and returns the single
// highest-scoring node, breaking ties with the standard node
// comparator (weight descending, node-id ascending — here the score
// already *is* the weight, so this is just sortNodeViews over
// RankedNode).
type MaxScoreIterator struct {
	source RankIterator
	best   *RankedNode
	done   bool
}

func NewMaxScoreIterator(source RankIterator) *MaxScoreIterator {
	return &MaxScoreIterator{source: source}
}

func (it *MaxScoreIterator) Reset() {
	it.best = nil
	it.done = false
}

func (it *MaxScoreIterator) Next() *RankedNode {
	if it.done {
		return nil
	}
	it.done = true
	for {
		n := it.source.Next()
		if n == nil {
			break
		}
		if it.best == nil {
			it.best = n
			continue
		}
		switch n.Score.Compare(it.best.Score) {
		case 1:
			it.best = n
		case 0:
			if n.NodeID < it.best.NodeID {
				it.best = n
			}
		}
	}
	return it.best
}
