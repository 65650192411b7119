package scheduler

// Colocation is a directed "this-with" edge: Source's placement is
// influenced by Target's. Stored on Source as an outgoing rsc_cons
// edge and on Target as an incoming rsc_cons_lhs edge.
type Colocation struct {
	ID        string
	Source    string // "this" — the resource being placed
	Target    string // "with this" — the resource it is colocated with
	Score     Score
	Influence bool
}

// InfluencePredicate decides whether an incoming colocation edge
// affects a particular child during instance placement: the edge's
// policy and the child's managedness permit it. Instance placement
// (copyParentColocations) always applies DefaultInfluence; it takes no
// caller-supplied predicate.
type InfluencePredicate func(c *Colocation, child *Resource) bool

// DefaultInfluence is the common case: an edge influences a child
// whenever the edge itself is marked influential and the child is
// managed. Non-managed resources are never subject to a parent's
// incoming colocation, since the core can't move them anyway.
func DefaultInfluence(c *Colocation, child *Resource) bool {
	return c.Influence && child.HasFlag(FlagManaged)
}

// ColocationIndex holds every colocation edge in the working set,
// indexed both by source and by target so that rsc_cons (outgoing) and
// rsc_cons_lhs (incoming) lookups are both O(1) amortized.
type ColocationIndex struct {
	bySource map[string][]*Colocation
	byTarget map[string][]*Colocation
}

func NewColocationIndex() *ColocationIndex {
	return &ColocationIndex{
		bySource: make(map[string][]*Colocation),
		byTarget: make(map[string][]*Colocation),
	}
}

func (idx *ColocationIndex) Add(c *Colocation) {
	idx.bySource[c.Source] = append(idx.bySource[c.Source], c)
	idx.byTarget[c.Target] = append(idx.byTarget[c.Target], c)
}

// OutgoingFrom returns rsc_cons: edges where resourceID is "this".
func (idx *ColocationIndex) OutgoingFrom(resourceID string) []*Colocation {
	return idx.bySource[resourceID]
}

// IncomingTo returns rsc_cons_lhs: edges where resourceID is "with this".
func (idx *ColocationIndex) IncomingTo(resourceID string) []*Colocation {
	return idx.byTarget[resourceID]
}
