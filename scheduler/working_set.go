package scheduler

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// WorkingSet is the round-scoped graph: a rooted resource tree plus
// node table, colocation edges, actions, and an ordering list. It is
// built once per scheduling round and discarded at the end of it.
//
// Resources and nodes are addressed by stable string ids rather than
// pointers-into-pointers: Resource holds a back-pointer to its
// WorkingSet, but the WorkingSet's maps are the only thing that owns
// the Resource values themselves.
type WorkingSet struct {
	Root *Resource

	resources map[string]*Resource
	nodes     map[string]*Node

	Nodes       *NodeTable
	Colocations *ColocationIndex

	Orderings []*Ordering

	RuleEvaluator RuleEvaluator
	NotifyBuilder NotifyBuilder
}

// NewWorkingSet constructs an empty working set.
func NewWorkingSet() *WorkingSet {
	return &WorkingSet{
		resources:   make(map[string]*Resource),
		nodes:       make(map[string]*Node),
		Nodes:       NewNodeTable(),
		Colocations: NewColocationIndex(),
	}
}

// AddNode registers a cluster node.
func (ws *WorkingSet) AddNode(n *Node) { ws.nodes[n.ID] = n }

// Node looks up a cluster node by id.
func (ws *WorkingSet) Node(id string) *Node { return ws.nodes[id] }

// AddResource registers a resource (and recursively its children) in
// the working set's resource index.
func (ws *WorkingSet) AddResource(r *Resource) {
	r.ws = ws
	ws.resources[r.ID] = r
	for _, c := range r.Children {
		ws.AddResource(c)
	}
	if r.Contained != nil {
		ws.AddResource(r.Contained)
	}
}

// Resource looks up a resource by id.
func (ws *WorkingSet) Resource(id string) *Resource { return ws.resources[id] }

// SetAllowed seeds resource r's allowed-node weight for nodeID. Used
// when materializing a snapshot: every (resource, node) pair the
// caller permits must have an explicit NodeView, even at weight 0.
func (ws *WorkingSet) SetAllowed(resourceID, nodeID string, weight Score) {
	ws.Nodes.Put(&NodeView{ResourceID: resourceID, NodeID: nodeID, Weight: weight})
}

// Validate checks the API-boundary invariants a caller must satisfy
// before a scheduling round can run: every ordering and colocation edge
// must reference resources that exist in the working set. Multiple
// problems are aggregated with go-multierror rather than failing on the
// first one, so a caller sees the whole picture in one pass.
func (ws *WorkingSet) Validate() error {
	if ws == nil {
		return fmt.Errorf("working set is nil")
	}
	var result *multierror.Error
	if ws.Root == nil {
		result = multierror.Append(result, fmt.Errorf("working set has no root resource"))
	}
	for _, o := range ws.Orderings {
		if o.First.Action == nil && ws.resources[o.First.ResourceID] == nil {
			result = multierror.Append(result, fmt.Errorf("ordering %s: unknown first resource %q", o.id(), o.First.ResourceID))
		}
		if o.Then.Action == nil && ws.resources[o.Then.ResourceID] == nil {
			result = multierror.Append(result, fmt.Errorf("ordering %s: unknown then resource %q", o.id(), o.Then.ResourceID))
		}
	}
	sources := make([]string, 0, len(ws.Colocations.bySource))
	for src := range ws.Colocations.bySource {
		sources = append(sources, src)
	}
	sortResourceIDs(sources)
	for _, src := range sources {
		if ws.resources[src] == nil {
			result = multierror.Append(result, fmt.Errorf("colocation source %q not in working set", src))
			continue
		}
		for _, c := range ws.Colocations.bySource[src] {
			if ws.resources[c.Target] == nil {
				result = multierror.Append(result, fmt.Errorf("colocation %s: unknown target %q", c.ID, c.Target))
			}
		}
	}
	return result.ErrorOrNil()
}
