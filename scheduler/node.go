package scheduler

import (
	"fmt"

	memdb "github.com/hashicorp/go-memdb"
)

// NodeStatus is the health/administrative status of a cluster node.
type NodeStatus int

const (
	NodeOnline NodeStatus = iota
	NodeStandby
	NodeOffline
	NodeFencing
)

// Node is a cluster member, identified by an opaque node id. Node is
// the global entity; each resource additionally carries its own
// NodeView (weight, count) for that node.
type Node struct {
	ID     string
	Status NodeStatus
	Shadow bool // maintenance/shadow mode: never counted as available
}

// Available implements the `available(strict, allow_standby)`
// predicate. strict=false is used for availability counts (Phase 0);
// strict=true additionally requires the node not be in standby unless
// allowStandby is set, matching `pcmk__node_available`'s stricter mode
// used when checking an instance's *current* node in `preferred_node`.
func (n *Node) Available(strict, allowStandby bool) bool {
	if n == nil {
		return false
	}
	if n.Shadow || n.Status == NodeOffline || n.Status == NodeFencing {
		return false
	}
	if n.Status == NodeStandby && strict && !allowStandby {
		return false
	}
	return true
}

// NodeView is a single resource's private view of a node: its
// placement weight and the running count of instances of the owning
// collective assigned to it this round. Keyed by (resourceID, nodeID).
type NodeView struct {
	ResourceID string
	NodeID     string
	Weight     Score
	Count      uint32
}

func (v *NodeView) Copy() *NodeView {
	cp := *v
	return &cp
}

// NodeTable indexes NodeView rows through go-memdb so that iteration
// is always performed in index (sorted) order rather than Go map
// order, keeping node iteration deterministic.
type NodeTable struct {
	db *memdb.MemDB
}

func nodeTableSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			"nodeview": {
				Name: "nodeview",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:   "id",
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.StringFieldIndex{Field: "ResourceID"},
								&memdb.StringFieldIndex{Field: "NodeID"},
							},
						},
					},
					"resource": {
						Name:    "resource",
						Unique:  false,
						Indexer: &memdb.StringFieldIndex{Field: "ResourceID"},
					},
				},
			},
		},
	}
}

// NewNodeTable constructs an empty node table.
func NewNodeTable() *NodeTable {
	db, err := memdb.NewMemDB(nodeTableSchema())
	if err != nil {
		panic(fmt.Sprintf("scheduler: invalid node table schema: %v", err))
	}
	return &NodeTable{db: db}
}

// Put inserts or replaces a node view.
func (t *NodeTable) Put(v *NodeView) {
	txn := t.db.Txn(true)
	if err := txn.Insert("nodeview", v); err != nil {
		txn.Abort()
		panic(fmt.Sprintf("scheduler: node table insert: %v", err))
	}
	txn.Commit()
}

// Get returns the view for (resourceID, nodeID), or nil.
func (t *NodeTable) Get(resourceID, nodeID string) *NodeView {
	txn := t.db.Txn(false)
	raw, err := txn.First("nodeview", "id", resourceID, nodeID)
	if err != nil || raw == nil {
		return nil
	}
	return raw.(*NodeView)
}

// AllowedNodes returns every NodeView belonging to resourceID, sorted
// by node id (memdb's index order), ready for the caller to apply the
// weight-descending comparator on top when ranking.
func (t *NodeTable) AllowedNodes(resourceID string) []*NodeView {
	txn := t.db.Txn(false)
	it, err := txn.Get("nodeview", "resource", resourceID)
	if err != nil {
		return nil
	}
	var out []*NodeView
	for raw := it.Next(); raw != nil; raw = it.Next() {
		out = append(out, raw.(*NodeView))
	}
	return out
}

// ResetCounts zeroes the Count field of every view for resourceID and
// returns the number of nodes available under the relaxed predicate
// (strict=false).
func (t *NodeTable) ResetCounts(resourceID string, nodes map[string]*Node) uint32 {
	var available uint32
	txn := t.db.Txn(true)
	it, err := txn.Get("nodeview", "resource", resourceID)
	if err == nil {
		for raw := it.Next(); raw != nil; raw = it.Next() {
			v := raw.(*NodeView).Copy()
			v.Count = 0
			if err := txn.Insert("nodeview", v); err != nil {
				txn.Abort()
				panic(fmt.Sprintf("scheduler: node table reset: %v", err))
			}
			if n := nodes[v.NodeID]; n.Available(false, false) {
				available++
			}
		}
	}
	txn.Commit()
	return available
}

// Snapshot returns a deep copy of every view for resourceID, used by
// assignInstance to back up and restore allowed_nodes around a
// rejected preferred-node assignment.
func (t *NodeTable) Snapshot(resourceID string) []*NodeView {
	views := t.AllowedNodes(resourceID)
	out := make([]*NodeView, len(views))
	for i, v := range views {
		out[i] = v.Copy()
	}
	return out
}

// Restore replaces resourceID's rows with the given snapshot.
func (t *NodeTable) Restore(resourceID string, snapshot []*NodeView) {
	txn := t.db.Txn(true)
	it, err := txn.Get("nodeview", "resource", resourceID)
	if err == nil {
		var stale []*NodeView
		for raw := it.Next(); raw != nil; raw = it.Next() {
			stale = append(stale, raw.(*NodeView))
		}
		for _, v := range stale {
			_ = txn.Delete("nodeview", v)
		}
	}
	for _, v := range snapshot {
		if err := txn.Insert("nodeview", v.Copy()); err != nil {
			txn.Abort()
			panic(fmt.Sprintf("scheduler: node table restore: %v", err))
		}
	}
	txn.Commit()
}

// SetScore bans or re-scores a single (resourceID, nodeID) pair,
// creating the row if absent. Used for -∞ bans (ban cascade, collective
// limit reached, inhibited interleave pairing) and for colocation
// score application.
func (t *NodeTable) SetScore(resourceID, nodeID string, score Score) {
	v := t.Get(resourceID, nodeID)
	if v == nil {
		v = &NodeView{ResourceID: resourceID, NodeID: nodeID, Weight: score}
	} else {
		v = v.Copy()
		v.Weight = score
	}
	t.Put(v)
}

// ApplyScore adds delta to the existing weight (saturating), creating
// the row with delta as the initial weight if absent.
func (t *NodeTable) ApplyScore(resourceID, nodeID string, delta Score) {
	v := t.Get(resourceID, nodeID)
	if v == nil {
		t.SetScore(resourceID, nodeID, delta)
		return
	}
	t.SetScore(resourceID, nodeID, v.Weight.Add(delta))
}

// IncrementCount increments the count for (resourceID, nodeID) by one.
func (t *NodeTable) IncrementCount(resourceID, nodeID string) {
	v := t.Get(resourceID, nodeID)
	if v == nil {
		return
	}
	cp := v.Copy()
	cp.Count++
	t.Put(cp)
}
