package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNode_Available(t *testing.T) {
	online := &Node{ID: "n1", Status: NodeOnline}
	require.True(t, online.Available(false, false))
	require.True(t, online.Available(true, false))

	standby := &Node{ID: "n2", Status: NodeStandby}
	require.True(t, standby.Available(false, false), "standby counts as available under the relaxed predicate")
	require.False(t, standby.Available(true, false))
	require.True(t, standby.Available(true, true))

	offline := &Node{ID: "n3", Status: NodeOffline}
	require.False(t, offline.Available(false, false))

	shadow := &Node{ID: "n4", Status: NodeOnline, Shadow: true}
	require.False(t, shadow.Available(false, false))

	var nilNode *Node
	require.False(t, nilNode.Available(false, false))
}

func TestNodeTable_PutGetAllowedNodes_SortedByIndex(t *testing.T) {
	table := NewNodeTable()
	table.Put(&NodeView{ResourceID: "r1", NodeID: "c", Weight: Finite(1)})
	table.Put(&NodeView{ResourceID: "r1", NodeID: "a", Weight: Finite(2)})
	table.Put(&NodeView{ResourceID: "r1", NodeID: "b", Weight: Finite(3)})
	table.Put(&NodeView{ResourceID: "r2", NodeID: "a", Weight: Finite(9)})

	views := table.AllowedNodes("r1")
	require.Len(t, views, 3)
	ids := []string{views[0].NodeID, views[1].NodeID, views[2].NodeID}
	require.Equal(t, []string{"a", "b", "c"}, ids, "memdb index iteration must be deterministic")
}

func TestNodeTable_ResetCounts(t *testing.T) {
	table := NewNodeTable()
	table.Put(&NodeView{ResourceID: "r1", NodeID: "a", Weight: Finite(1), Count: 4})
	table.Put(&NodeView{ResourceID: "r1", NodeID: "b", Weight: Finite(1), Count: 2})

	nodes := map[string]*Node{
		"a": {ID: "a", Status: NodeOnline},
		"b": {ID: "b", Status: NodeOffline},
	}
	available := table.ResetCounts("r1", nodes)
	require.Equal(t, uint32(1), available)
	require.Equal(t, uint32(0), table.Get("r1", "a").Count)
	require.Equal(t, uint32(0), table.Get("r1", "b").Count)
}

func TestNodeTable_SnapshotRestore(t *testing.T) {
	table := NewNodeTable()
	table.Put(&NodeView{ResourceID: "r1", NodeID: "a", Weight: Finite(5)})

	snap := table.Snapshot("r1")
	table.SetScore("r1", "a", MinusInfinity)
	require.True(t, table.Get("r1", "a").Weight.Banned())

	table.Restore("r1", snap)
	require.Equal(t, Finite(5), table.Get("r1", "a").Weight)
}

func TestNodeTable_ApplyScore_CreatesRowIfAbsent(t *testing.T) {
	table := NewNodeTable()
	table.ApplyScore("r1", "a", Finite(10))
	require.Equal(t, Finite(10), table.Get("r1", "a").Weight)

	table.ApplyScore("r1", "a", Finite(-3))
	require.Equal(t, Finite(7), table.Get("r1", "a").Weight)
}

func TestNodeTable_IncrementCount(t *testing.T) {
	table := NewNodeTable()
	table.Put(&NodeView{ResourceID: "r1", NodeID: "a", Weight: Finite(1)})
	table.IncrementCount("r1", "a")
	table.IncrementCount("r1", "a")
	require.Equal(t, uint32(2), table.Get("r1", "a").Count)
}
