package scheduler

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func TestInterleaveEligible_RequiresAtLeastCloneAndInterleaveMeta(t *testing.T) {
	ws := NewWorkingSet()
	primitiveA := NewResource(ws, "a", VariantPrimitive)
	primitiveB := NewResource(ws, "b", VariantPrimitive)
	require.False(t, interleaveEligible(NewAction(primitiveA, TaskStop, "n1"), NewAction(primitiveB, TaskStart, "n1")))

	cloneA := NewResource(ws, "clone-a", VariantClone)
	cloneB := NewResource(ws, "clone-b", VariantClone)
	first := NewAction(cloneA, TaskStop, "n1")
	then := NewAction(cloneB, TaskStart, "n1")
	require.False(t, interleaveEligible(first, then), "governing side (then, since then doesn't end in _stop_0/_demote_0) has no interleave meta")

	cloneB.Meta["interleave"] = "true"
	require.True(t, interleaveEligible(first, then))
}

func TestInterleaveEligible_GoverningSideFollowsUUIDSuffix(t *testing.T) {
	ws := NewWorkingSet()
	cloneA := NewResource(ws, "clone-a", VariantClone)
	cloneB := NewResource(ws, "clone-b", VariantClone)

	// then's uuid ends in _stop_0, so first's resource governs.
	first := NewAction(cloneA, TaskStart, "n1")
	then := NewAction(cloneB, TaskStop, "n1")
	require.False(t, interleaveEligible(first, then))

	cloneA.Meta["interleave"] = "true"
	require.True(t, interleaveEligible(first, then))
}

func TestInterleaveEligible_SameResourceNeverEligible(t *testing.T) {
	ws := NewWorkingSet()
	cloneA := NewResource(ws, "clone-a", VariantClone)
	cloneA.Meta["interleave"] = "true"
	first := NewAction(cloneA, TaskStop, "n1")
	then := NewAction(cloneA, TaskStart, "n1")
	require.False(t, interleaveEligible(first, then))
}

func TestIsChildCompatible_MatchesLocationOnly(t *testing.T) {
	ws := NewWorkingSet()
	child := NewResource(ws, "child-1", VariantPrimitive)
	require.False(t, isChildCompatible(child, "n1", RoleUnknown, false), "unplaced child matches nothing")

	child.placeOn("n1")
	require.True(t, isChildCompatible(child, "n1", RoleUnknown, false))
	require.False(t, isChildCompatible(child, "n2", RoleUnknown, false))
}

func TestIsChildCompatible_ExcludesBlocked(t *testing.T) {
	ws := NewWorkingSet()
	child := NewResource(ws, "child-1", VariantPrimitive)
	child.placeOn("n1")
	child.SetFlag(FlagBlock)
	require.False(t, isChildCompatible(child, "n1", RoleUnknown, false))
}

func TestFindCompatibleChildByNode(t *testing.T) {
	ws := NewWorkingSet()
	peer := NewResource(ws, "peer-clone", VariantClone)
	childA := NewResource(ws, "peer-child-a", VariantPrimitive)
	childA.Parent = peer
	childB := NewResource(ws, "peer-child-b", VariantPrimitive)
	childB.Parent = peer
	peer.Children = []*Resource{childA, childB}
	childB.placeOn("n2")

	match := findCompatibleChildByNode("n2", peer, RoleUnknown, false)
	require.Same(t, childB, match)
	require.Nil(t, findCompatibleChildByNode("n3", peer, RoleUnknown, false))
}

func TestFindCompatibleChild_UsesLocalLocationFirst(t *testing.T) {
	ws := NewWorkingSet()
	local := NewResource(ws, "local-child", VariantPrimitive)
	local.placeOn("n1")

	peer := NewResource(ws, "peer-clone", VariantClone)
	peerChild := NewResource(ws, "peer-child", VariantPrimitive)
	peerChild.Parent = peer
	peer.Children = []*Resource{peerChild}
	peerChild.placeOn("n1")

	require.Same(t, peerChild, findCompatibleChild(local, peer, RoleUnknown, false))
}

func TestFindCompatibleChild_FallsBackToAllowedNodes(t *testing.T) {
	ws := NewWorkingSet()
	local := NewResource(ws, "local-child", VariantPrimitive)
	ws.SetAllowed(local.ID, "n2", Finite(10))
	ws.SetAllowed(local.ID, "n1", Finite(5))

	peer := NewResource(ws, "peer-clone", VariantClone)
	peerChild := NewResource(ws, "peer-child", VariantPrimitive)
	peerChild.Parent = peer
	peer.Children = []*Resource{peerChild}
	peerChild.placeOn("n1")

	// local isn't placed yet, so the search walks its allowed nodes; n1
	// is the only one with a matching peer child regardless of order.
	require.Same(t, peerChild, findCompatibleChild(local, peer, RoleUnknown, false))
}

func TestCloneChildTask_PassesThroughNonNotifyTasks(t *testing.T) {
	ws := NewWorkingSet()
	r := NewResource(ws, "r1", VariantPrimitive)
	a := NewAction(r, TaskStop, "n1")
	require.Equal(t, TaskStop, cloneChildTask(a))
}

func TestCloneChildTask_ExtractsUnderlyingTaskFromNotifyUUID(t *testing.T) {
	ws := NewWorkingSet()
	r := NewResource(ws, "r1", VariantPrimitive)
	a := NewAction(r, TaskNotify, "n1")
	// splitUUIDTask takes the segment between the two rightmost
	// underscores in the part before '@', which in a notify uuid is the
	// task being notified about.
	a.UUID = "r1_pre_notify_stop_0@some-generated-id"
	require.Equal(t, TaskStop, cloneChildTask(a))
}

func TestSplitUUIDTask_NoAtSignReturnsEmpty(t *testing.T) {
	require.Equal(t, "", splitUUIDTask("no-at-sign-here"))
}

func TestUpdatePairFlags_RunnableLeftPropagates(t *testing.T) {
	ws := NewWorkingSet()
	r1 := NewResource(ws, "r1", VariantPrimitive)
	r2 := NewResource(ws, "r2", VariantPrimitive)
	first := NewAction(r1, TaskStop, "n1")
	then := NewAction(r2, TaskStart, "n1")
	then.SetFlag(ActionRunnable)

	changed := updatePairFlags(first, then, OrderRunnableLeft)
	require.Equal(t, UpdatedThen, changed)
	require.False(t, then.Runnable())
}

func TestUpdatePairFlags_RunnableLeftNoopWhenFirstAlreadyRunnable(t *testing.T) {
	ws := NewWorkingSet()
	r1 := NewResource(ws, "r1", VariantPrimitive)
	r2 := NewResource(ws, "r2", VariantPrimitive)
	first := NewAction(r1, TaskStop, "n1")
	first.SetFlag(ActionRunnable)
	then := NewAction(r2, TaskStart, "n1")
	then.SetFlag(ActionRunnable)

	changed := updatePairFlags(first, then, OrderRunnableLeft)
	require.False(t, changed.Any())
	require.True(t, then.Runnable())
}

func TestUpdatePairFlags_ImpliesThenClearsOptional(t *testing.T) {
	ws := NewWorkingSet()
	r1 := NewResource(ws, "r1", VariantPrimitive)
	r2 := NewResource(ws, "r2", VariantPrimitive)
	first := NewAction(r1, TaskStop, "n1")
	then := NewAction(r2, TaskStart, "n1")
	then.SetFlag(ActionOptional)

	changed := updatePairFlags(first, then, OrderImpliesThen)
	require.Equal(t, UpdatedThen, changed)
	require.False(t, then.Optional())
}

func TestSummaryActionFlags_ClearsOptionalWhenAnyChildMandatory(t *testing.T) {
	ws := NewWorkingSet()
	clone := NewResource(ws, "clone-1", VariantClone)
	childA := NewResource(ws, "child-a", VariantPrimitive)
	childA.Parent = clone
	childB := NewResource(ws, "child-b", VariantPrimitive)
	childB.Parent = clone
	clone.Children = []*Resource{childA, childB}

	summary := NewAction(clone, TaskStart, "")
	summary.SetFlag(ActionOptional)
	childA.flags |= 0 // no-op, keep childA's start optional
	startA := NewAction(childA, TaskStart, "n1")
	startA.SetFlag(ActionOptional)
	startB := NewAction(childB, TaskStart, "n1")
	startB.SetFlag(ActionRunnable) // mandatory: no ActionOptional flag

	summaryActionFlags(summary, clone.Children, "n1")
	require.False(t, summary.Optional(), "a single mandatory child clears the summary's optional flag")
}

func TestSummaryActionFlags_ClearsRunnableWhenNoChildRunnable(t *testing.T) {
	ws := NewWorkingSet()
	clone := NewResource(ws, "clone-1", VariantClone)
	child := NewResource(ws, "child-a", VariantPrimitive)
	child.Parent = clone
	clone.Children = []*Resource{child}

	summary := NewAction(clone, TaskStart, "")
	summary.SetFlag(ActionRunnable)
	NewAction(child, TaskStart, "n1") // not runnable

	summaryActionFlags(summary, clone.Children, "")
	require.False(t, summary.Runnable())
}

func TestUpdateOrderedActions_PropagatesIntoRunnableChildren(t *testing.T) {
	ws := NewWorkingSet()
	logger := hclog.NewNullLogger()
	ctx := NewEvalContext(ws, logger)

	upstream := NewResource(ws, "upstream", VariantPrimitive)
	clone := NewResource(ws, "clone-1", VariantClone)
	child := NewResource(ws, "child-1", VariantPrimitive)
	child.Parent = clone
	clone.Children = []*Resource{child}

	first := NewAction(upstream, TaskStop, "n1")
	then := NewAction(clone, TaskStart, "n1")
	then.SetFlag(ActionRunnable)
	childStart := NewAction(child, TaskStart, "n1")
	childStart.SetFlag(ActionRunnable)

	changed := updateOrderedActions(ctx, first, then, "n1", OrderRunnableLeft)
	require.True(t, changed.Any())
	require.False(t, then.Runnable())
	require.False(t, childStart.Runnable(), "the child's own start is propagated to when the parent's summary action is cleared")
}

func TestUpdate_DispatchesToInterleavedPairingWhenEligible(t *testing.T) {
	ws := NewWorkingSet()
	logger := hclog.NewNullLogger()
	ctx := NewEvalContext(ws, logger)

	cloneA := NewResource(ws, "clone-a", VariantClone)
	cloneA.Meta["interleave"] = "true"
	childA := NewResource(ws, "child-a", VariantPrimitive)
	childA.Parent = cloneA
	cloneA.Children = []*Resource{childA}
	childA.placeOn("n1")
	stopA := NewAction(childA, TaskStop, "n1")

	cloneB := NewResource(ws, "clone-b", VariantClone)
	cloneB.Meta["interleave"] = "true" // then is a start, so then's resource governs
	childB := NewResource(ws, "child-b", VariantPrimitive)
	childB.Parent = cloneB
	cloneB.Children = []*Resource{childB}
	childB.placeOn("n1")
	startB := NewAction(childB, TaskStart, "n1")

	first := NewAction(cloneA, TaskStop, "n1")
	then := NewAction(cloneB, TaskStart, "n1")

	Update(ctx, first, then, "n1", OrderRunnableLeft)

	require.Len(t, stopA.actionsAfter, 1, "interleave pairing wires the paired children's own actions, not the summary actions")
	require.Same(t, startB, stopA.actionsAfter[0].Then)
}
