package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckInstanceState_ActiveOnly(t *testing.T) {
	ws := NewWorkingSet()
	r := NewResource(ws, "r1", VariantPrimitive)
	r.RunningOn.Insert("n1")

	state := CheckInstanceState(r)
	require.True(t, state.Active())
	require.False(t, state.Starting())
	require.False(t, state.Stopping())
	require.False(t, state.Restarting())
}

func TestCheckInstanceState_StartingFromNonOptionalRunnableStart(t *testing.T) {
	ws := NewWorkingSet()
	r := NewResource(ws, "r1", VariantPrimitive)
	start := NewAction(r, TaskStart, "n1")
	start.SetFlag(ActionRunnable)

	state := CheckInstanceState(r)
	require.True(t, state.Starting())
}

func TestCheckInstanceState_OptionalStartDoesNotCount(t *testing.T) {
	ws := NewWorkingSet()
	r := NewResource(ws, "r1", VariantPrimitive)
	start := NewAction(r, TaskStart, "n1")
	start.SetFlag(ActionRunnable)
	start.SetFlag(ActionOptional)

	require.False(t, CheckInstanceState(r).Starting())
}

func TestCheckInstanceState_PseudoStopCountsAsStopping(t *testing.T) {
	ws := NewWorkingSet()
	r := NewResource(ws, "r1", VariantPrimitive)
	stop := NewAction(r, TaskStop, "n1")
	stop.SetFlag(ActionPseudo)

	require.True(t, CheckInstanceState(r).Stopping())
}

func TestCheckInstanceState_RestartingWhenBothStartAndStop(t *testing.T) {
	ws := NewWorkingSet()
	r := NewResource(ws, "r1", VariantPrimitive)
	start := NewAction(r, TaskStart, "n1")
	start.SetFlag(ActionRunnable)
	stop := NewAction(r, TaskStop, "n1")
	stop.SetFlag(ActionRunnable)

	state := CheckInstanceState(r)
	require.True(t, state.Starting())
	require.True(t, state.Stopping())
	require.True(t, state.Restarting())
}

func TestCheckInstanceState_RecursesIntoChildren(t *testing.T) {
	ws := NewWorkingSet()
	clone := NewResource(ws, "clone", VariantClone)
	child := NewResource(ws, "child", VariantPrimitive)
	child.Parent = clone
	clone.Children = append(clone.Children, child)
	child.RunningOn.Insert("n1")

	require.True(t, CheckInstanceState(clone).Active())
}

func TestCheckInstanceState_SiblingsDoNotCombineIntoRestarting(t *testing.T) {
	ws := NewWorkingSet()
	group := NewResource(ws, "group", VariantGroup)

	startingOnly := NewResource(ws, "starting-only", VariantPrimitive)
	startingOnly.Parent = group
	start := NewAction(startingOnly, TaskStart, "n1")
	start.SetFlag(ActionRunnable)

	stoppingOnly := NewResource(ws, "stopping-only", VariantPrimitive)
	stoppingOnly.Parent = group
	stop := NewAction(stoppingOnly, TaskStop, "n1")
	stop.SetFlag(ActionRunnable)

	group.Children = append(group.Children, startingOnly, stoppingOnly)

	state := CheckInstanceState(group)
	require.True(t, state.Starting(), "one child is starting")
	require.True(t, state.Stopping(), "the other child is stopping")
	require.False(t, state.Restarting(), "restarting only applies when one primitive does both, not two unrelated siblings")
}
