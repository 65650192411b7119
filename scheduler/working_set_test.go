package scheduler

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
)

func TestWorkingSet_Validate_NoRoot(t *testing.T) {
	ws := NewWorkingSet()
	err := ws.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "no root resource")
}

func TestWorkingSet_Validate_UnknownOrderingResource(t *testing.T) {
	ws := NewWorkingSet()
	ws.Root = NewResource(ws, "root", VariantPrimitive)
	ws.AddResource(ws.Root)
	ws.Orderings = append(ws.Orderings, &Ordering{
		First: Endpoint{ResourceID: "missing-1", Task: TaskStop},
		Then:  Endpoint{ResourceID: "root", Task: TaskStart},
	})

	err := ws.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing-1")
}

func TestWorkingSet_Validate_UnknownColocationTarget(t *testing.T) {
	ws := NewWorkingSet()
	ws.Root = NewResource(ws, "root", VariantPrimitive)
	ws.AddResource(ws.Root)
	ws.Colocations.Add(&Colocation{ID: "c1", Source: "root", Target: "ghost"})

	err := ws.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "ghost")
}

func TestWorkingSet_Validate_AggregatesMultipleErrors(t *testing.T) {
	ws := NewWorkingSet()
	ws.Root = NewResource(ws, "root", VariantPrimitive)
	ws.AddResource(ws.Root)
	ws.Orderings = append(ws.Orderings,
		&Ordering{First: Endpoint{ResourceID: "missing-1"}, Then: Endpoint{ResourceID: "root"}},
		&Ordering{First: Endpoint{ResourceID: "root"}, Then: Endpoint{ResourceID: "missing-2"}},
	)

	err := ws.Validate()
	require.Error(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok, "Validate aggregates with go-multierror")
	require.Len(t, merr.Errors, 2)
}

func TestWorkingSet_Validate_Clean(t *testing.T) {
	ws := NewWorkingSet()
	ws.Root = NewResource(ws, "root", VariantPrimitive)
	ws.AddResource(ws.Root)
	require.NoError(t, ws.Validate())
}

func TestWorkingSet_AddResource_RecursesIntoChildrenAndContained(t *testing.T) {
	ws := NewWorkingSet()
	container := NewResource(ws, "bundle-1", VariantBundle)
	contained := NewResource(ws, "service-1", VariantPrimitive)
	container.Contained = contained
	child := NewResource(ws, "child-1", VariantPrimitive)
	container.Children = append(container.Children, child)

	ws.Root = container
	ws.AddResource(container)

	require.Same(t, contained, ws.Resource("service-1"))
	require.Same(t, child, ws.Resource("child-1"))
}

func TestWorkingSet_SetAllowed(t *testing.T) {
	ws := NewWorkingSet()
	ws.SetAllowed("r1", "n1", Finite(42))
	view := ws.Nodes.Get("r1", "n1")
	require.NotNil(t, view)
	require.Equal(t, Finite(42), view.Weight)
}

func TestWorkingSet_AddNodeAndNode(t *testing.T) {
	ws := NewWorkingSet()
	ws.AddNode(&Node{ID: "n1", Status: NodeOnline})
	require.Equal(t, NodeOnline, ws.Node("n1").Status)
	require.Nil(t, ws.Node("missing"))
}
