package scheduler

import (
	"strings"

	"github.com/hashicorp/go-set/v3"
)

// Variant is the resource kind, a tagged union standing in for the
// source's virtual-method dispatch on {primitive, group, clone,
// bundle}.
type Variant int

const (
	VariantPrimitive Variant = iota
	VariantGroup
	VariantClone
	VariantBundle
)

// IsCollective reports whether the variant has children placed as
// multiple instances (clone or bundle), the "instance" abstraction C5
// operates over.
func (v Variant) IsCollective() bool { return v == VariantClone || v == VariantBundle }

// AtLeastClone reports whether v is clone-or-more-complex, used by the
// interleave-eligibility check ("both at least clone-variant").
func (v Variant) AtLeastClone() bool { return v >= VariantClone }

func (v Variant) String() string {
	switch v {
	case VariantPrimitive:
		return "primitive"
	case VariantGroup:
		return "group"
	case VariantClone:
		return "clone"
	case VariantBundle:
		return "bundle"
	default:
		return "unknown"
	}
}

// Flag is one bit of a resource's flag set.
type Flag uint32

const (
	FlagOrphan Flag = 1 << iota
	FlagProvisional
	FlagAllocating
	FlagManaged
	FlagFailed
	FlagBlock
)

// Role is a resource's promotable-clone role, used by the
// role_filter in compatibility search.
type Role int

const (
	RoleUnknown Role = iota
	RoleStopped
	RoleStarted
	RoleUnpromoted
	RolePromoted
)

// Resource is one node in the working-set tree. allowed_nodes is
// not stored inline; it lives in the owning WorkingSet's NodeTable,
// keyed by this resource's ID.
type Resource struct {
	ID      string
	Variant Variant
	flags   Flag
	Meta    map[string]string

	Parent   *Resource
	Children []*Resource

	// IsContainer/Contained model a bundle replica: the container
	// resource itself, plus the primitive it hosts.
	IsContainer bool
	Contained   *Resource

	RunningOn *set.Set[string] // node ids the resource is currently active on
	chosen    *string          // node id picked this round, nil if unplaced

	Actions []*Action

	ws *WorkingSet
}

// NewResource constructs a resource bound to a working set. Binding at
// construction time (rather than passing ws through every call) keeps
// the call signatures in placement.go/ordering.go close to the C
// originals' `pe_resource_t *rsc` single-argument style.
func NewResource(ws *WorkingSet, id string, variant Variant) *Resource {
	assertf(ws != nil, "NewResource(%q): working set must not be nil", id)
	return &Resource{
		ID:        id,
		Variant:   variant,
		Meta:      make(map[string]string),
		RunningOn: set.New[string](0),
		flags:     FlagProvisional | FlagManaged,
		ws:        ws,
	}
}

func (r *Resource) HasFlag(f Flag) bool  { return r.flags&f != 0 }
func (r *Resource) SetFlag(f Flag)       { r.flags |= f }
func (r *Resource) ClearFlag(f Flag)     { r.flags &^= f }

// Interleave reports the resource's meta[interleave] setting.
func (r *Resource) Interleave() bool {
	v, ok := r.Meta["interleave"]
	return ok && strings.EqualFold(v, "true")
}

// BlockedRecursive implements the "not blocked" check: a resource is
// excluded from compatibility search if it, or anything in its
// subtree, carries FlagBlock.
func (r *Resource) BlockedRecursive() bool {
	if r.HasFlag(FlagBlock) {
		return true
	}
	for _, c := range r.Children {
		if c.BlockedRecursive() {
			return true
		}
	}
	return false
}

// Location returns the node id the resource occupies: its chosen
// placement if assigned this round, or (when current is true and
// nothing has been chosen yet) the node it is currently running on if
// it is running on exactly one node. Ambiguous multi-node running_on
// (e.g. during a move) has no single "current" location.
func (r *Resource) Location(current bool) *string {
	if r.chosen != nil {
		return r.chosen
	}
	if current && r.RunningOn.Size() == 1 {
		id := r.RunningOn.Slice()[0]
		return &id
	}
	return nil
}

// CurrentNode is the node the instance is running on, used by
// preferredNode, which only ever looks at the live location, not a
// not-yet-made assignment.
func (r *Resource) CurrentNode() *string {
	if r.RunningOn.Size() != 1 {
		return nil
	}
	id := r.RunningOn.Slice()[0]
	return &id
}

// AllowedNodes returns this resource's per-resource node views.
func (r *Resource) AllowedNodes() []*NodeView {
	return r.ws.Nodes.AllowedNodes(r.ID)
}

// TopAllowedNode walks the parent chain to the outermost ancestor and
// returns that ancestor's view of nodeID — the "top-allowed node" used
// to enforce per-host caps across every instance of a collective.
func TopAllowedNode(r *Resource, nodeID string) *NodeView {
	top := r
	for top.Parent != nil {
		top = top.Parent
	}
	return top.ws.Nodes.Get(top.ID, nodeID)
}

// Assign performs the resource's native node choice
// (`instance->cmds->assign(prefer?)`): pick the highest-scoring
// non-banned allowed node, preferring `prefer` if it is itself
// non-banned and present. Ties break via the standard comparator.
// Returns the chosen node id, or nil if nothing is assignable.
func (r *Resource) Assign(prefer *string) *string {
	if !r.HasFlag(FlagProvisional) {
		return r.Location(false)
	}
	views := r.AllowedNodes()
	if len(views) == 0 {
		return nil
	}

	if prefer != nil {
		for _, v := range views {
			if v.NodeID == *prefer && !v.Weight.Banned() {
				r.placeOn(*prefer)
				return prefer
			}
		}
	}

	best := newAssignStack(views).Select()
	if best == nil {
		return nil
	}
	r.placeOn(best.NodeID)
	return &best.NodeID
}

func (r *Resource) placeOn(nodeID string) {
	r.chosen = &nodeID
	r.ClearFlag(FlagProvisional)
}

// Unassign reverts a tentative placement, restoring provisional state
// (used by assignInstance's preferred-node rollback).
func (r *Resource) Unassign() {
	r.chosen = nil
	r.SetFlag(FlagProvisional)
}

// ContainersOrChildren returns bundle containers for a bundle, or
// plain children otherwise — the `get_containers_or_children` helper
// used throughout interleave pairing.
func (r *Resource) ContainersOrChildren() []*Resource {
	return r.Children
}

// ResourceInContainer returns the primitive hosted by a bundle
// container on the given node, or nil if r is not a container (or
// hosts nothing on that node). Grounds the "containerized resource"
// substitution for stop/stopped and promote/demote tasks.
func ResourceInContainer(r *Resource, nodeID string) *Resource {
	if !r.IsContainer || r.Contained == nil {
		return nil
	}
	if loc := r.Contained.Location(false); loc == nil || *loc != nodeID {
		return nil
	}
	return r.Contained
}
