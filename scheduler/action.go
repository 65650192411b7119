package scheduler

import (
	"fmt"

	uuid "github.com/hashicorp/go-uuid"
)

// Task is the action verb. Names match the original's
// PCMK_ACTION_* constants (include/crm/common/actions.h).
type Task string

const (
	TaskMonitor  Task = "monitor"
	TaskStart    Task = "start"
	TaskStarted  Task = "started"
	TaskStop     Task = "stop"
	TaskStopped  Task = "stopped"
	TaskPromote  Task = "promote"
	TaskPromoted Task = "promoted"
	TaskDemote   Task = "demote"
	TaskDemoted  Task = "demoted"
	TaskNotify   Task = "notify"
	TaskNotified Task = "notified"
	TaskShutdown Task = "shutdown"
	TaskFence    Task = "fence"
)

// ActionFlag is one bit of an action's flag set.
type ActionFlag uint32

const (
	ActionOptional ActionFlag = 1 << iota
	ActionRunnable
	ActionPseudo
	ActionMigrateRunnable
)

// Priority is an action's tie-break priority. PlusInfinity marks
// `started`/`stopped` pseudo-actions.
type Priority = Score

// Action is (resource, task, node?, flags, uuid). NodeID is
// empty for an action that isn't pinned to a particular node (a
// collective's summary action, a pure pseudo-action).
type Action struct {
	UUID     string
	Resource *Resource
	Task     Task
	NodeID   string
	flags    ActionFlag
	Priority Priority

	actionsAfter []*actionEdge
}

type actionEdge struct {
	Then    *Action
	Flags   OrderingFlag
	ordType OrderingType
}

// NewAction creates an action for resource/task, generating a stable
// UUID the way `helper/uuid`-style generators do.
func NewAction(resource *Resource, task Task, nodeID string) *Action {
	id, err := uuid.GenerateUUID()
	if err != nil {
		// go-uuid only fails if the system CSPRNG is unavailable; that
		// is an environment fault, not a condition this core recovers
		// from, so surface it the same way an invariant break would.
		panic(fmt.Sprintf("scheduler: generating action uuid: %v", err))
	}
	a := &Action{
		UUID:     fmt.Sprintf("%s_%s_%s_0", id, resource.ID, task),
		Resource: resource,
		Task:     task,
		NodeID:   nodeID,
		Priority: Zero,
	}
	resource.Actions = append(resource.Actions, a)
	return a
}

func (a *Action) HasFlag(f ActionFlag) bool { return a.flags&f != 0 }
func (a *Action) SetFlag(f ActionFlag)      { a.flags |= f }
func (a *Action) ClearFlag(f ActionFlag)    { a.flags &^= f }

func (a *Action) Optional() bool  { return a.HasFlag(ActionOptional) }
func (a *Action) Runnable() bool  { return a.HasFlag(ActionRunnable) }
func (a *Action) Pseudo() bool    { return a.HasFlag(ActionPseudo) }

// EndsWith reports whether the action's uuid ends with suffix, the
// string test used to identify which side of an ordering governs
// interleave eligibility (`_stop_0`/`_demote_0`) and which side counts
// as "current" (`_stopped_0`/`_demoted_0`).
func (a *Action) EndsWith(suffix string) bool {
	n := len(a.UUID)
	m := len(suffix)
	return n >= m && a.UUID[n-m:] == suffix
}

// FindFirstAction returns the first action in actions matching task
// (and, if nodeID is non-empty, pinned to that node) — the
// `find_first_action` helper used throughout ordering propagation.
func FindFirstAction(actions []*Action, task Task, nodeID string) *Action {
	for _, a := range actions {
		if a.Task != task {
			continue
		}
		if nodeID != "" && a.NodeID != nodeID {
			continue
		}
		return a
	}
	return nil
}

// OrderingFlag is one bit of an ordering edge's flag set.
type OrderingFlag uint32

const (
	OrderRunnableLeft OrderingFlag = 1 << iota
	OrderImpliesThen
	OrderOptional
)

// OrderingType groups OrderingFlags that apply to a single `update`
// call.
type OrderingType = OrderingFlag

// Endpoint identifies one side of an ordering: a specific action if
// known, or a (resourceID, task) pair to resolve against the working
// set when the action hasn't been created yet.
type Endpoint struct {
	ResourceID string
	Task       Task
	Action     *Action
}

// Ordering is a tuple (first, then, node?, type).
type Ordering struct {
	First  Endpoint
	Then   Endpoint
	NodeID string
	Type   OrderingType
}

func (o *Ordering) id() string {
	return fmt.Sprintf("%s/%s->%s/%s", o.First.ResourceID, o.First.Task, o.Then.ResourceID, o.Then.Task)
}

// OrderActions adds a de-duplicated edge first->then with the given
// type into first's actions_after list. Returns true if a new
// edge was added or an existing edge gained flags it lacked.
func OrderActions(first, then *Action, typ OrderingType) bool {
	if first == nil || then == nil || first == then {
		return false
	}
	for _, e := range first.actionsAfter {
		if e.Then == then {
			if e.Flags&typ == typ {
				return false // already present with at least these flags
			}
			e.Flags |= typ
			return true
		}
	}
	first.actionsAfter = append(first.actionsAfter, &actionEdge{Then: then, Flags: typ, ordType: typ})
	return true
}

// ActionsAfter exposes the edges leaving action a, used by ordering.go
// when re-running propagation on a changed action's outgoing edges.
func ActionsAfter(a *Action) []*actionEdge { return a.actionsAfter }
