package scheduler

// UpdatedMask reports which side(s) of an ordering update actually
// changed, mirroring the original's pcmk__updated_first/then bits.
type UpdatedMask uint8

const (
	UpdatedFirst UpdatedMask = 1 << iota
	UpdatedThen
)

func (m UpdatedMask) Any() bool { return m != 0 }

// Update is the ordering entry point: given a resolved ordering edge,
// decide whether it's interleave-eligible and dispatch to the matching
// propagation strategy.
func Update(ctx Context, first, then *Action, nodeID string, typ OrderingType) UpdatedMask {
	if interleaveEligible(first, then) {
		return interleavedPairing(ctx, first, then, nodeID, typ)
	}
	return updateOrderedActions(ctx, first, then, nodeID, typ)
}

// interleaveEligible runs the dispatch test: both sides must be
// resource-backed, distinct, at-least-clone, and the governing
// resource (determined by which side's uuid ends in _stop_0/_demote_0)
// must carry meta[interleave]=true.
func interleaveEligible(first, then *Action) bool {
	if first.Resource == nil || then.Resource == nil {
		return false
	}
	if first.Resource == then.Resource {
		return false
	}
	if !first.Resource.Variant.AtLeastClone() || !then.Resource.Variant.AtLeastClone() {
		return false
	}
	governing := then.Resource
	if then.EndsWith("_stop_0") || then.EndsWith("_demote_0") {
		governing = first.Resource
	}
	return governing.Interleave()
}

// interleavedPairing pairs each child of then's resource with a
// compatible child of first's resource by node, and propagates the
// ordering onto the paired actions.
func interleavedPairing(ctx Context, first, then *Action, nodeID string, typ OrderingType) UpdatedMask {
	var changed UpdatedMask
	current := first.EndsWith("_stopped_0") || first.EndsWith("_demoted_0")

	for _, thenChild := range then.Resource.ContainersOrChildren() {
		firstChild := findCompatibleChild(thenChild, first.Resource, RoleUnknown, current)
		if firstChild == nil {
			if current {
				continue
			}
			if typ&(OrderRunnableLeft|OrderImpliesThen) != 0 {
				thenChild.ws.Nodes.SetScore(thenChild.ID, nodeID, MinusInfinity)
				thenChild.Unassign()
				changed |= UpdatedThen
			}
			continue
		}

		firstTask := cloneChildTask(first)
		firstAction := resolveFirstChildAction(firstChild, firstTask, nodeID)
		thenAction := resolveThenChildAction(thenChild, then.Task, nodeID)

		if firstAction == nil {
			if !firstChild.HasFlag(FlagOrphan) && firstTask != TaskStop && firstTask != TaskDemote {
				ctx.Logger().Error("no action found for first side of interleave", "task", firstTask, "resource", firstChild.ID)
			}
			continue
		}
		if thenAction == nil {
			if !thenChild.HasFlag(FlagOrphan) && then.Task != TaskStop && then.Task != TaskDemote {
				ctx.Logger().Error("no action found for then side of interleave", "task", then.Task, "resource", thenChild.ID)
			}
			continue
		}

		if OrderActions(firstAction, thenAction, typ) {
			changed |= UpdatedFirst | UpdatedThen
		}
		updateOrderedActions(ctx, firstAction, thenAction, nodeID, typ)
	}
	return changed
}

// resolveFirstChildAction picks the child's own action for task, unless
// the child is a bundle container and task is stop or stopped, in which
// case the contained resource's action is the real ordering endpoint.
func resolveFirstChildAction(child *Resource, task Task, nodeID string) *Action {
	if contained := ResourceInContainer(child, nodeID); contained != nil {
		if task == TaskStop || task == TaskStopped {
			return FindFirstAction(contained.Actions, task, nodeID)
		}
	}
	return FindFirstAction(child.Actions, task, nodeID)
}

// resolveThenChildAction picks the child's own action for task, unless
// the child is a bundle container and task is promote, promoted, demote,
// or demoted, in which case the contained resource's action is the real
// ordering endpoint.
func resolveThenChildAction(child *Resource, task Task, nodeID string) *Action {
	if contained := ResourceInContainer(child, nodeID); contained != nil {
		switch task {
		case TaskPromote, TaskPromoted, TaskDemote, TaskDemoted:
			return FindFirstAction(contained.Actions, task, nodeID)
		}
	}
	return FindFirstAction(child.Actions, task, nodeID)
}

// cloneChildTask extracts the underlying task a notify/notified action
// is reporting about, the `clone_child_action` helper; for any other
// task it's the identity.
func cloneChildTask(a *Action) Task {
	if a.Task != TaskNotify && a.Task != TaskNotified {
		return a.Task
	}
	// Only a uuid containing '@' is parsed: the notified task is the
	// segment between the two rightmost underscores of the part before
	// '@' (e.g. "<rsc>_pre_notify_<task>_<interval>@<suffix>"). A uuid
	// without '@', such as the "<id>_<resource>_<task>_0" shape NewAction
	// generates, yields the action's own task.
	uuid := a.UUID
	parts := splitUUIDTask(uuid)
	if parts == "" {
		return a.Task
	}
	return Task(parts)
}

func splitUUIDTask(uuid string) string {
	atIdx := -1
	for i := len(uuid) - 1; i >= 0; i-- {
		if uuid[i] == '@' {
			atIdx = i
			break
		}
	}
	if atIdx <= 0 {
		return ""
	}
	body := uuid[:atIdx]
	lastUnderscore := -1
	for i := len(body) - 1; i >= 0; i-- {
		if body[i] == '_' {
			if lastUnderscore == -1 {
				lastUnderscore = i
				continue
			}
			return body[i+1 : lastUnderscore]
		}
	}
	return ""
}

// updateOrderedActions applies recursive primitive ordering: update
// the pair directly, then recurse into runnable
// children of then's resource carrying the same task, re-running
// propagation on any edge whose target changed.
func updateOrderedActions(ctx Context, first, then *Action, nodeID string, typ OrderingType) UpdatedMask {
	changed := updatePairFlags(first, then, typ)

	if then.Resource == nil {
		return changed
	}
	for _, thenChild := range then.Resource.ContainersOrChildren() {
		childAction := FindFirstAction(thenChild.Actions, then.Task, nodeID)
		if childAction == nil || !childAction.Runnable() {
			continue
		}
		childChanged := updateOrderedActions(ctx, first, childAction, nodeID, typ)
		changed |= childChanged
		if childChanged&UpdatedThen != 0 {
			for _, edge := range ActionsAfter(childAction) {
				updateOrderedActions(ctx, childAction, edge.Then, nodeID, edge.Flags)
			}
		}
	}
	return changed
}

// updatePairFlags applies an ordering type's immediate flag
// consequences to the pair — runnable_left propagates
// !first.runnable => !then.runnable, implies_then propagates
// !first.optional => !then.optional.
func updatePairFlags(first, then *Action, typ OrderingType) UpdatedMask {
	var changed UpdatedMask
	if typ&OrderRunnableLeft != 0 && !first.Runnable() && then.Runnable() {
		then.ClearFlag(ActionRunnable)
		changed |= UpdatedThen
	}
	if typ&OrderImpliesThen != 0 && first.Optional() == false && then.Optional() {
		then.ClearFlag(ActionOptional)
		changed |= UpdatedThen
	}
	return changed
}

// summaryActionFlags folds children's actions of the same task as
// action into a single summary flag set, clearing optional on
// the underlying action as soon as any child is mandatory, and clearing
// runnable on it (when node is unspecified) if no child is runnable.
func summaryActionFlags(action *Action, children []*Resource, nodeID string) ActionFlag {
	task := cloneChildTask(action)
	flags := ActionOptional | ActionRunnable | ActionPseudo
	anyRunnable := false

	for _, child := range children {
		childNode := nodeID
		if len(child.Children) > 0 {
			childNode = ""
		}
		childAction := FindFirstAction(child.Actions, task, childNode)
		if childAction == nil {
			continue
		}
		if flags&ActionOptional != 0 && !childAction.Optional() {
			flags &^= ActionOptional
			action.ClearFlag(ActionOptional)
		}
		if childAction.Runnable() {
			anyRunnable = true
		}
	}

	if !anyRunnable {
		flags &^= ActionRunnable
		if nodeID == "" {
			action.ClearFlag(ActionRunnable)
		}
	}
	return flags
}

// findCompatibleChild pairs localChild with a child of peer whose
// current location matches, preferring localChild's already
// resolved location, falling back to trying each of its allowed nodes
// in standard comparator order.
func findCompatibleChild(localChild, peer *Resource, roleFilter Role, current bool) *Resource {
	if loc := localChild.Location(current); loc != nil {
		return findCompatibleChildByNode(*loc, peer, roleFilter, current)
	}

	views := append([]*NodeView(nil), localChild.AllowedNodes()...)
	sortNodeViews(views)
	for _, v := range views {
		if pair := findCompatibleChildByNode(v.NodeID, peer, roleFilter, current); pair != nil {
			return pair
		}
	}
	return nil
}

func findCompatibleChildByNode(nodeID string, peer *Resource, roleFilter Role, current bool) *Resource {
	for _, child := range peer.ContainersOrChildren() {
		if isChildCompatible(child, nodeID, roleFilter, current) {
			return child
		}
	}
	return nil
}

// isChildCompatible gates both findCompatibleChildByNode and the
// interleave ignore path on location and not-blocked. roleFilter is
// accepted for call-site symmetry with the role-aware variant but
// unused until Resource carries a role to filter on; every caller
// today passes RoleUnknown.
func isChildCompatible(child *Resource, nodeID string, roleFilter Role, current bool) bool {
	if child.BlockedRecursive() {
		return false
	}
	loc := child.Location(current)
	return loc != nil && *loc == nodeID
}
