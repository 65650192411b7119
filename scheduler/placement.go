package scheduler

// AssignInstances assigns up to maxTotal instances of collective across
// their allowed nodes, honoring maxPerNode, colocation, stickiness, and
// availability. allowStandby controls whether preferredNode treats a
// standby current node as available for stickiness
// (EngineConfig.StrictAvailability clears it).
func AssignInstances(ctx Context, collective *Resource, instances []*Resource, maxTotal, maxPerNode uint32, allowStandby bool) {
	ws := ctx.WorkingSet()

	// Phase 0 — reset.
	availableNodes := ws.Nodes.ResetCounts(collective.ID, ws.nodes)
	if availableNodes == 0 {
		availableNodes = 1
	}
	optimalPerNode := maxTotal / availableNodes
	if optimalPerNode < 1 {
		optimalPerNode = 1
	}
	allColoc := maxTotal < availableNodes

	var assigned uint32

	// Phase 1 — early assignment to current node.
	for _, instance := range instances {
		if assigned >= maxTotal {
			break
		}
		copyParentColocations(ws, instance, allColoc)

		preferred := preferredNode(instance, optimalPerNode, allowStandby)
		if preferred != nil {
			if assignInstance(ctx, instance, preferred, maxPerNode) {
				assigned++
			}
		}
	}

	// Phase 2 — final assignment.
	for _, instance := range instances {
		if !instance.HasFlag(FlagProvisional) {
			continue
		}
		if assigned >= maxTotal {
			for _, v := range instance.AllowedNodes() {
				ws.Nodes.SetScore(instance.ID, v.NodeID, MinusInfinity)
			}
			continue
		}
		if assignInstance(ctx, instance, nil, maxPerNode) {
			assigned++
		}
	}
}

// preferredNode reports the node an instance should keep: its current
// node, iff it's active, provisional, not failed, the node is
// available under strict rules, and the top-allowed count hasn't
// reached optimalPerNode.
func preferredNode(instance *Resource, optimalPerNode uint32, allowStandby bool) *string {
	if instance.RunningOn.Size() == 0 {
		return nil
	}
	if !instance.HasFlag(FlagProvisional) || instance.HasFlag(FlagFailed) {
		return nil
	}
	current := instance.CurrentNode()
	if current == nil {
		return nil
	}
	node := instance.ws.Node(*current)
	if !node.Available(true, allowStandby) {
		return nil
	}
	top := TopAllowedNode(instance, *current)
	if top == nil || top.Count >= optimalPerNode {
		return nil
	}
	return current
}

// copyParentColocations copies the parent's outgoing ("this with
// other") and influential incoming ("other with this") colocation
// edges down onto instance, filtered to negative/mandatory edges
// unless allColoc permits all of them.
func copyParentColocations(ws *WorkingSet, instance *Resource, allColoc bool) {
	parent := instance.Parent
	if parent == nil {
		return
	}
	keep := func(score Score) bool {
		return allColoc || score.Negative() || score.IsPlusInfinity()
	}

	for _, c := range ws.Colocations.OutgoingFrom(parent.ID) {
		if !keep(c.Score) {
			continue
		}
		ws.Colocations.Add(&Colocation{
			ID:        c.ID + "@" + instance.ID,
			Source:    instance.ID,
			Target:    c.Target,
			Score:     c.Score,
			Influence: c.Influence,
		})
	}
	for _, c := range ws.Colocations.IncomingTo(parent.ID) {
		if !DefaultInfluence(c, instance) || !keep(c.Score) {
			continue
		}
		ws.Colocations.Add(&Colocation{
			ID:        c.ID + "@" + instance.ID,
			Source:    c.Source,
			Target:    instance.ID,
			Score:     c.Score,
			Influence: c.Influence,
		})
	}
}

// applyColocationScores folds instance's own "this-with" colocation
// edges into instance's view of every node the colocated target still
// allows. A +∞ edge bans every node the target doesn't allow
// (mandatory colocation); a -∞ edge bans every node the target does
// allow (mandatory anti-colocation); any other score is a saturating
// additive nudge toward the target's allowed nodes.
func applyColocationScores(ws *WorkingSet, instance *Resource) {
	for _, c := range ws.Colocations.OutgoingFrom(instance.ID) {
		target := ws.Resource(c.Target)
		if target == nil {
			continue
		}
		targetAllowed := make(map[string]bool, len(target.AllowedNodes()))
		for _, tv := range target.AllowedNodes() {
			targetAllowed[tv.NodeID] = !tv.Weight.Negative()
		}

		for _, v := range instance.AllowedNodes() {
			allowed := targetAllowed[v.NodeID]
			switch {
			case c.Score.IsPlusInfinity():
				if !allowed {
					ws.Nodes.SetScore(instance.ID, v.NodeID, MinusInfinity)
				}
			case c.Score.IsMinusInfinity():
				if allowed {
					ws.Nodes.SetScore(instance.ID, v.NodeID, MinusInfinity)
				}
			default:
				if allowed {
					ws.Nodes.ApplyScore(instance.ID, v.NodeID, c.Score)
				}
			}
		}
	}
}

// assignInstance assigns a single instance, trying prefer first.
func assignInstance(ctx Context, instance *Resource, prefer *string, maxPerNode uint32) bool {
	ws := ctx.WorkingSet()

	if !instance.HasFlag(FlagProvisional) {
		return instance.Location(false) != nil
	}
	if instance.HasFlag(FlagAllocating) {
		ctx.Logger().Warn("dependency cycle detected during placement", "resource", instance.ID)
		return false
	}
	instance.SetFlag(FlagAllocating)
	defer instance.ClearFlag(FlagAllocating)

	if prefer != nil {
		view := ws.Nodes.Get(instance.ID, *prefer)
		if view == nil || view.Weight.Negative() {
			return false
		}
	}

	snapshot := ws.Nodes.Snapshot(instance.ID)
	applyColocationScores(ws, instance)
	banUnavailableAllowedNodes(ws, instance, maxPerNode)

	chosen := instance.Assign(prefer)

	if prefer != nil && (chosen == nil || *chosen != *prefer) {
		ws.Nodes.Restore(instance.ID, snapshot)
		instance.Unassign()
		return false
	}
	if chosen == nil {
		return false
	}

	top := TopAllowedNode(instance, *chosen)
	if top == nil {
		ctx.Logger().Warn("no top-allowed node entry for managed instance", "resource", instance.ID, "node", *chosen)
		return true
	}
	ws.Nodes.IncrementCount(top.ResourceID, *chosen)
	return true
}

// banUnavailableAllowedNodes scores -∞ any allowed node that's
// orphaned, globally unavailable, missing a top-allowed mapping,
// capped out at the top level, or already at maxPerNode.
func banUnavailableAllowedNodes(ws *WorkingSet, instance *Resource, maxPerNode uint32) {
	for _, v := range instance.AllowedNodes() {
		ban := instance.HasFlag(FlagOrphan)
		if !ban {
			ban = !ws.Node(v.NodeID).Available(false, false)
		}
		var top *NodeView
		if !ban {
			top = TopAllowedNode(instance, v.NodeID)
			ban = top == nil
		}
		if !ban && top.Weight.Negative() {
			ban = true
		}
		if !ban && top.Count >= maxPerNode {
			ban = true
		}
		if ban {
			ws.Nodes.SetScore(instance.ID, v.NodeID, MinusInfinity)
		}
	}
}
