package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/oishikohei/pacemaker/scheduler"
)

// snapshotDoc is the JSON shape pacemakerctl run/validate consume: a
// flattened rendering of a scheduler.WorkingSet, since the core itself
// takes no opinion on wire format — CIB/XML parsing is out of scope
// for the engine.
type snapshotDoc struct {
	Nodes       []nodeDoc       `json:"nodes"`
	Resources   []resourceDoc   `json:"resources"`
	Colocations []colocationDoc `json:"colocations"`
	Orderings   []orderingDoc   `json:"orderings"`
}

type nodeDoc struct {
	ID     string `json:"id"`
	Status string `json:"status"` // online, standby, offline, fencing
	Shadow bool   `json:"shadow"`
}

type allowedNodeDoc struct {
	Node   string          `json:"node"`
	Weight json.RawMessage `json:"weight"` // integer, "+inf", or "-inf"
}

type resourceDoc struct {
	ID           string            `json:"id"`
	Variant      string            `json:"variant"` // primitive, group, clone, bundle
	Meta         map[string]string `json:"meta"`
	RunningOn    []string          `json:"runningOn"`
	AllowedNodes []allowedNodeDoc  `json:"allowedNodes"`
	Children     []resourceDoc     `json:"children"`
	IsContainer  bool              `json:"isContainer"`
	Contained    *resourceDoc      `json:"contained"`
}

type colocationDoc struct {
	ID        string          `json:"id"`
	Source    string          `json:"source"`
	Target    string          `json:"target"`
	Score     json.RawMessage `json:"score"`
	Influence bool            `json:"influence"`
}

type orderingDoc struct {
	FirstResource string   `json:"firstResource"`
	FirstTask     string   `json:"firstTask"`
	ThenResource  string   `json:"thenResource"`
	ThenTask      string   `json:"thenTask"`
	Node          string   `json:"node"`
	Type          []string `json:"type"` // runnable_left, implies_then, optional
}

func loadWorkingSet(path string) (*scheduler.WorkingSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot %s: %w", path, err)
	}
	defer f.Close()

	var doc snapshotDoc
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", path, err)
	}

	ws := scheduler.NewWorkingSet()
	for _, n := range doc.Nodes {
		ws.AddNode(&scheduler.Node{ID: n.ID, Status: parseNodeStatus(n.Status), Shadow: n.Shadow})
	}

	var root *resourceDoc
	for i := range doc.Resources {
		if root != nil {
			return nil, fmt.Errorf("snapshot has more than one top-level resource (%q, %q)", root.ID, doc.Resources[i].ID)
		}
		root = &doc.Resources[i]
	}
	if root == nil {
		return nil, fmt.Errorf("snapshot has no resources")
	}
	ws.Root = buildResource(ws, root)
	ws.AddResource(ws.Root)

	for _, c := range doc.Colocations {
		score, err := parseScore(strings.Trim(string(c.Score), `"`))
		if err != nil {
			return nil, fmt.Errorf("colocation %s: %w", c.ID, err)
		}
		ws.Colocations.Add(&scheduler.Colocation{
			ID: c.ID, Source: c.Source, Target: c.Target, Score: score, Influence: c.Influence,
		})
	}

	for _, o := range doc.Orderings {
		ws.Orderings = append(ws.Orderings, &scheduler.Ordering{
			First:  scheduler.Endpoint{ResourceID: o.FirstResource, Task: scheduler.Task(o.FirstTask)},
			Then:   scheduler.Endpoint{ResourceID: o.ThenResource, Task: scheduler.Task(o.ThenTask)},
			NodeID: o.Node,
			Type:   parseOrderingType(o.Type),
		})
	}

	return ws, nil
}

func buildResource(ws *scheduler.WorkingSet, doc *resourceDoc) *scheduler.Resource {
	r := scheduler.NewResource(ws, doc.ID, parseVariant(doc.Variant))
	for k, v := range doc.Meta {
		r.Meta[k] = v
	}
	for _, nodeID := range doc.RunningOn {
		r.RunningOn.Insert(nodeID)
	}
	for _, a := range doc.AllowedNodes {
		score, err := parseScore(strings.Trim(string(a.Weight), `"`))
		if err != nil {
			score = scheduler.Zero
		}
		ws.SetAllowed(doc.ID, a.Node, score)
	}
	r.IsContainer = doc.IsContainer
	if doc.Contained != nil {
		contained := buildResource(ws, doc.Contained)
		contained.Parent = r
		r.Contained = contained
	}
	for i := range doc.Children {
		child := buildResource(ws, &doc.Children[i])
		child.Parent = r
		r.Children = append(r.Children, child)
	}
	return r
}

func parseNodeStatus(s string) scheduler.NodeStatus {
	switch s {
	case "standby":
		return scheduler.NodeStandby
	case "offline":
		return scheduler.NodeOffline
	case "fencing":
		return scheduler.NodeFencing
	default:
		return scheduler.NodeOnline
	}
}

func parseVariant(s string) scheduler.Variant {
	switch s {
	case "group":
		return scheduler.VariantGroup
	case "clone":
		return scheduler.VariantClone
	case "bundle":
		return scheduler.VariantBundle
	default:
		return scheduler.VariantPrimitive
	}
}

func parseScore(s string) (scheduler.Score, error) {
	switch s {
	case "+inf", "+INFINITY", "INFINITY":
		return scheduler.PlusInfinity, nil
	case "-inf", "-INFINITY":
		return scheduler.MinusInfinity, nil
	}
	var v int64
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return scheduler.Zero, fmt.Errorf("invalid score %q: %w", s, err)
	}
	return scheduler.Finite(v), nil
}

func parseOrderingType(names []string) scheduler.OrderingType {
	var t scheduler.OrderingType
	for _, n := range names {
		switch n {
		case "runnable_left":
			t |= scheduler.OrderRunnableLeft
		case "implies_then":
			t |= scheduler.OrderImpliesThen
		case "optional":
			t |= scheduler.OrderOptional
		}
	}
	return t
}
