package scheduler

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// EngineConfig carries the cluster-wide defaults a caller would
// otherwise pass into every AssignInstances call by hand. The zero
// value is usable: DefaultMaxPerNode falls back to 1 and notify hooks
// stay disabled.
type EngineConfig struct {
	// DefaultMaxPerNode bounds how many instances of any one collective
	// may land on a single node when the collective itself doesn't
	// override it.
	DefaultMaxPerNode uint32

	// StrictAvailability, when true, makes preferredNode's "is the
	// current node available" check also exclude standby nodes
	// (available(strict=true, allow_standby=false) instead of (true,
	// true)); kept as a config knob because the original exposes it as
	// a cluster option rather than hard-coding it.
	StrictAvailability bool

	// EnableNotifications turns on notify/notified pseudo-action
	// construction in BuildInstanceActions. Requires the working set to
	// carry a non-nil NotifyBuilder.
	EnableNotifications bool

	Logger hclog.Logger
}

func (c EngineConfig) maxPerNode() uint32 {
	if c.DefaultMaxPerNode == 0 {
		return 1
	}
	return c.DefaultMaxPerNode
}

// Engine is the façade over placement through ordering: one Run call
// places every collective's instances, builds their pseudo-actions,
// and propagates every user-supplied ordering.
type Engine struct {
	cfg EngineConfig
}

// NewEngine constructs an Engine bound to cfg.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	return &Engine{cfg: cfg}
}

// Run executes one scheduling round over ws: placement, then state
// summary, pseudo-action construction, and ordering propagation, in
// that order. It returns an aggregated error only for API-boundary
// problems; placement failures for individual instances are not
// errors and are visible in ws afterward as unassigned, -∞-located
// resources.
func (e *Engine) Run(ctx Context) error {
	ws := ctx.WorkingSet()
	if err := ws.Validate(); err != nil {
		return fmt.Errorf("invalid working set: %w", err)
	}

	e.placeCollectives(ctx, ws.Root)
	e.buildPseudoActions(ctx, ws.Root)

	var result *multierror.Error
	for _, o := range ws.Orderings {
		if err := e.resolveAndUpdate(ctx, o); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// placeCollectives walks the resource tree and runs C5 on every
// collective it finds, depth-first so that nested clones-of-groups
// place their innermost collectives first.
func (e *Engine) placeCollectives(ctx Context, r *Resource) {
	if r == nil {
		return
	}
	for _, c := range r.Children {
		e.placeCollectives(ctx, c)
	}
	if r.Variant.IsCollective() {
		maxTotal := uint32(len(r.Children))
		if v, ok := r.Meta["clone-max"]; ok {
			if n, err := parseUintMeta(v); err == nil {
				maxTotal = n
			}
		}
		maxPerNode := e.cfg.maxPerNode()
		if v, ok := r.Meta["clone-node-max"]; ok {
			if n, err := parseUintMeta(v); err == nil {
				maxPerNode = n
			}
		}
		AssignInstances(ctx, r, r.Children, maxTotal, maxPerNode, !e.cfg.StrictAvailability)
	}
}

// buildPseudoActions runs C7+C8 over every collective in the tree:
// summarize instance state, then build the collective's own
// start/started/stop/stopped pseudo-actions.
func (e *Engine) buildPseudoActions(ctx Context, r *Resource) {
	if r == nil {
		return
	}
	for _, c := range r.Children {
		e.buildPseudoActions(ctx, c)
	}
	if r.Variant.IsCollective() {
		state := CheckInstanceState(r)
		ws := ctx.WorkingSet()
		notifier := ws.NotifyBuilder
		if !e.cfg.EnableNotifications {
			ws.NotifyBuilder = nil
		}
		BuildInstanceActions(ws, r, state)
		ws.NotifyBuilder = notifier
	}
}

// resolveAndUpdate resolves an Ordering's endpoints to concrete
// Actions and invokes C9's Update.
func (e *Engine) resolveAndUpdate(ctx Context, o *Ordering) error {
	ws := ctx.WorkingSet()
	first, err := resolveEndpoint(ws, &o.First)
	if err != nil {
		return fmt.Errorf("ordering %s: %w", o.id(), err)
	}
	then, err := resolveEndpoint(ws, &o.Then)
	if err != nil {
		return fmt.Errorf("ordering %s: %w", o.id(), err)
	}
	Update(ctx, first, then, o.NodeID, o.Type)
	return nil
}

func resolveEndpoint(ws *WorkingSet, ep *Endpoint) (*Action, error) {
	if ep.Action != nil {
		return ep.Action, nil
	}
	r := ws.Resource(ep.ResourceID)
	if r == nil {
		return nil, fmt.Errorf("unknown resource %q", ep.ResourceID)
	}
	a := FindFirstAction(r.Actions, ep.Task, "")
	if a == nil {
		return nil, fmt.Errorf("resource %q has no %s action", ep.ResourceID, ep.Task)
	}
	return a, nil
}

func parseUintMeta(s string) (uint32, error) {
	var n uint32
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	return n, nil
}
