package scheduler

import (
	"io"

	hclog "github.com/hashicorp/go-hclog"
)

// Context is used to track contextual information used for placement
// and ordering: the round's working set plus a structured logger,
// since this core has no RPC-backed state store to consult.
type Context interface {
	// WorkingSet is the round's resource/node/ordering graph.
	WorkingSet() *WorkingSet

	// Logger is used for the trace/debug/warn decision points the
	// engine passes through during a scheduling round.
	Logger() hclog.Logger
}

// EvalContext is the default Context implementation, one per
// scheduling round.
type EvalContext struct {
	ws     *WorkingSet
	logger hclog.Logger
}

// NewEvalContext constructs a new EvalContext over ws. A nil logger
// falls back to a discard sink so callers never need a nil check.
func NewEvalContext(ws *WorkingSet, logger hclog.Logger) *EvalContext {
	if logger == nil {
		logger = hclog.New(&hclog.LoggerOptions{Output: io.Discard})
	}
	return &EvalContext{ws: ws, logger: logger}
}

func (e *EvalContext) WorkingSet() *WorkingSet { return e.ws }
func (e *EvalContext) Logger() hclog.Logger    { return e.logger }
