// Package rules is a reference RuleEvaluator for scheduler.RuleInput:
// attribute-equality and cron-style date-spec predicates, aggregated
// into named rule blocks and ANDed together. The core itself never
// imports this package; it is the external collaborator that supplies
// rule decisions the placement/ordering core doesn't evaluate itself.
package rules

import (
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/cronexpr"

	"github.com/oishikohei/pacemaker/scheduler"
)

// Predicate evaluates one test against a RuleInput.
type Predicate interface {
	Evaluate(input *scheduler.RuleInput) (bool, error)
}

// AttrEqual matches a node attribute's value against an expected
// string, the simplest predicate `map_rule_input`'s node_attrs field
// exists to support.
type AttrEqual struct {
	Attr     string
	Expected string
}

func (p AttrEqual) Evaluate(input *scheduler.RuleInput) (bool, error) {
	if input.NodeAttrs == nil {
		return false, nil
	}
	v, ok := input.NodeAttrs[p.Attr]
	return ok && v == p.Expected, nil
}

// DateSpec matches input.Now against a cron-style expression,
// standing in for the original's iso8601 date_spec blocks — those are
// minute/hour/day-of-month/month/weekday range sets, which is exactly
// what a cron expression describes.
type DateSpec struct {
	Expr string
}

func (p DateSpec) Evaluate(input *scheduler.RuleInput) (bool, error) {
	if input.Now == nil {
		return false, nil
	}
	expr, err := cronexpr.Parse(p.Expr)
	if err != nil {
		return false, fmt.Errorf("rules: invalid date_spec %q: %w", p.Expr, err)
	}
	// A date_spec matches an instant if that instant is itself a
	// trigger time; cronexpr only yields the *next* trigger, so a
	// match is "the next trigger at or after now is now itself",
	// checked to the second.
	next := expr.Next(input.Now.Add(-time.Second))
	return next.Equal(input.Now.Truncate(time.Second)), nil
}

// Block is a named rule: an AND of predicates, plus the score it
// contributes when it matches and its position in document order
// (used by SortBlocks).
type Block struct {
	ID         string
	Score      scheduler.Score
	Predicates []Predicate
	Order      int
}

func (b *Block) Evaluate(input *scheduler.RuleInput) (bool, error) {
	for _, p := range b.Predicates {
		ok, err := p.Evaluate(input)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// SortBlocks orders blocks by (explicit-first-id match, score
// descending, document order), grounded on the original's
// pcmk__cmp_nvpair_blocks.
func SortBlocks(blocks []*Block, firstID string) {
	sort.SliceStable(blocks, func(i, j int) bool {
		a, b := blocks[i], blocks[j]
		if firstID != "" {
			ai, bi := a.ID == firstID, b.ID == firstID
			if ai != bi {
				return ai
			}
		}
		if c := b.Score.Compare(a.Score); c != 0 {
			return c < 0
		}
		return a.Order < b.Order
	})
}

// Evaluator is a scheduler.RuleEvaluator backed by named Blocks.
type Evaluator struct {
	blocks map[string]*Block
}

// NewEvaluator constructs an empty Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{blocks: make(map[string]*Block)}
}

// Register adds or replaces a named block.
func (e *Evaluator) Register(b *Block) { e.blocks[b.ID] = b }

// Evaluate implements scheduler.RuleEvaluator.
func (e *Evaluator) Evaluate(ruleID string, input *scheduler.RuleInput) (bool, error) {
	b, ok := e.blocks[ruleID]
	if !ok {
		return false, fmt.Errorf("rules: unknown rule %q", ruleID)
	}
	return b.Evaluate(input)
}

var _ scheduler.RuleEvaluator = (*Evaluator)(nil)
