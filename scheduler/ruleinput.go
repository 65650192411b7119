package scheduler

import "time"

// RuleInput is the evaluation context passed to an external
// RuleEvaluator, mirroring `pcmk_rule_input_t` field-for-field. Unset
// fields carry their Go zero value, which doubles as a "not supplied"
// sentinel: a nil *time.Time, an empty map, or an empty string all
// mean the same thing.
type RuleInput struct {
	Now *time.Time

	NodeAttrs map[string]string

	RscStandard string
	RscProvider string
	RscAgent    string
	RscParams   map[string]string
	RscMeta     map[string]string

	RscID            string
	RscIDSubmatches  []string

	OpName        string
	OpIntervalMS  int64
}

// RuleEvaluator is the external collaborator for rule evaluation over
// name/value pair blocks (time/role/node-attribute predicates), which
// is out of scope for this core. The core only depends on this
// interface where a colocation's InfluencePredicate or a resource's
// effective metadata needs a rule decision.
type RuleEvaluator interface {
	// Evaluate returns whether the rule identified by ruleID matches
	// the given input.
	Evaluate(ruleID string, input *RuleInput) (bool, error)
}
