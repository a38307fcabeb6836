// Package rules evaluates declarative condition/action rules against a
// flattened configuration context. Evaluation is a sequential fold in
// ascending priority order: each matching rule's actions are applied to the
// working context before the next rule's condition is tested, so later rules
// observe the effects of earlier ones.
package rules

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/glowmirror/configurator/internal/types"
)

// CompiledRule is a rule whose condition and actions have been parsed.
type CompiledRule struct {
	ID       int
	Name     string
	Priority float64 // missing priority compiles to +Inf (lowest precedence)
	Order    int     // original fetch position, stable-sort tie-break
	Cond     Condition
	Actions  []Action
}

// FieldConstraint is the allow/deny constraint accumulated for one field.
// AllowSet distinguishes "no allow-list" from "empty allow-list".
type FieldConstraint struct {
	Allow    []int
	AllowSet bool
	Deny     []int
}

// Constraints maps field keys to their accumulated constraints.
type Constraints map[string]FieldConstraint

// Result is the output of one evaluation pass.
type Result struct {
	Context     types.FlatContext
	Overrides   map[string]string // SKU segment -> literal override
	Constraints Constraints
}

// Compile parses raw rules into evaluable form. Malformed rules are skipped
// with a warning; compilation never fails outright.
func Compile(raw []types.Rule, logger zerolog.Logger) []CompiledRule {
	compiled := make([]CompiledRule, 0, len(raw))
	for i, r := range raw {
		cond, err := ParseCondition(r.IfThis)
		if err != nil {
			logger.Warn().Int("rule_id", r.ID).Str("rule", r.Name).Err(err).
				Msg("skipping rule with malformed condition")
			continue
		}
		actions, err := ParseActions(r.ThenThat)
		if err != nil {
			logger.Warn().Int("rule_id", r.ID).Str("rule", r.Name).Err(err).
				Msg("skipping rule with malformed action")
			continue
		}
		prio := math.Inf(1)
		if r.Priority != nil {
			prio = float64(*r.Priority)
		}
		compiled = append(compiled, CompiledRule{
			ID:       r.ID,
			Name:     r.Name,
			Priority: prio,
			Order:    i,
			Cond:     cond,
			Actions:  actions,
		})
	}
	return compiled
}

// Evaluate folds the rules over the context. The input context is copied;
// callers keep their snapshot. Pure apart from reading the compiled rules.
func Evaluate(ctx types.FlatContext, compiled []CompiledRule) Result {
	ordered := make([]CompiledRule, len(compiled))
	copy(ordered, compiled)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].Order < ordered[j].Order
	})

	res := Result{
		Context:     ctx,
		Overrides:   make(map[string]string),
		Constraints: make(Constraints),
	}
	res.Context.AccessoryIDs = append([]int(nil), ctx.AccessoryIDs...)

	forced := make(map[string]bool)
	for _, rule := range ordered {
		if !rule.Cond.Eval(&res.Context) {
			continue
		}
		for _, act := range rule.Actions {
			applyAction(&res, act, forced)
		}
	}
	return res
}

func applyAction(res *Result, act Action, forced map[string]bool) {
	switch act.Kind {
	case ActionSetField:
		// A field forced by a higher-precedence rule stays forced: later
		// rules see the value in their conditions but cannot displace it.
		if forced[act.Field] {
			return
		}
		if id, ok := toFloat(act.Value); ok {
			res.Context.SetID(act.Field, int(id))
			forced[act.Field] = true
		}
	case ActionOverrideSegment:
		// Later (lower-precedence) rules do not displace an override already
		// claimed by a higher-precedence rule.
		if _, taken := res.Overrides[act.Segment]; !taken {
			res.Overrides[act.Segment] = act.Literal
		}
	case ActionConstrainOptions:
		cur := res.Constraints[act.Field]
		if act.AllowSet {
			if cur.AllowSet {
				cur.Allow = intersect(cur.Allow, act.Allow)
			} else {
				cur.Allow = append([]int(nil), act.Allow...)
				cur.AllowSet = true
			}
		}
		cur.Deny = union(cur.Deny, act.Deny)
		res.Constraints[act.Field] = cur
	}
}

func intersect(a, b []int) []int {
	out := make([]int, 0, len(a))
	for _, v := range a {
		for _, w := range b {
			if v == w {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

func union(a, b []int) []int {
	out := append([]int(nil), a...)
	for _, v := range b {
		present := false
		for _, w := range out {
			if v == w {
				present = true
				break
			}
		}
		if !present {
			out = append(out, v)
		}
	}
	return out
}
