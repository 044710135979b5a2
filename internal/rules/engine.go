// internal/rules/engine.go
package rules

import (
	"sort"
	"time"

	"github.com/sorsimple/obslayer/internal/fieldpath"
	"github.com/sorsimple/obslayer/internal/logging"
	"github.com/sorsimple/obslayer/internal/strategy"
	"github.com/sorsimple/obslayer/internal/types"
)

/*
 * Business-rule engine.
 *
 * Processes one event against a set of prioritized rules:
 *   1. Rules are ordered by descending priority, stable within ties.
 *   2. A rule applies when its validity period covers the processing
 *      instant and every condition holds (AND semantics).
 *   3. Each action of an applying rule runs its named strategy; the
 *      produced values merge into one result map keyed by target field.
 *
 * Merge semantics: rules run highest priority first and later writes
 * overwrite earlier ones, so on a field collision the LOWEST applicable
 * priority provides the final value. Documents in the field rely on this;
 * changing it would silently flip precedence fleet-wide.
 *
 * Failure posture: a condition that cannot be evaluated is false, a
 * strategy that cannot produce a value contributes nothing. One broken
 * rule never stops the event.
 */

// validityLayout is the document contract for validity period bounds:
// ISO-8601 instants in UTC.
const validityLayout = "2006-01-02T15:04:05Z"

// Engine evaluates business rules against events.
type Engine struct {
	rules    []types.Rule
	registry *strategy.Registry
	ext      *strategy.Extensions
	log      *logging.Logger
}

// NewEngine builds an engine over the given rules. A nil registry means
// the default built-in strategies; ext may be nil when no rule uses
// extension data.
func NewEngine(rules []types.Rule, registry *strategy.Registry, ext *strategy.Extensions, log *logging.Logger) *Engine {
	if registry == nil {
		registry = strategy.Default()
	}
	if log == nil {
		log = logging.Default()
	}
	return &Engine{rules: rules, registry: registry, ext: ext, log: log}
}

// ProcessEvent runs every applicable rule against the event and returns
// the merged action results. A zero now means the current UTC instant.
func (e *Engine) ProcessEvent(event map[string]any, now time.Time) map[string]any {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	ordered := make([]types.Rule, len(e.rules))
	copy(ordered, e.rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	results := map[string]any{}
	for _, rule := range ordered {
		if !e.applicable(rule, event, now) {
			continue
		}
		for _, action := range rule.Actions {
			if v, ok := e.executeAction(action, event); ok {
				results[action.Field] = v
			}
		}
	}
	return results
}

// applicable reports whether the rule's validity covers now and all its
// conditions hold against the event.
func (e *Engine) applicable(rule types.Rule, event map[string]any, now time.Time) bool {
	if !e.withinValidity(rule, now) {
		return false
	}
	for _, cond := range rule.Conditions {
		if !e.evalCondition(cond, event) {
			return false
		}
	}
	return true
}

// withinValidity checks the rule's validity period. Absent bounds are
// unconstrained; an unparseable bound disables the rule rather than
// letting it fire forever.
func (e *Engine) withinValidity(rule types.Rule, now time.Time) bool {
	v := rule.Validity
	if v == nil {
		return true
	}
	if v.StartDate != "" {
		start, err := time.Parse(validityLayout, v.StartDate)
		if err != nil {
			e.log.Error("invalid validity start date", logging.RuleID(rule.ID), logging.Error(err))
			return false
		}
		if now.Before(start) {
			return false
		}
	}
	if v.EndDate != "" {
		end, err := time.Parse(validityLayout, v.EndDate)
		if err != nil {
			e.log.Error("invalid validity end date", logging.RuleID(rule.ID), logging.Error(err))
			return false
		}
		if now.After(end) {
			return false
		}
	}
	return true
}

// evalCondition resolves the condition's field and applies its operator.
// Resolution failures evaluate false: a condition that cannot be read
// must not let its rule fire.
func (e *Engine) evalCondition(cond types.Condition, event map[string]any) bool {
	res, err := fieldpath.Resolve(cond.Field, event)
	if err != nil {
		e.log.Error("condition field resolution failed",
			logging.Field(cond.Field), logging.Error(err))
		return false
	}
	var value any
	if res.Found {
		value = res.Value
	}
	return Compare(cond.Operator, value, cond.Value)
}

// executeAction runs the action's strategy. Unknown strategies and
// strategies without a result contribute nothing.
func (e *Engine) executeAction(action types.Action, event map[string]any) (any, bool) {
	s := e.registry.Create(action.Strategy())
	if s == nil {
		return nil, false
	}
	return s.Execute(action, event, e.ext)
}
