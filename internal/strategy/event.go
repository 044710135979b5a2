// internal/strategy/event.go
package strategy

import (
	"github.com/jmespath/go-jmespath"

	"github.com/sorsimple/obslayer/internal/fieldpath"
	"github.com/sorsimple/obslayer/internal/types"
)

// SetValue copies a value out of the event. The action's value names the
// source: a literal top-level key is tried first, then full path
// resolution with array fallbacks.
type SetValue struct{}

func (SetValue) Execute(action types.Action, event map[string]any, _ *Extensions) (any, bool) {
	source, ok := action.Value.(string)
	if !ok || source == "" {
		return nil, false
	}
	if v, ok := event[source]; ok && v != nil {
		return v, true
	}
	res, err := fieldpath.Resolve(source, event)
	if err != nil || !res.Found || res.Value == nil {
		return nil, false
	}
	return res.Value, true
}

// EventField evaluates the action's value as a raw query expression over
// the event. Unlike SetValue it accepts full query syntax (projections,
// pipes, indices), so no path fallbacks apply.
type EventField struct{}

func (EventField) Execute(action types.Action, event map[string]any, _ *Extensions) (any, bool) {
	query, ok := action.Value.(string)
	if !ok || query == "" {
		return nil, false
	}
	v, err := jmespath.Search(query, event)
	if err != nil || v == nil {
		return nil, false
	}
	return v, true
}
