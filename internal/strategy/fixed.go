// internal/strategy/fixed.go
package strategy

import "github.com/sorsimple/obslayer/internal/types"

// SetFixedValue returns the literal value configured on the action.
type SetFixedValue struct{}

func (SetFixedValue) Execute(action types.Action, _ map[string]any, _ *Extensions) (any, bool) {
	if action.Value == nil {
		return nil, false
	}
	return action.Value, true
}
