// internal/strategy/strategy.go
package strategy

import "github.com/sorsimple/obslayer/internal/types"

/*
 * Interchangeable action strategies for rule actions and SQL parameter
 * extraction.
 *
 * A strategy turns one configured action into at most one value. The same
 * contract serves two callers: the rule engine (one derived entity field
 * per action) and the parameter extraction service (one bind value per
 * configured placeholder). Strategies are registered by name in a Registry
 * and looked up case-insensitively from the action's "calculate" /
 * "action" / "requires" document keys.
 */

// ActionStrategy executes one configured action against an event.
// The boolean result reports whether the strategy produced a value at
// all; strategies that cannot resolve their input contribute nothing
// rather than an explicit null.
type ActionStrategy interface {
	Execute(action types.Action, event map[string]any, ext *Extensions) (any, bool)
}

// Extensions carries the optional surroundings a strategy may consult:
// auxiliary datasets for extension-mode extraction, the entity assembled
// so far, caller-provided custom values, and the full extraction context.
type Extensions struct {
	Datasets map[string]any
	Entity   *types.Entity
	Custom   map[string]any
	Context  *Context
}

// Dataset returns the auxiliary dataset registered under name, or nil.
func (e *Extensions) Dataset(name string) any {
	if e == nil || name == "" {
		return nil
	}
	return e.Datasets[name]
}
