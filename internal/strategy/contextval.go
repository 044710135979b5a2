// internal/strategy/contextval.go
package strategy

import "github.com/sorsimple/obslayer/internal/types"

// entityNameKey is reserved: it resolves to the primary entity name
// instead of a custom context entry.
const entityNameKey = "entity_name"

// ContextValue reads a caller-provided custom value by key. Unlike the
// other strategies it always contributes, yielding an explicit nil for
// unknown keys so a configured placeholder still receives a bind slot.
type ContextValue struct{}

func (ContextValue) Execute(action types.Action, _ map[string]any, ext *Extensions) (any, bool) {
	key, _ := action.Value.(string)
	if key == "" || ext == nil {
		return nil, true
	}

	if key == entityNameKey {
		if ext.Context != nil {
			return nilIfEmpty(ext.Context.EntityName()), true
		}
		if ext.Entity != nil {
			return nilIfEmpty(ext.Entity.Name()), true
		}
		return nil, true
	}

	return ext.Custom[key], true
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
