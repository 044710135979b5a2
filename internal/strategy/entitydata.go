// internal/strategy/entitydata.go
package strategy

import (
	"encoding/json"

	"github.com/sorsimple/obslayer/internal/types"
)

// EntityData reads from the entity assembled so far. With no configured
// value the whole entity payload is returned as a JSON string; with a
// value the named payload field is returned, contributing nothing when
// that field is unset.
type EntityData struct{}

func (EntityData) Execute(action types.Action, _ map[string]any, ext *Extensions) (any, bool) {
	if ext == nil || ext.Entity == nil {
		return nil, false
	}

	name, _ := action.Value.(string)
	if name == "" {
		raw, err := json.Marshal(ext.Entity.Data.Merged())
		if err != nil {
			return nil, false
		}
		return string(raw), true
	}

	v, ok := ext.Entity.Data.Field(name)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
