package types

// EntityData carries the per-event payload of an assembled entity:
// the resolved service fields and the rule-derived fields.
type EntityData struct {
	IDService string         `json:"id_service,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
	Service   map[string]any `json:"service"`
	Rules     map[string]any `json:"rules"`
}

// Field looks a name up across the entity payload, rule-derived fields
// first so they shadow raw service fields of the same name.
func (d EntityData) Field(name string) (any, bool) {
	if v, ok := d.Rules[name]; ok {
		return v, true
	}
	if v, ok := d.Service[name]; ok {
		return v, true
	}
	switch name {
	case "id_service":
		return d.IDService, d.IDService != ""
	case "timestamp":
		return d.Timestamp, d.Timestamp != ""
	}
	return nil, false
}

// Merged flattens the payload into one map, rule-derived fields winning
// over service fields on collision.
func (d EntityData) Merged() map[string]any {
	m := make(map[string]any, len(d.Service)+len(d.Rules)+2)
	if d.IDService != "" {
		m["id_service"] = d.IDService
	}
	if d.Timestamp != "" {
		m["timestamp"] = d.Timestamp
	}
	for k, v := range d.Service {
		m[k] = v
	}
	for k, v := range d.Rules {
		m[k] = v
	}
	return m
}

// Entity is the persistable record assembled from one event.
// Immutable after the builder returns it; persistence only ever appends it
// to a session's running event list.
type Entity struct {
	EntityNames   []string   `json:"entity_names"`
	SessionID     string     `json:"session_id"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Data          EntityData `json:"data"`
}

// Name returns the primary entity name, or "" when none is set.
func (e *Entity) Name() string {
	if len(e.EntityNames) == 0 {
		return ""
	}
	return e.EntityNames[0]
}
