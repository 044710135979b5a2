// internal/types/rules.go
package types

/*
 * Domain types for business-rule evaluation.
 *
 * Provides Rule, Condition, Action, and ValidityPeriod structures consumed
 * by internal/rules. These types are the wire format of the externally
 * editable configuration documents: JSON tags follow the document contract.
 *
 * Key types:
 *   - Rule: prioritized, time-bounded rule for one event type
 *   - Condition: single test over an event field (AND-combined per rule)
 *   - Action: named-strategy invocation producing one derived field
 *   - ValidityPeriod: optional [start, end] applicability window
 */

// Condition represents a single condition in a rule.
// Field is a dotted path resolved against the re-nested event.
type Condition struct {
	Operator   string `json:"operator"`
	Field      string `json:"field"`
	Value      any    `json:"value,omitempty"`
	RequireExt string `json:"require_ext,omitempty"` // "true"/"false" per document format
	NameExt    string `json:"name_ext,omitempty"`
}

// Action represents a strategy invocation configured on a rule.
// The strategy name lives in either "calculate" or "action" depending on
// document vintage; Strategy() normalizes the two.
type Action struct {
	Field      string      `json:"field"`
	Kind       string      `json:"action,omitempty"`
	Calculate  string      `json:"calculate,omitempty"`
	Value      any         `json:"value,omitempty"`
	Query      string      `json:"query,omitempty"`
	RequireExt string      `json:"require_ext,omitempty"`
	NameExt    string      `json:"name_ext,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
}

// Strategy returns the effective strategy name for the action.
func (a Action) Strategy() string {
	if a.Calculate != "" {
		return a.Calculate
	}
	return a.Kind
}

// ValidityPeriod bounds a rule's applicability in time.
// Dates are ISO-8601 UTC instants ("2006-01-02T15:04:05Z"); absent bounds
// are unconstrained.
type ValidityPeriod struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// Rule represents a complete business rule for one event type.
type Rule struct {
	ID          string          `json:"id_rule"`
	Description string          `json:"description"`
	EventType   string          `json:"event_type"`
	Priority    int             `json:"priority"`
	Conditions  []Condition     `json:"conditions,omitempty"`
	Actions     []Action        `json:"actions,omitempty"`
	Validity    *ValidityPeriod `json:"validity_period,omitempty"`
}
