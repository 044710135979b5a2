// internal/logging/fields.go
package logging

import "log/slog"

// Common field names for consistent logging across the service.
const (
	FieldConsumer = "consumer_id"
	FieldService  = "id_service"
	FieldSession  = "session_id"
	FieldRule     = "rule_id"
	FieldStrategy = "strategy"
	FieldField    = "field"
	FieldQuery    = "query"
	FieldError    = "error"
)

// Consumer returns a slog attribute for the consumer id.
func Consumer(id string) slog.Attr {
	return slog.String(FieldConsumer, id)
}

// Service returns a slog attribute for the service id.
func Service(id string) slog.Attr {
	return slog.String(FieldService, id)
}

// Session returns a slog attribute for the session id.
func Session(id string) slog.Attr {
	return slog.String(FieldSession, id)
}

// RuleID returns a slog attribute for a rule id.
func RuleID(id string) slog.Attr {
	return slog.String(FieldRule, id)
}

// Strategy returns a slog attribute for a strategy name.
func Strategy(name string) slog.Attr {
	return slog.String(FieldStrategy, name)
}

// Field returns a slog attribute for a target field name.
func Field(name string) slog.Attr {
	return slog.String(FieldField, name)
}

// Query returns a slog attribute for a query string.
func Query(q string) slog.Attr {
	return slog.String(FieldQuery, q)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
