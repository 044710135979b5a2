package types

import "github.com/google/uuid"

// NewRunID generates a UUIDv7 pipeline-run identifier. Time-ordered IDs
// keep per-run log lines sortable by arrival.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRunID() RunID {
	return RunID(uuid.Must(uuid.NewV7()).String())
}

// NewEventID generates a UUIDv7 journal-entry identifier. Time-ordered
// IDs keep journal inserts clustered in B-tree pages.
func NewEventID() EventID {
	return EventID(uuid.Must(uuid.NewV7()).String())
}
