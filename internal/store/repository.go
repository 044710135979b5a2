// internal/store/repository.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sorsimple/obslayer/internal/logging"
	"github.com/sorsimple/obslayer/internal/types"
)

/*
 * Entity repository.
 *
 * Two kinds of SQL pass through here. Document-built queries (save,
 * find, correlation lookup) arrive as rendered text with ? markers and
 * are rebound for the active driver. The journal and the correlation
 * cache use the fixed named queries from the embedded files.
 *
 * The correlation cache exists because only some events of a session
 * carry the document block: once any event yields a correlation id, it
 * is remembered per (session, day) and later events resolve it locally
 * without replaying the document-configured lookup.
 */

// JournalEntry is one persisted-entity record.
type JournalEntry struct {
	ID         string `db:"id"`
	EntityName string `db:"entity_name"`
	SessionID  string `db:"sessionid"`
	Tidnid     string `db:"tidnid"`
	IDService  string `db:"id_service"`
	Data       string `db:"data"`
	CreatedAt  string `db:"created_at"`
}

// Repository persists entities and serves correlation lookups.
type Repository struct {
	db  *sqlx.DB
	q   *Queries
	log *logging.Logger
}

// NewRepository builds a repository over an open connection.
func NewRepository(db *sqlx.DB, log *logging.Logger) (*Repository, error) {
	if log == nil {
		log = logging.Default()
	}
	q, err := LoadQueries(db)
	if err != nil {
		return nil, err
	}
	return &Repository{db: db, q: q, log: log}, nil
}

// Exec runs a document-built query with its bind values.
func (r *Repository) Exec(ctx context.Context, query string, args []any) error {
	if query == "" {
		return fmt.Errorf("empty query")
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	return err
}

// QueryString runs a document-built query expected to yield one string
// value. No rows is not an error; it returns "".
func (r *Repository) QueryString(ctx context.Context, query string, args []any) (string, error) {
	if query == "" {
		return "", fmt.Errorf("empty query")
	}
	var out sql.NullString
	err := r.db.GetContext(ctx, &out, r.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return out.String, nil
}

// AppendJournal records one persisted entity in the journal.
func (r *Repository) AppendJournal(ctx context.Context, ent *types.Entity) error {
	data, err := json.Marshal(ent.Data)
	if err != nil {
		return fmt.Errorf("serializing entity data: %w", err)
	}
	_, err = r.q.Exec(ctx, "journal-insert",
		string(types.NewEventID()),
		ent.Name(),
		ent.SessionID,
		ent.CorrelationID,
		ent.Data.IDService,
		string(data),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// SessionEventCount returns how many journal entries a session has.
func (r *Repository) SessionEventCount(ctx context.Context, sessionID string) (int64, error) {
	var n int64
	if err := r.q.Get(ctx, "journal-count-session", &n, sessionID); err != nil {
		return 0, err
	}
	return n, nil
}

// RecentEntries returns the newest journal entries, newest first.
func (r *Repository) RecentEntries(ctx context.Context, limit int) ([]JournalEntry, error) {
	var entries []JournalEntry
	if err := r.q.Select(ctx, "journal-recent", &entries, limit); err != nil {
		return nil, err
	}
	return entries, nil
}

// RememberCorrelation caches a session's correlation id for one day
// partition. Idempotent; the latest write wins.
func (r *Repository) RememberCorrelation(ctx context.Context, sessionID, date, correlationID string) error {
	if sessionID == "" || correlationID == "" {
		return nil
	}
	_, err := r.q.Exec(ctx, "correlation-upsert",
		sessionID, date, correlationID, time.Now().UTC().Format(time.RFC3339))
	return err
}

// FindCorrelationID resolves a session's correlation id from the cache.
// Returns "" without error when the session has none cached.
func (r *Repository) FindCorrelationID(ctx context.Context, sessionID, date string) (string, error) {
	var out string
	err := r.q.Get(ctx, "correlation-find", &out, sessionID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return out, nil
}
