package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	id "vanity/pkg/domain"
	audit "vanity/pkg/platform/audit"
)

// Store persists audit events in PostgreSQL over database/sql (lib/pq).
type Store struct {
	db *sql.DB
}

// Open connects to the audit database.
func Open(url string) (*Store, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping audit database: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an existing connection.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         UUID PRIMARY KEY,
	action     TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	ticket     TEXT NOT NULL DEFAULT '',
	account    TEXT NOT NULL,
	amount     BIGINT NOT NULL DEFAULT 0,
	request_id TEXT NOT NULL DEFAULT '',
	timestamp  TIMESTAMPTZ NOT NULL
)`

// EnsureSchema creates the audit_events table if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// Append inserts one event. Idempotent on the event ID.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, action, name, ticket, account, amount, request_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`,
		event.ID,
		string(event.Action),
		event.Name,
		event.Ticket,
		event.Account.String(),
		int64(event.Amount),
		event.RequestID,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByAccount returns events for one account, newest first.
func (s *Store) ListByAccount(ctx context.Context, account id.AccountID) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, name, ticket, account, amount, request_id, timestamp
		FROM audit_events
		WHERE account = $1
		ORDER BY timestamp DESC`,
		account.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		var action, account string
		var amount int64
		if err := rows.Scan(&e.ID, &action, &e.Name, &e.Ticket, &account, &amount, &e.RequestID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = audit.Action(action)
		e.Account = id.AccountID(account)
		e.Amount = id.Amount(amount)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
