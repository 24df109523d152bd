package ownership

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vanity/internal/registry/models"
	id "vanity/pkg/domain"
	"vanity/pkg/platform/sentinel"
)

// Postgres persists ownership records keyed by name.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const ownershipSchema = `
CREATE TABLE IF NOT EXISTS ownerships (
	name           TEXT PRIMARY KEY,
	owner          TEXT NOT NULL,
	purchased_at   TIMESTAMPTZ NOT NULL,
	locked_until   TIMESTAMPTZ NOT NULL,
	renewable_from TIMESTAMPTZ NOT NULL,
	state          TEXT NOT NULL
)`

// EnsureSchema creates the ownerships table if missing.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, ownershipSchema); err != nil {
		return fmt.Errorf("ensure ownerships schema: %w", err)
	}
	return nil
}

func (s *Postgres) Find(ctx context.Context, name string) (*models.Ownership, error) {
	o, err := scanOwnership(s.pool.QueryRow(ctx, `
		SELECT name, owner, purchased_at, locked_until, renewable_from, state
		FROM ownerships
		WHERE name = $1`,
		name,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query ownership: %w", err)
	}
	return o, nil
}

// Put creates or replaces the record for its name.
func (s *Postgres) Put(ctx context.Context, o *models.Ownership) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ownerships (name, owner, purchased_at, locked_until, renewable_from, state)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			owner          = EXCLUDED.owner,
			purchased_at   = EXCLUDED.purchased_at,
			locked_until   = EXCLUDED.locked_until,
			renewable_from = EXCLUDED.renewable_from,
			state          = EXCLUDED.state`,
		o.Name, o.Owner.String(), o.PurchasedAt, o.LockedUntil, o.RenewableFrom, string(o.State),
	)
	if err != nil {
		return fmt.Errorf("upsert ownership: %w", err)
	}
	return nil
}

// Execute runs validate-then-mutate inside a transaction holding FOR UPDATE
// on the row, so the check and the write see the same record.
func (s *Postgres) Execute(ctx context.Context, name string, validate func(*models.Ownership) error, mutate func(*models.Ownership)) (*models.Ownership, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ownership tx: %w", err)
	}
	defer tx.Rollback(ctx)

	o, err := scanOwnership(tx.QueryRow(ctx, `
		SELECT name, owner, purchased_at, locked_until, renewable_from, state
		FROM ownerships
		WHERE name = $1
		FOR UPDATE`,
		name,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock ownership: %w", err)
	}

	if err := validate(o); err != nil {
		return nil, err
	}
	mutate(o)

	_, err = tx.Exec(ctx, `
		UPDATE ownerships
		SET owner = $2, purchased_at = $3, locked_until = $4, renewable_from = $5, state = $6
		WHERE name = $1`,
		o.Name, o.Owner.String(), o.PurchasedAt, o.LockedUntil, o.RenewableFrom, string(o.State),
	)
	if err != nil {
		return nil, fmt.Errorf("update ownership: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit ownership tx: %w", err)
	}
	return o, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOwnership(row rowScanner) (*models.Ownership, error) {
	var o models.Ownership
	var owner, state string
	if err := row.Scan(&o.Name, &owner, &o.PurchasedAt, &o.LockedUntil, &o.RenewableFrom, &state); err != nil {
		return nil, err
	}
	o.Owner = id.AccountID(owner)
	o.State = models.OwnershipState(state)
	return &o, nil
}
