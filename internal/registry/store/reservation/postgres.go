package reservation

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

// Postgres persists reservations. Retirement is a flag rather than a delete
// so a consumed ticket keeps blocking re-reservation forever.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const reservationSchema = `
CREATE TABLE IF NOT EXISTS reservations (
	ticket       TEXT PRIMARY KEY,
	claimant     TEXT NOT NULL,
	advance_paid BIGINT NOT NULL,
	hold_ref     UUID NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	consumed     BOOLEAN NOT NULL DEFAULT FALSE
)`

// EnsureSchema creates the reservations table if missing.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, reservationSchema); err != nil {
		return fmt.Errorf("ensure reservations schema: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, r *models.Reservation) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO reservations (ticket, claimant, advance_paid, hold_ref, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (ticket) DO NOTHING`,
		r.Ticket.String(), r.Claimant.String(), int64(r.AdvancePaid), r.HoldRef, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var consumed bool
		err := s.pool.QueryRow(ctx,
			`SELECT consumed FROM reservations WHERE ticket = $1`,
			r.Ticket.String(),
		).Scan(&consumed)
		if err != nil {
			return fmt.Errorf("inspect conflicting reservation: %w", err)
		}
		if consumed {
			return sentinel.ErrAlreadyUsed
		}
		return sentinel.ErrConflict
	}
	return nil
}

func (s *Postgres) Find(ctx context.Context, ticket id.Ticket) (*models.Reservation, error) {
	r := models.Reservation{Ticket: ticket}
	var claimant string
	var advance int64
	err := s.pool.QueryRow(ctx, `
		SELECT claimant, advance_paid, hold_ref, created_at
		FROM reservations
		WHERE ticket = $1 AND NOT consumed`,
		ticket.String(),
	).Scan(&claimant, &advance, &r.HoldRef, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query reservation: %w", err)
	}
	r.Claimant = id.AccountID(claimant)
	r.AdvancePaid = id.Amount(advance)
	return &r, nil
}

func (s *Postgres) Consume(ctx context.Context, ticket id.Ticket) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE reservations SET consumed = TRUE WHERE ticket = $1 AND NOT consumed`,
		ticket.String(),
	)
	if err != nil {
		return fmt.Errorf("consume reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
