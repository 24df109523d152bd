package service

import (
	"context"

	"vanity/internal/registry/models"
	id "vanity/pkg/domain"
)

// ReservationStore holds advance-payment-backed commits keyed by ticket.
// Implementations return pkg/platform/sentinel errors:
//   - Create: ErrConflict for an active duplicate, ErrAlreadyUsed for a
//     retired ticket
//   - Find: ErrNotFound when no active reservation exists
//   - Consume: ErrNotFound when no active reservation exists
//
// A consumed ticket is retired permanently and can never back another
// reservation.
type ReservationStore interface {
	Create(ctx context.Context, r *models.Reservation) error
	Find(ctx context.Context, ticket id.Ticket) (*models.Reservation, error)
	Consume(ctx context.Context, ticket id.Ticket) error
}

// OwnershipStore holds ownership records keyed by name.
//   - Find: ErrNotFound when the name is unowned
//   - Put: creates or replaces the record for its name (purchases, including
//     replacement of a lapsed record)
//   - Execute: atomic validate-then-mutate on an existing record; the store
//     holds its lock (mutex or FOR UPDATE) across both callbacks and returns
//     ErrNotFound if the name is unowned
type OwnershipStore interface {
	Find(ctx context.Context, name string) (*models.Ownership, error)
	Put(ctx context.Context, o *models.Ownership) error
	Execute(ctx context.Context, name string, validate func(*models.Ownership) error, mutate func(*models.Ownership)) (*models.Ownership, error)
}
