package models

import (
	"time"

	"github.com/google/uuid"

	id "vanity/pkg/domain"
)

// Reservation is the advance-payment-backed commit for a not-yet-revealed
// name.
//
// Invariants:
//   - A ticket maps to at most one active reservation.
//   - Once consumed by a successful purchase the ticket is retired and can
//     never back another reservation.
//   - Records are created by Reserve and consumed by Buy; nothing mutates
//     them in between.
type Reservation struct {
	Ticket      id.Ticket
	Claimant    id.AccountID
	AdvancePaid id.Amount
	CreatedAt   time.Time

	// HoldRef identifies the settlement-layer hold escrow for the advance.
	// Released back to the claimant when the reservation is consumed.
	HoldRef uuid.UUID
}

func NewReservation(ticket id.Ticket, claimant id.AccountID, advance id.Amount, holdRef uuid.UUID, now time.Time) *Reservation {
	return &Reservation{
		Ticket:      ticket,
		Claimant:    claimant,
		AdvancePaid: advance,
		CreatedAt:   now,
		HoldRef:     holdRef,
	}
}
