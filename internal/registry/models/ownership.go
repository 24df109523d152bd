package models

import (
	"time"

	id "vanity/pkg/domain"
	dErrors "vanity/pkg/domain-errors"
)

// OwnershipState tracks a name through its lifecycle.
// Unowned is represented by the absence of a record; a Purchased record past
// its lock without claim or renewal has lapsed and is replaceable at the next
// purchase.
type OwnershipState string

const (
	StatePurchased OwnershipState = "purchased"
	StateClaimed   OwnershipState = "claimed"
)

// Ownership is the record of a purchased name.
//
// Invariants:
//   - Each name maps to at most one record at a time.
//   - LockedUntil = PurchasedAt + lockingPeriod (recomputed from `now` on
//     renewal); RenewableFrom = LockedUntil - renewPeriod.
//   - State transitions Purchased → Claimed only; renewal preserves state.
//   - Claimed records never lapse.
type Ownership struct {
	Name          string
	Owner         id.AccountID
	PurchasedAt   time.Time
	LockedUntil   time.Time
	RenewableFrom time.Time
	State         OwnershipState
}

// NewOwnership creates a freshly purchased record with its temporal windows
// derived from `now`.
func NewOwnership(name string, owner id.AccountID, now time.Time, lockingPeriod, renewPeriod time.Duration) *Ownership {
	lockedUntil := now.Add(lockingPeriod)
	return &Ownership{
		Name:          name,
		Owner:         owner,
		PurchasedAt:   now,
		LockedUntil:   lockedUntil,
		RenewableFrom: lockedUntil.Add(-renewPeriod),
		State:         StatePurchased,
	}
}

// Lapsed reports whether the record no longer protects the name: Purchased,
// lock expired, never claimed or renewed past `now`. A lapsed name is
// replaceable by the next purchase.
func (o *Ownership) Lapsed(now time.Time) bool {
	return o.State == StatePurchased && !now.Before(o.LockedUntil)
}

// InClaimWindow validates the temporal half of a claim: the locking period
// must have elapsed. Checked before authorization so an early claim is
// reported as "not allowed yet" regardless of who asks.
func (o *Ownership) InClaimWindow(now time.Time) error {
	if now.Before(o.LockedUntil) {
		return dErrors.New(dErrors.CodeTooEarly, "not allowed yet")
	}
	return nil
}

// CanClaim validates the state half of a claim. A second claim is an
// explicit error, not a no-op, to surface caller misuse.
func (o *Ownership) CanClaim() error {
	if o.State != StatePurchased {
		return dErrors.New(dErrors.CodeConflict, "name already claimed")
	}
	return nil
}

// ApplyClaim transitions the record to Claimed. Call CanClaim first.
func (o *Ownership) ApplyClaim() {
	o.State = StateClaimed
}

// CanRenew validates the renewal window [RenewableFrom, LockedUntil) at
// `now`. Half-open: renewal at the exact instant the lock expires is already
// too late.
func (o *Ownership) CanRenew(now time.Time) error {
	if now.Before(o.RenewableFrom) || !now.Before(o.LockedUntil) {
		return dErrors.New(dErrors.CodeOutsideWindow, "outside renewal window")
	}
	return nil
}

// ApplyRenewal extends the lock from `now`, preserving state. Call CanRenew
// first.
func (o *Ownership) ApplyRenewal(now time.Time, lockingPeriod, renewPeriod time.Duration) {
	o.LockedUntil = now.Add(lockingPeriod)
	o.RenewableFrom = o.LockedUntil.Add(-renewPeriod)
}

// IsOwnedBy reports whether the caller is the recorded owner.
func (o *Ownership) IsOwnedBy(caller id.AccountID) bool {
	return o.Owner == caller
}
