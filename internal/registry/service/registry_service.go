package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	registrymetrics "vanity/internal/registry/metrics"
	"vanity/internal/registry/models"
	"vanity/internal/registry/ticket"
	"vanity/internal/settlement"
	id "vanity/pkg/domain"
	dErrors "vanity/pkg/domain-errors"
	"vanity/pkg/platform/sentinel"
	"vanity/pkg/requestcontext"
)

const maxNameLength = 128

// Reserve creates the advance-backed commit for a ticket. The payment must
// be exactly the configured advance; it is escrowed by the settlement ledger
// until the reservation is consumed by Buy.
func (s *Service) Reserve(ctx context.Context, t id.Ticket, payment id.Amount) error {
	ctx, span := s.tracer.Start(ctx, "registry.Reserve")
	defer span.End()
	span.SetAttributes(attribute.String("ticket", t.String()))
	start := time.Now()

	caller, err := requireCaller(ctx)
	if err != nil {
		return err
	}
	if t.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "ticket is required")
	}
	if payment != s.cfg.Advance {
		return dErrors.New(dErrors.CodePaymentMismatch,
			fmt.Sprintf("advance payment must be exactly %s", s.cfg.Advance))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := requestcontext.Now(ctx)

	holdRef, err := s.ledger.Hold(ctx, caller, payment)
	if err != nil {
		if errors.Is(err, settlement.ErrInsufficientFunds) {
			return dErrors.New(dErrors.CodePaymentMismatch, "insufficient funds for advance")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hold advance")
	}

	r := models.NewReservation(t, caller, payment, holdRef, now)
	if err := s.reservations.Create(ctx, r); err != nil {
		// The hold was taken before the conflicting record was seen;
		// return it so a failed reserve moves no value.
		if releaseErr := s.ledger.Release(ctx, holdRef); releaseErr != nil {
			return dErrors.Wrap(releaseErr, dErrors.CodeInternal, "failed to release advance after rejected reservation")
		}
		if errors.Is(err, sentinel.ErrConflict) || errors.Is(err, sentinel.ErrAlreadyUsed) {
			return dErrors.New(dErrors.CodeConflict, "reservation exists")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create reservation")
	}

	s.incrementCounter(func(m *registrymetrics.Metrics) {
		m.ReservationsCreated.Inc()
		m.ObserveReserve(start)
	})
	s.audit.emitReserved(ctx, t, caller, payment)
	return nil
}

// Buy reveals the name behind a reservation and completes the purchase.
// The payment must be exactly advance + fee; on success the escrowed advance
// is released back to the claimant, so the net cost of a completed
// acquisition is advance + fee.
func (s *Service) Buy(ctx context.Context, t id.Ticket, name string, payment id.Amount) error {
	ctx, span := s.tracer.Start(ctx, "registry.Buy")
	defer span.End()
	span.SetAttributes(attribute.String("name", name))
	start := time.Now()

	caller, err := requireCaller(ctx)
	if err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := requestcontext.Now(ctx)

	res, err := s.reservations.Find(ctx, t)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "reservation does not exist")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load reservation")
	}
	// The stored ticket must be derivable from (name, caller): that is the
	// proof the caller committed to exactly this name. A mismatch gets the
	// same answer as a missing reservation so nothing about other commits
	// leaks.
	if res.Claimant != caller || ticket.Compute(name, caller) != t {
		return dErrors.New(dErrors.CodeNotFound, "reservation does not exist")
	}

	lapsed := false
	existing, err := s.ownerships.Find(ctx, name)
	switch {
	case err == nil:
		if !existing.Lapsed(now) {
			return dErrors.New(dErrors.CodeConflict, "name taken")
		}
		lapsed = true
	case errors.Is(err, sentinel.ErrNotFound):
		// Unowned.
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ownership")
	}

	required := s.cfg.Advance + s.fees.Calculate(name)
	if payment != required {
		return dErrors.New(dErrors.CodePaymentMismatch,
			fmt.Sprintf("payment must be exactly advance plus fee (%s)", required))
	}

	// Value moves first: a capture rejection aborts before any registry
	// mutation. The steps after it cannot be rolled back through the ledger
	// interface, so a store failure past this point leaves the payment in
	// the treasury and the reservation intact, surfaces as an internal
	// error, and needs ledger reconciliation before a retry. The in-memory
	// stores cannot fail here; only the postgres/redis variants can, on
	// transport errors.
	if err := s.ledger.Capture(ctx, caller, payment); err != nil {
		if errors.Is(err, settlement.ErrInsufficientFunds) {
			return dErrors.New(dErrors.CodePaymentMismatch, "insufficient funds for purchase")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to capture payment")
	}
	if err := s.ledger.Release(ctx, res.HoldRef); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to release reservation advance")
	}
	if err := s.reservations.Consume(ctx, t); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to retire reservation")
	}

	o := models.NewOwnership(name, caller, now, s.cfg.LockingPeriod, s.cfg.RenewPeriod)
	if err := s.ownerships.Put(ctx, o); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record ownership")
	}

	if lapsed {
		s.incrementCounter(func(m *registrymetrics.Metrics) { m.NamesLapsed.Inc() })
		s.audit.emitLapsed(ctx, name, existing.Owner)
	}
	s.incrementCounter(func(m *registrymetrics.Metrics) {
		m.NamesPurchased.Inc()
		m.ObserveBuy(start)
	})
	s.audit.emitPurchased(ctx, name, caller, payment)
	return nil
}

// Claim finalizes ownership once the locking period has elapsed. Checks run
// temporal window, then authorization, then state, so each failure mode is
// distinguishable.
func (s *Service) Claim(ctx context.Context, name string) error {
	ctx, span := s.tracer.Start(ctx, "registry.Claim")
	defer span.End()
	span.SetAttributes(attribute.String("name", name))

	caller, err := requireCaller(ctx)
	if err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := requestcontext.Now(ctx)

	_, err = s.ownerships.Execute(ctx, name,
		func(o *models.Ownership) error {
			if err := o.InClaimWindow(now); err != nil {
				return err
			}
			if !o.IsOwnedBy(caller) {
				return dErrors.New(dErrors.CodeForbidden, "access not allowed")
			}
			return o.CanClaim()
		},
		func(o *models.Ownership) {
			o.ApplyClaim()
		},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "name is not registered")
		}
		return err
	}

	s.incrementCounter(func(m *registrymetrics.Metrics) { m.NamesClaimed.Inc() })
	s.audit.emitClaimed(ctx, name, caller)
	return nil
}

// Renew extends the lock from within the renewal window immediately
// preceding expiry, preserving the record's state.
func (s *Service) Renew(ctx context.Context, name string) error {
	ctx, span := s.tracer.Start(ctx, "registry.Renew")
	defer span.End()
	span.SetAttributes(attribute.String("name", name))

	caller, err := requireCaller(ctx)
	if err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := requestcontext.Now(ctx)

	_, err = s.ownerships.Execute(ctx, name,
		func(o *models.Ownership) error {
			if err := o.CanRenew(now); err != nil {
				return err
			}
			if !o.IsOwnedBy(caller) {
				return dErrors.New(dErrors.CodeForbidden, "access not allowed")
			}
			return nil
		},
		func(o *models.Ownership) {
			o.ApplyRenewal(now, s.cfg.LockingPeriod, s.cfg.RenewPeriod)
		},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "name is not registered")
		}
		return err
	}

	s.incrementCounter(func(m *registrymetrics.Metrics) { m.NamesRenewed.Inc() })
	s.audit.emitRenewed(ctx, name, caller)
	return nil
}

// Lookup reports the ownership record for a name. Read-only and lapse-aware:
// a Purchased record past its lock is reported as lapsed but not mutated.
func (s *Service) Lookup(ctx context.Context, name string) (*models.Ownership, bool, error) {
	if err := validateName(name); err != nil {
		return nil, false, err
	}
	now := requestcontext.Now(ctx)

	o, err := s.ownerships.Find(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, dErrors.New(dErrors.CodeNotFound, "name is not registered")
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ownership")
	}
	return o, o.Lapsed(now), nil
}

func requireCaller(ctx context.Context) (id.AccountID, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return "", dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}
	return caller, nil
}

func validateName(name string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeBadRequest, "name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("name must be %d characters or less", maxNameLength))
	}
	return nil
}
