package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"vanity/internal/registry/ticket"
	ownershipstore "vanity/internal/registry/store/ownership"
	reservationstore "vanity/internal/registry/store/reservation"
	"vanity/internal/settlement"
	"vanity/internal/settlement/mocks"
	id "vanity/pkg/domain"
	dErrors "vanity/pkg/domain-errors"
	"vanity/pkg/requestcontext"
)

// These tests pin down how settlement failures surface: expected ledger
// rejections map to payment errors, everything else to internal errors, and
// no operation leaves a dangling reservation behind a failed value movement.
type LedgerFailureSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	ledger       *mocks.MockLedger
	reservations *reservationstore.InMemory
	svc          *Service
}

func (s *LedgerFailureSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.ledger = mocks.NewMockLedger(s.ctrl)
	s.reservations = reservationstore.NewInMemory()
	s.svc = New(
		Config{
			BasePrice:     100,
			Advance:       500,
			LockingPeriod: 72 * time.Hour,
			RenewPeriod:   24 * time.Hour,
		},
		s.reservations,
		ownershipstore.NewInMemory(),
		s.ledger,
	)
}

func (s *LedgerFailureSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestLedgerFailureSuite(t *testing.T) {
	suite.Run(t, new(LedgerFailureSuite))
}

func (s *LedgerFailureSuite) ctxAs(account id.AccountID) context.Context {
	ctx := requestcontext.WithCaller(context.Background(), account)
	return requestcontext.WithTime(ctx, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
}

func (s *LedgerFailureSuite) TestReserveHoldFailure() {
	s.Run("insufficient funds maps to a payment error", func() {
		s.ledger.EXPECT().
			Hold(gomock.Any(), id.AccountID("alice"), id.Amount(500)).
			Return(uuid.Nil, settlement.ErrInsufficientFunds)

		err := s.svc.Reserve(s.ctxAs("alice"), ticket.Compute("name", "alice"), 500)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePaymentMismatch))
	})

	s.Run("unexpected ledger failure maps to internal", func() {
		s.ledger.EXPECT().
			Hold(gomock.Any(), id.AccountID("alice"), id.Amount(500)).
			Return(uuid.Nil, errors.New("ledger unavailable"))

		err := s.svc.Reserve(s.ctxAs("alice"), ticket.Compute("name2", "alice"), 500)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *LedgerFailureSuite) TestReserveConflictReleasesHold() {
	holdRef := uuid.New()
	t := ticket.Compute("contested", "alice")

	// First reserve takes a hold and succeeds.
	s.ledger.EXPECT().
		Hold(gomock.Any(), id.AccountID("alice"), id.Amount(500)).
		Return(holdRef, nil)
	s.Require().NoError(s.svc.Reserve(s.ctxAs("alice"), t, 500))

	// Second reserve takes a hold, hits the duplicate, and must give it back.
	secondRef := uuid.New()
	s.ledger.EXPECT().
		Hold(gomock.Any(), id.AccountID("alice"), id.Amount(500)).
		Return(secondRef, nil)
	s.ledger.EXPECT().Release(gomock.Any(), secondRef).Return(nil)

	err := s.svc.Reserve(s.ctxAs("alice"), t, 500)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *LedgerFailureSuite) TestBuyCaptureFailure() {
	holdRef := uuid.New()
	t := ticket.Compute("name", "alice")
	s.ledger.EXPECT().
		Hold(gomock.Any(), id.AccountID("alice"), id.Amount(500)).
		Return(holdRef, nil)
	s.Require().NoError(s.svc.Reserve(s.ctxAs("alice"), t, 500))

	s.Run("insufficient funds maps to a payment error", func() {
		s.ledger.EXPECT().
			Capture(gomock.Any(), id.AccountID("alice"), id.Amount(900)).
			Return(settlement.ErrInsufficientFunds)

		err := s.svc.Buy(s.ctxAs("alice"), t, "name", 900)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePaymentMismatch))
	})

	s.Run("the reservation survives a failed capture", func() {
		found, err := s.reservations.Find(context.Background(), t)
		s.Require().NoError(err)
		s.Equal(holdRef, found.HoldRef)
	})

	s.Run("unexpected capture failure maps to internal", func() {
		s.ledger.EXPECT().
			Capture(gomock.Any(), id.AccountID("alice"), id.Amount(900)).
			Return(errors.New("ledger unavailable"))

		err := s.svc.Buy(s.ctxAs("alice"), t, "name", 900)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *LedgerFailureSuite) TestBuyReleaseFailure() {
	holdRef := uuid.New()
	t := ticket.Compute("name", "alice")
	s.ledger.EXPECT().
		Hold(gomock.Any(), id.AccountID("alice"), id.Amount(500)).
		Return(holdRef, nil)
	s.Require().NoError(s.svc.Reserve(s.ctxAs("alice"), t, 500))

	s.ledger.EXPECT().
		Capture(gomock.Any(), id.AccountID("alice"), id.Amount(900)).
		Return(nil)
	s.ledger.EXPECT().Release(gomock.Any(), holdRef).Return(settlement.ErrUnknownHold)

	err := s.svc.Buy(s.ctxAs("alice"), t, "name", 900)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	s.Run("the registry stays untouched pending reconciliation", func() {
		// The payment is in the treasury, but the reservation is not
		// retired and no ownership is written. Nothing here can be
		// rolled back through the ledger; the state has to be readable
		// for an operator to reconcile.
		found, err := s.reservations.Find(context.Background(), t)
		s.Require().NoError(err)
		s.Equal(holdRef, found.HoldRef)

		_, _, err = s.svc.Lookup(s.ctxAs("alice"), "name")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
