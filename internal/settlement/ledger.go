// Package settlement is the registry's interface to the value-holding layer.
//
// The registry never touches balances directly: it asks the ledger to hold
// funds in escrow (reserve), release a hold back to its account (reveal), or
// capture funds into the treasury (purchase). Each call is atomic — a failed
// call moves no value.
package settlement

import (
	"context"
	"errors"

	"github.com/google/uuid"

	id "vanity/pkg/domain"
)

// ErrInsufficientFunds rejects holds and captures exceeding the account
// balance. Exact amounts only: the ledger never partially fills.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrUnknownHold rejects releases of hold references the ledger is not
// holding.
var ErrUnknownHold = errors.New("unknown hold")

//go:generate mockgen -source=ledger.go -destination=mocks/mocks.go -package=mocks Ledger

// Ledger moves value between caller accounts, escrow and the treasury.
type Ledger interface {
	// Hold escrows amount from the account and returns a hold reference.
	Hold(ctx context.Context, account id.AccountID, amount id.Amount) (uuid.UUID, error)
	// Release returns a hold's funds to the account it was taken from.
	Release(ctx context.Context, holdRef uuid.UUID) error
	// Capture transfers amount from the account into the treasury.
	Capture(ctx context.Context, account id.AccountID, amount id.Amount) error
	// Balance reports the free (unheld) balance of an account.
	Balance(ctx context.Context, account id.AccountID) (id.Amount, error)
}
