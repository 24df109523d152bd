package settlement

import (
	"context"
	"sync"

	"github.com/google/uuid"

	id "vanity/pkg/domain"
)

type hold struct {
	account id.AccountID
	amount  id.Amount
}

// InMemoryLedger is the single-node ledger implementation. Balances, holds
// and the treasury live in process memory; accounts are funded through
// Credit.
type InMemoryLedger struct {
	mu       sync.Mutex
	balances map[id.AccountID]id.Amount
	holds    map[uuid.UUID]hold
	treasury id.Amount
}

func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{
		balances: make(map[id.AccountID]id.Amount),
		holds:    make(map[uuid.UUID]hold),
	}
}

// Credit funds an account. Deployment seeding and tests only; the registry
// itself never credits anyone.
func (l *InMemoryLedger) Credit(_ context.Context, account id.AccountID, amount id.Amount) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
}

func (l *InMemoryLedger) Hold(_ context.Context, account id.AccountID, amount id.Amount) (uuid.UUID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[account] < amount {
		return uuid.Nil, ErrInsufficientFunds
	}
	ref := uuid.New()
	l.balances[account] -= amount
	l.holds[ref] = hold{account: account, amount: amount}
	return ref, nil
}

func (l *InMemoryLedger) Release(_ context.Context, holdRef uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	h, ok := l.holds[holdRef]
	if !ok {
		return ErrUnknownHold
	}
	delete(l.holds, holdRef)
	l.balances[h.account] += h.amount
	return nil
}

func (l *InMemoryLedger) Capture(_ context.Context, account id.AccountID, amount id.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[account] < amount {
		return ErrInsufficientFunds
	}
	l.balances[account] -= amount
	l.treasury += amount
	return nil
}

func (l *InMemoryLedger) Balance(_ context.Context, account id.AccountID) (id.Amount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account], nil
}

// TreasuryBalance reports captured revenue. Used by tests to assert exact
// value movement.
func (l *InMemoryLedger) TreasuryBalance() id.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.treasury
}
