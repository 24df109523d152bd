// Package audit records the registry's lifecycle events: every reservation,
// purchase, claim, renewal and lapse, with the account and exact amounts
// involved. Events are appended to a store and optionally forwarded to a
// Kafka sink.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "vanity/pkg/domain"
)

// Action names a registry lifecycle event.
type Action string

const (
	ActionNameReserved  Action = "name.reserved"
	ActionNamePurchased Action = "name.purchased"
	ActionNameClaimed   Action = "name.claimed"
	ActionNameRenewed   Action = "name.renewed"
	ActionNameLapsed    Action = "name.lapsed"
)

// Event is one audit record. Name is empty for reservation events — the name
// is exactly what a reservation does not reveal.
type Event struct {
	ID        uuid.UUID    `json:"id"`
	Action    Action       `json:"action"`
	Name      string       `json:"name,omitempty"`
	Ticket    string       `json:"ticket,omitempty"`
	Account   id.AccountID `json:"account"`
	Amount    id.Amount    `json:"amount,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByAccount(ctx context.Context, account id.AccountID) ([]Event, error)
}

// Sink forwards audit events to an external system (Kafka in production).
type Sink interface {
	Publish(ctx context.Context, event Event) error
	Close()
}
