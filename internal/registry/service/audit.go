package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	id "vanity/pkg/domain"
	audit "vanity/pkg/platform/audit"
	"vanity/pkg/platform/audit/publisher"
	"vanity/pkg/requestcontext"
)

// auditEmitter forwards registry lifecycle events to the audit publisher.
// Audit failure never fails the operation that produced the event; it is
// logged and the operation proceeds.
type auditEmitter struct {
	logger    *slog.Logger
	publisher *publisher.Publisher
}

func newAuditEmitter(logger *slog.Logger, p *publisher.Publisher) *auditEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &auditEmitter{logger: logger, publisher: p}
}

func (e *auditEmitter) emit(ctx context.Context, event audit.Event) {
	if e.publisher == nil {
		return
	}
	event.ID = uuid.New()
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	if err := e.publisher.Emit(ctx, event); err != nil {
		e.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

// emitReserved records the commit phase. Only the ticket is logged — the
// name is exactly what a reservation does not reveal.
func (e *auditEmitter) emitReserved(ctx context.Context, t id.Ticket, account id.AccountID, advance id.Amount) {
	e.emit(ctx, audit.Event{
		Action:  audit.ActionNameReserved,
		Ticket:  t.String(),
		Account: account,
		Amount:  advance,
	})
}

func (e *auditEmitter) emitPurchased(ctx context.Context, name string, account id.AccountID, payment id.Amount) {
	e.emit(ctx, audit.Event{
		Action:  audit.ActionNamePurchased,
		Name:    name,
		Account: account,
		Amount:  payment,
	})
}

func (e *auditEmitter) emitClaimed(ctx context.Context, name string, account id.AccountID) {
	e.emit(ctx, audit.Event{
		Action:  audit.ActionNameClaimed,
		Name:    name,
		Account: account,
	})
}

func (e *auditEmitter) emitRenewed(ctx context.Context, name string, account id.AccountID) {
	e.emit(ctx, audit.Event{
		Action:  audit.ActionNameRenewed,
		Name:    name,
		Account: account,
	})
}

// emitLapsed records the previous owner losing a lapsed name to a new
// purchase.
func (e *auditEmitter) emitLapsed(ctx context.Context, name string, previousOwner id.AccountID) {
	e.emit(ctx, audit.Event{
		Action:  audit.ActionNameLapsed,
		Name:    name,
		Account: previousOwner,
	})
}
