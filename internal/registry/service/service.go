// Package service implements the reservation registry: the commit-reveal
// protocol (reserve, buy) and the ownership lifecycle (claim, renew, lapse).
//
// All mutating operations serialize through one mutex, giving the single
// total order the protocol's atomicity guarantees assume: an operation either
// fully applies or leaves every store and ledger hold unchanged. The
// operation clock is read once per call from requestcontext.Now.
package service

import (
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"vanity/internal/registry/fee"
	registrymetrics "vanity/internal/registry/metrics"
	"vanity/internal/registry/ticket"
	"vanity/internal/settlement"
	id "vanity/pkg/domain"
	"vanity/pkg/platform/audit/publisher"
)

// Config carries the registry's economic and temporal constants. They are
// fixed at construction and exposed read-only.
type Config struct {
	BasePrice     id.Amount
	Advance       id.Amount
	LockingPeriod time.Duration
	RenewPeriod   time.Duration
}

// Service orchestrates reservations and ownerships against the settlement
// ledger.
type Service struct {
	// mu serializes Reserve/Buy/Claim/Renew into one total order.
	mu sync.Mutex

	cfg          Config
	fees         *fee.Calculator
	reservations ReservationStore
	ownerships   OwnershipStore
	ledger       settlement.Ledger

	audit   *auditEmitter
	metrics *registrymetrics.Metrics
	tracer  trace.Tracer
}

type serviceConfig struct {
	logger    *slog.Logger
	metrics   *registrymetrics.Metrics
	publisher *publisher.Publisher
}

// Option configures optional service collaborators.
type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *serviceConfig) { cfg.logger = logger }
}

func WithMetrics(m *registrymetrics.Metrics) Option {
	return func(cfg *serviceConfig) { cfg.metrics = m }
}

func WithAuditPublisher(p *publisher.Publisher) Option {
	return func(cfg *serviceConfig) { cfg.publisher = p }
}

func New(cfg Config, reservations ReservationStore, ownerships OwnershipStore, ledger settlement.Ledger, opts ...Option) *Service {
	sc := &serviceConfig{}
	for _, opt := range opts {
		opt(sc)
	}
	return &Service{
		cfg:          cfg,
		fees:         fee.NewCalculator(cfg.BasePrice),
		reservations: reservations,
		ownerships:   ownerships,
		ledger:       ledger,
		audit:        newAuditEmitter(sc.logger, sc.publisher),
		metrics:      sc.metrics,
		tracer:       otel.Tracer("vanity/registry"),
	}
}

// BasePrice exposes the configured base price.
func (s *Service) BasePrice() id.Amount {
	return s.fees.BasePrice()
}

// CalculateFee prices a name: 4x base for all-ASCII, 6x for any name with a
// multi-byte character.
func (s *Service) CalculateFee(name string) id.Amount {
	return s.fees.Calculate(name)
}

// Advance is the exact payment required to create a reservation.
func (s *Service) Advance() id.Amount {
	return s.cfg.Advance
}

// LockingAmount is the worst-case total cost of a full acquisition: the
// advance plus the vanity-tier fee. Informational only.
func (s *Service) LockingAmount() id.Amount {
	return s.cfg.Advance + s.fees.VanityFee()
}

// LockingPeriod is the duration after purchase before a name may be claimed.
func (s *Service) LockingPeriod() time.Duration {
	return s.cfg.LockingPeriod
}

// RenewPeriod is the width of the renewal window preceding lock expiry.
func (s *Service) RenewPeriod() time.Duration {
	return s.cfg.RenewPeriod
}

// ReservationID derives the ticket for (name, claimant), optionally salted.
// Pure; identical to the client-side computation.
func (s *Service) ReservationID(name string, claimant id.AccountID, salt ...[]byte) id.Ticket {
	return ticket.Compute(name, claimant, salt...)
}

func (s *Service) incrementCounter(inc func(*registrymetrics.Metrics)) {
	if s.metrics != nil {
		inc(s.metrics)
	}
}
