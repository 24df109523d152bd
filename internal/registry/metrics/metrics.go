package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry module: lifecycle counters
// and operation latencies for the two critical paths.
type Metrics struct {
	ReservationsCreated prometheus.Counter
	NamesPurchased      prometheus.Counter
	NamesClaimed        prometheus.Counter
	NamesRenewed        prometheus.Counter
	NamesLapsed         prometheus.Counter
	ReserveDuration     prometheus.Histogram
	BuyDuration         prometheus.Histogram
}

// New creates a Metrics instance with all registry metrics registered.
func New() *Metrics {
	return &Metrics{
		ReservationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vanity_reservations_created_total",
			Help: "Total number of reservations created",
		}),
		NamesPurchased: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vanity_names_purchased_total",
			Help: "Total number of names purchased",
		}),
		NamesClaimed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vanity_names_claimed_total",
			Help: "Total number of names claimed",
		}),
		NamesRenewed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vanity_names_renewed_total",
			Help: "Total number of name renewals",
		}),
		NamesLapsed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vanity_names_lapsed_total",
			Help: "Total number of lapsed ownerships replaced by a new purchase",
		}),
		ReserveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vanity_reserve_duration_seconds",
			Help:    "Duration of reserve operations (commit phase)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		BuyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vanity_buy_duration_seconds",
			Help:    "Duration of buy operations (reveal phase)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveReserve records the duration of a reserve operation.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveReserve(start time.Time) {
	m.ReserveDuration.Observe(time.Since(start).Seconds())
}

// ObserveBuy records the duration of a buy operation.
func (m *Metrics) ObserveBuy(start time.Time) {
	m.BuyDuration.Observe(time.Since(start).Seconds())
}
