package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics counts money-path operations.
type Metrics struct {
	OrdersCreated     *prometheus.CounterVec
	PaymentsVerified  *prometheus.CounterVec
	LedgerPosted      *prometheus.CounterVec
	LedgerPostFailure prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "glass_orders_created_total",
			Help: "Orders created, by customer class.",
		}, []string{"customer_class"}),
		PaymentsVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "glass_payments_verified_total",
			Help: "Payment verifications applied, by leg and method.",
		}, []string{"leg", "method"}),
		LedgerPosted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "glass_ledger_entries_posted_total",
			Help: "Ledger entries posted, by entry type.",
		}, []string{"entry_type"}),
		LedgerPostFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "glass_ledger_post_failures_total",
			Help: "Ledger outbox dispatch attempts that failed.",
		}),
	}
	prometheus.MustRegister(
		m.OrdersCreated,
		m.PaymentsVerified,
		m.LedgerPosted,
		m.LedgerPostFailure,
	)
	return m
}

var Module = fx.Module("metrics",
	fx.Provide(New),
)
