package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	CreditsApplied prometheus.Counter
	CreditAmount   prometheus.Histogram
	DebitsApplied  prometheus.Counter
	DebitAmount    prometheus.Histogram
	DebitsRejected prometheus.Counter
	AccountBalance *prometheus.GaugeVec

	// Charge metrics
	ChargesAttempted *prometheus.CounterVec
	ChargesSettled   *prometheus.CounterVec
	ChargesRejected  *prometheus.CounterVec
	ChargeAmount     prometheus.Histogram

	// Delivery quote metrics
	QuotesCreated   prometheus.Counter
	QuotesConfirmed prometheus.Counter
	QuotesExpired   prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		CreditsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentledger_credits_total",
			Help: "Total number of credits applied",
		}),
		CreditAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "agentledger_credit_amount",
			Help:    "Credit amounts",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500},
		}),
		DebitsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentledger_debits_total",
			Help: "Total number of debits applied",
		}),
		DebitAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "agentledger_debit_amount",
			Help:    "Debit amounts",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500},
		}),
		DebitsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentledger_debits_rejected_total",
			Help: "Total number of debits rejected for insufficient funds",
		}),
		AccountBalance: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "agentledger_account_balance",
				Help: "Current account balance",
			},
			[]string{"account", "currency"},
		),

		ChargesAttempted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentledger_charges_attempted_total",
				Help: "Total paid operations attempted by operation",
			},
			[]string{"operation"},
		),
		ChargesSettled: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentledger_charges_settled_total",
				Help: "Total paid operations charged by operation",
			},
			[]string{"operation"},
		),
		ChargesRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentledger_charges_rejected_total",
				Help: "Total paid operations rejected by operation and reason",
			},
			[]string{"operation", "reason"},
		),
		ChargeAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "agentledger_charge_amount",
			Help:    "Settled charge amounts",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
		}),

		QuotesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentledger_delivery_quotes_created_total",
			Help: "Total delivery quotes created",
		}),
		QuotesConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentledger_delivery_quotes_confirmed_total",
			Help: "Total delivery quotes confirmed and dispatched",
		}),
		QuotesExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentledger_delivery_quotes_expired_total",
			Help: "Total delivery quotes that expired before confirmation",
		}),
	}
}
