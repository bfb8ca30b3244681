package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	walletMovements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_movements_total",
			Help: "Wallet credits and debits by currency and result",
		},
		[]string{"direction", "currency", "result"},
	)

	settlementOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlement_outcomes_total",
			Help: "Operator payment results by outcome",
		},
		[]string{"operator", "outcome"},
	)

	conversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversions_total",
			Help: "Executed currency conversions",
		},
		[]string{"from", "to", "mode"},
	)

	withdrawalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "withdrawals_total",
			Help: "Withdrawal lifecycle events",
		},
		[]string{"currency", "stage"},
	)

	segregationTransfers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "segregation_transfers_total",
			Help: "Wallet to bank movements",
		},
		[]string{"kind", "currency"},
	)

	rateRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fx_rate_refresh_total",
			Help: "Exchange rate refresh attempts by resulting source",
		},
		[]string{"source"},
	)

	rateLocksActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fx_rate_locks_active",
			Help: "Rate locks currently held in memory",
		},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wallet_operation_duration_seconds",
			Help:    "Duration of state-changing wallet operations",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"operation"},
	)
)

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
