package balance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recomputeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "splitzer",
		Subsystem: "balance",
		Name:      "recompute_duration_seconds",
		Help:      "Time spent recomputing pair balances after a mutation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	expenseUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "splitzer",
		Subsystem: "balance",
		Name:      "expense_updates_total",
		Help:      "Number of per-expense balance updates processed.",
	})

	fullRecalcs = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "splitzer",
		Subsystem: "balance",
		Name:      "full_recalcs_total",
		Help:      "Number of full-ledger balance recalculations run.",
	})
)
