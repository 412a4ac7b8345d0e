// Package metrics exposes Prometheus instruments for the advisory calls and
// the journal store.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for advisory calls.
const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeFallback = "fallback"
)

var (
	advisoryCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademind_advisory_calls_total",
			Help: "Advisory calls by operation, provider and outcome",
		},
		[]string{"operation", "provider", "outcome"},
	)

	advisoryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trademind_advisory_duration_seconds",
			Help:    "Advisory call latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"operation", "provider"},
	)

	tradesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademind_trades_recorded_total",
			Help: "Trades added or removed through the session",
		},
		[]string{"action"},
	)

	circuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trademind_circuit_open",
			Help: "1 while the named circuit is open or half-open, 0 when closed",
		},
		[]string{"circuit"},
	)

	journalDays = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trademind_journal_days",
			Help: "Number of days held in the journal store",
		},
	)
)

// RecordAdvisoryCall counts one advisory call and observes its latency.
func RecordAdvisoryCall(operation, provider, outcome string, d time.Duration) {
	advisoryCalls.WithLabelValues(operation, provider, outcome).Inc()
	advisoryDuration.WithLabelValues(operation, provider).Observe(d.Seconds())
}

// AdvisoryCalls returns the counter child for the given labels.
func AdvisoryCalls(operation, provider, outcome string) prometheus.Counter {
	return advisoryCalls.WithLabelValues(operation, provider, outcome)
}

// RecordTradeAdded counts a trade added to the journal.
func RecordTradeAdded() {
	tradesRecorded.WithLabelValues("added").Inc()
}

// RecordTradeRemoved counts a trade removed from the journal.
func RecordTradeRemoved() {
	tradesRecorded.WithLabelValues("removed").Inc()
}

// SetJournalDays reports the store size.
func SetJournalDays(n int) {
	journalDays.Set(float64(n))
}

// SetCircuitOpen reports whether a circuit is rejecting calls.
func SetCircuitOpen(name string, open bool) {
	v := 0.0
	if open {
		v = 1
	}
	circuitState.WithLabelValues(name).Set(v)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
