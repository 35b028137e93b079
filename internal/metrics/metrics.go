// Package metrics exposes Prometheus counters for the recurring tick and the
// HTTP surface.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RecurringProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "budgety_recurring_expenses_processed_total",
		Help: "Expenses materialized from recurring templates.",
	})

	RecurringFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "budgety_recurring_expenses_failures_total",
		Help: "Per-template failures during a recurring processing pass.",
	})

	RecurringTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "budgety_recurring_ticks_total",
		Help: "Recurring processing passes started.",
	})

	TickSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "budgety_recurring_ticks_skipped_total",
		Help: "Ticks skipped because the job lock was held elsewhere.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "budgety_http_requests_total",
		Help: "HTTP requests by method and status.",
	}, []string{"method", "status"})
)

// Handler serves the default registry at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
