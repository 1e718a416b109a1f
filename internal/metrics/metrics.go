// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "spendly"

// LedgerOperations counts ledger actions by operation and outcome.
var LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "operations_total",
	Help:      "Ledger operations by name and outcome.",
}, []string{"op", "outcome"})

// LedgerConflicts counts optimistic-concurrency retries.
var LedgerConflicts = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "version_conflicts_total",
	Help:      "Writes rejected because the stored ledger changed since it was read.",
})

// EventPublishFailures counts events that could not be handed to the broker.
var EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "events",
	Name:      "publish_failures_total",
	Help:      "Events dropped because publishing failed.",
}, []string{"type"})

// HTTPRequestDuration observes API latency by route pattern.
var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by method, route and status code.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route", "code"})

// Outcome classifies an operation result for the outcome label.
func Outcome(err error, classes map[error]string) string {
	if err == nil {
		return "ok"
	}

	for target, label := range classes {
		if errors.Is(err, target) {
			return label
		}
	}

	return "error"
}

// Middleware records HTTPRequestDuration for every request served by a chi router.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HTTPRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
