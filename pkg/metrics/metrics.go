// Package metrics exposes Prometheus collectors for the HTTP layer and the ledger.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groupsplit_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "groupsplit_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// ExpensesCreated counts expenses accepted by the ledger.
	ExpensesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupsplit_expenses_created_total",
		Help: "Expenses persisted.",
	})

	// ValidationFailures counts rejected expense payloads.
	ValidationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupsplit_expense_validation_failures_total",
		Help: "Expense payloads rejected by validation.",
	})

	// SettlementsComputed counts settlement calculations.
	SettlementsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupsplit_settlements_computed_total",
		Help: "Settlement calculations served.",
	})

	// GroupsSettled counts successful settle actions.
	GroupsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupsplit_groups_settled_total",
		Help: "Groups marked as settled.",
	})

	// CreditsPurchased counts credits added through verified orders.
	CreditsPurchased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groupsplit_credits_purchased_total",
		Help: "Credits granted after verified payments.",
	})
)

// Middleware records request count and latency keyed by the chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
