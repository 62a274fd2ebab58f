// Package observability exposes Prometheus metrics for the API and the
// sale, adjustment and reversal protocols.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every recorder becomes a no-op.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	salesTotal           *prometheus.CounterVec
	adjustmentsTotal     *prometheus.CounterVec
	reversalsTotal       *prometheus.CounterVec
	compensationFailures *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ilara_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ilara_http_request_duration_seconds",
		Help:    "HTTP request duration by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	sales := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ilara_sales_total",
		Help: "Recorded sales by payment method.",
	}, []string{"payment_method"})
	adjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ilara_stock_adjustments_total",
		Help: "Manual stock adjustments by direction.",
	}, []string{"direction"})
	reversals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ilara_ledger_reversals_total",
		Help: "Deleted ledger entries by restitution path.",
	}, []string{"path"})
	compensations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ilara_compensation_failures_total",
		Help: "Stock changes that could not be undone after a failed ledger write.",
	}, []string{"operation"})

	registry.MustRegister(requests, duration, sales, adjustments, reversals, compensations)

	return &Metrics{
		registry:             registry,
		handler:              promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:        requests,
		requestDuration:      duration,
		salesTotal:           sales,
		adjustmentsTotal:     adjustments,
		reversalsTotal:       reversals,
		compensationFailures: compensations,
	}
}

// Handler serves /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}

	return m.handler
}

// Middleware records count and duration for every request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)

		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) SaleRecorded(paymentMethod string) {
	if m == nil {
		return
	}

	m.salesTotal.WithLabelValues(paymentMethod).Inc()
}

func (m *Metrics) StockAdjusted(delta int) {
	if m == nil {
		return
	}

	direction := "in"
	if delta < 0 {
		direction = "out"
	}

	m.adjustmentsTotal.WithLabelValues(direction).Inc()
}

// EntryReversed counts a reversal by how its stock was restored:
// structured, legacy, skipped or none.
func (m *Metrics) EntryReversed(path string) {
	if m == nil {
		return
	}

	m.reversalsTotal.WithLabelValues(path).Inc()
}

func (m *Metrics) CompensationFailed(operation string) {
	if m == nil {
		return
	}

	m.compensationFailures.WithLabelValues(operation).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	return "unknown"
}
