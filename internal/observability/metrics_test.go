package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	return rr.Body.String()
}

func TestMetrics_MiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTeapot, rr.Code)

	body := scrape(t, metrics)
	assert.Contains(t, body, `ilara_http_requests_total{code="418",route="/test"} 1`)
	assert.Contains(t, body, `ilara_http_request_duration_seconds_bucket{route="/test"`)
}

func TestMetrics_DomainCounters(t *testing.T) {
	metrics := NewMetrics()

	metrics.SaleRecorded("Cash")
	metrics.SaleRecorded("Cash")
	metrics.StockAdjusted(-2)
	metrics.EntryReversed("legacy")
	metrics.CompensationFailed("sale")

	body := scrape(t, metrics)
	assert.Contains(t, body, `ilara_sales_total{payment_method="Cash"} 2`)
	assert.Contains(t, body, `ilara_stock_adjustments_total{direction="out"} 1`)
	assert.Contains(t, body, `ilara_ledger_reversals_total{path="legacy"} 1`)
	assert.Contains(t, body, `ilara_compensation_failures_total{operation="sale"} 1`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var metrics *Metrics

	assert.NotPanics(t, func() {
		metrics.SaleRecorded("Card")
		metrics.StockAdjusted(1)
		metrics.EntryReversed("skipped")
		metrics.CompensationFailed("adjustment")
	})

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
