// Package observability collects Prometheus metrics for the application.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics aggregates the Prometheus registry and application metrics.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	documentsCommitted   *prometheus.CounterVec
	documentsCancelled   *prometheus.CounterVec
	installmentsOverdue  prometheus.Gauge
	installmentsSettled  prometheus.Counter
}

// NewMetrics initialises the registry and base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "varejo_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "varejo_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	committed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "varejo_documents_committed_total",
		Help: "Commercial documents committed, by kind.",
	}, []string{"kind"})
	cancelled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "varejo_documents_cancelled_total",
		Help: "Commercial documents cancelled, by kind.",
	}, []string{"kind"})
	overdue := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "varejo_installments_overdue",
		Help: "Open installments past their due date, as of the last scan.",
	})
	settled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "varejo_installments_settled_total",
		Help: "Installments marked paid.",
	})
	registry.MustRegister(requests, duration, committed, cancelled, overdue, settled)
	return &Metrics{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:       requests,
		requestDuration:     duration,
		documentsCommitted:  committed,
		documentsCancelled:  cancelled,
		installmentsOverdue: overdue,
		installmentsSettled: settled,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request metrics for every HTTP request.
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

// DocumentCommitted records a committed document of the given kind.
func (m *Metrics) DocumentCommitted(kind string) {
	if m != nil {
		m.documentsCommitted.WithLabelValues(kind).Inc()
	}
}

// DocumentCancelled records a cancelled document of the given kind.
func (m *Metrics) DocumentCancelled(kind string) {
	if m != nil {
		m.documentsCancelled.WithLabelValues(kind).Inc()
	}
}

// SetOverdueInstallments updates the overdue installment gauge.
func (m *Metrics) SetOverdueInstallments(n int) {
	if m != nil {
		m.installmentsOverdue.Set(float64(n))
	}
}

// InstallmentSettled records one installment paid.
func (m *Metrics) InstallmentSettled() {
	if m != nil {
		m.installmentsSettled.Inc()
	}
}

// Registerer exposes the registry for custom metric registration.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
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
