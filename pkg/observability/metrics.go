package observability

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge

	// Billing / plan resolution metrics
	PlanResolutionsTotal  *prometheus.CounterVec
	SeatAdjustmentsTotal  *prometheus.CounterVec
	BillingRequestsTotal  *prometheus.CounterVec
	BillingRequestSeconds *prometheus.HistogramVec
	SeatDrift             *prometheus.GaugeVec

	registry *prometheus.Registry
}

// Plan resolution sources, used as the "source" label on PlanResolutionsTotal.
const (
	ResolutionSourceBilling  = "billing"
	ResolutionSourceManual   = "manual"
	ResolutionSourceFallback = "fallback"
)

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vizboard_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vizboard_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		DBConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vizboard_db_connections_active",
			Help: "Number of active database connections",
		}),
		DBConnectionsIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vizboard_db_connections_idle",
			Help: "Number of idle database connections",
		}),
		PlanResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vizboard_plan_resolutions_total",
				Help: "Total plan resolutions by source (billing, manual, fallback)",
			},
			[]string{"source"},
		),
		SeatAdjustmentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vizboard_seat_adjustments_total",
				Help: "Total billing seat adjustments by direction",
			},
			[]string{"direction"},
		),
		BillingRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vizboard_billing_requests_total",
				Help: "Total billing gateway calls by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		BillingRequestSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vizboard_billing_request_duration_seconds",
				Help:    "Billing gateway call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		SeatDrift: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vizboard_seat_drift",
				Help: "Member count minus plan seat count per team, as observed by the reconciler",
			},
			[]string{"team_id"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
		m.PlanResolutionsTotal,
		m.SeatAdjustmentsTotal,
		m.BillingRequestsTotal,
		m.BillingRequestSeconds,
		m.SeatDrift,
	)

	return m
}

// Handler returns the HTTP handler exposing the metrics registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one HTTP request
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveBillingCall records one billing gateway call
func (m *Metrics) ObserveBillingCall(operation, status string, duration time.Duration) {
	m.BillingRequestsTotal.WithLabelValues(operation, status).Inc()
	m.BillingRequestSeconds.WithLabelValues(operation).Observe(duration.Seconds())
}

// CollectDBStats copies database pool stats into the gauges
func (m *Metrics) CollectDBStats(db *sql.DB) {
	if db == nil {
		return
	}
	stats := db.Stats()
	m.DBConnectionsActive.Set(float64(stats.InUse))
	m.DBConnectionsIdle.Set(float64(stats.Idle))
}

// Middleware instruments an HTTP handler with request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.ObserveHTTPRequest(r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
