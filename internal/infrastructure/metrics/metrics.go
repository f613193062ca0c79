// Package metrics exposes Prometheus collectors for the price feed and HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/cache"
)

const namespace = "pricefeed"

// Metrics holds the service collectors and the registry they belong to
type Metrics struct {
	registry *prometheus.Registry

	refreshes       *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	price           prometheus.Gauge
	lastSuccess     prometheus.Gauge

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "feed",
				Name:      "refreshes_total",
				Help:      "Total number of settled price refreshes.",
			},
			[]string{"outcome"},
		),
		refreshDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "feed",
				Name:      "refresh_duration_seconds",
				Help:      "Duration of price refreshes.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
			},
		),
		price: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "feed",
				Name:      "price_usd",
				Help:      "Last successfully fetched USD price.",
			},
		),
		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "feed",
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful refresh.",
			},
		),

		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "inflight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "path"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.refreshes,
		m.refreshDuration,
		m.price,
		m.lastSuccess,
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
	)

	return m
}

// Registry returns the registry backing the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRefresh records a settled price refresh; it matches the cache refresh hook
func (m *Metrics) ObserveRefresh(result cache.RefreshResult) {
	m.refreshDuration.Observe(result.Duration.Seconds())

	if result.Err != nil {
		m.refreshes.WithLabelValues("failure").Inc()
		return
	}

	m.refreshes.WithLabelValues("success").Inc()
	price, _ := result.Price.Float64()
	m.price.Set(price)
	m.lastSuccess.Set(float64(result.FetchedAt.Unix()))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and durations, labelled by route template
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := routePath(r)
		m.httpRequests.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// routePath keeps label cardinality bounded by using the mux template
func routePath(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
