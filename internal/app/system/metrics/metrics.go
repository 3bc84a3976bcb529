// Package metrics exposes Prometheus collectors for list fetches, mounted
// screens and requests to the barangay API.
package metrics

import (
	"net/http"
	"time"

	"github.com/dalemusser/barangayhub/internal/app/system/listquery"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "barangayhub"

// Metrics implements listquery.Observer.
type Metrics struct {
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	inflight      *prometheus.GaugeVec
	cacheHits     *prometheus.CounterVec
	openScreens   prometheus.Gauge

	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec
}

var _ listquery.Observer = (*Metrics)(nil)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "list",
			Name:      "fetches_total",
			Help:      "List fetches by screen and outcome (success, error, stale, canceled).",
		}, []string{"screen", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "list",
			Name:      "fetch_duration_seconds",
			Help:      "Time from issuing a list fetch to its completion.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		}, []string{"screen"}),
		inflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "list",
			Name:      "fetches_in_flight",
			Help:      "List fetches currently waiting on the API.",
		}, []string{"screen"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "list",
			Name:      "cache_hits_total",
			Help:      "Pages served from a controller's cache without a request.",
		}, []string{"screen"}),
		openScreens: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "screens",
			Name:      "open",
			Help:      "Screens currently mounted across all console sessions.",
		}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Requests sent to the barangay API by status code and method.",
		}, []string{"code", "method"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Latency of requests to the barangay API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"code", "method"}),
	}
	reg.MustRegister(
		m.fetches, m.fetchDuration, m.inflight, m.cacheHits, m.openScreens,
		m.apiRequests, m.apiDuration,
	)
	return m
}

func (m *Metrics) FetchStarted(screen string) {
	m.inflight.WithLabelValues(screen).Inc()
}

func (m *Metrics) FetchFinished(screen string, outcome listquery.Outcome, elapsed time.Duration) {
	m.inflight.WithLabelValues(screen).Dec()
	m.fetches.WithLabelValues(screen, string(outcome)).Inc()
	m.fetchDuration.WithLabelValues(screen).Observe(elapsed.Seconds())
}

func (m *Metrics) CacheHit(screen string) {
	m.cacheHits.WithLabelValues(screen).Inc()
}

// ScreenOpened and ScreenClosed track mounted screens.
func (m *Metrics) ScreenOpened() { m.openScreens.Inc() }
func (m *Metrics) ScreenClosed() { m.openScreens.Dec() }

// InstrumentTransport wraps next so every API request is counted and
// timed.
func (m *Metrics) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperCounter(m.apiRequests,
		promhttp.InstrumentRoundTripperDuration(m.apiDuration, next))
}

// Handler serves the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
