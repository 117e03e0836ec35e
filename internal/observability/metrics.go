package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// acquisition service.
type Metrics struct {
	// Orchestrator metrics.
	DatasetRequests *prometheus.CounterVec // labels: mode, outcome={success,error}
	SegmentsPerCall prometheus.Histogram
	CacheLookups    *prometheus.CounterVec // labels: result={hit,miss,expired}

	// Provider fetch metrics.
	FetchRequests *prometheus.CounterVec   // labels: endpoint={forecast,archive,air_quality}, outcome={success,upstream_error,timeout}
	FetchDuration *prometheus.HistogramVec // labels: endpoint
	FetchRetries  prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteoq",
			Name:      "dataset_requests_total",
			Help:      "Unified dataset requests by mode and outcome.",
		}, []string{"mode", "outcome"}),
		SegmentsPerCall: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "meteoq",
			Name:      "segments_per_call",
			Help:      "Number of provider segments issued per dataset request.",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16, 24, 32},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteoq",
			Name:      "dataset_cache_lookups_total",
			Help:      "Dataset cache lookups by result.",
		}, []string{"result"}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteoq",
			Name:      "fetch_requests_total",
			Help:      "Provider segment fetches by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "meteoq",
			Name:      "fetch_duration_seconds",
			Help:      "Provider request duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"endpoint"}),
		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meteoq",
			Name:      "fetch_retries_total",
			Help:      "Segment fetch attempts beyond the first.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteoq",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteoq",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
	}
}

// NewMetrics creates all service metrics and registers them with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DatasetRequests,
		m.SegmentsPerCall,
		m.CacheLookups,
		m.FetchRequests,
		m.FetchDuration,
		m.FetchRetries,
		m.GeocodeRequests,
		m.GeocodeCache,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
