package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// atlas data pipeline and its query API.
type Metrics struct {
	RecordsIngested  prometheus.Counter
	SpeakerNulls     prometheus.Counter
	UnknownStates    prometheus.Counter
	SnapshotLoaded   prometheus.Gauge
	LoadDuration     prometheus.Histogram
	PopulationStates prometheus.Gauge

	// Source fetch metrics.
	FetchDuration *prometheus.HistogramVec // label: source={geometry,language,population}
	FetchErrors   *prometheus.CounterVec   // label: source

	// Query API metrics.
	QueryRequests *prometheus.CounterVec // label: endpoint
	QueryCache    *prometheus.CounterVec // label: result={hit,miss}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsIngested,
		m.SpeakerNulls,
		m.UnknownStates,
		m.SnapshotLoaded,
		m.LoadDuration,
		m.PopulationStates,
		m.FetchDuration,
		m.FetchErrors,
		m.QueryRequests,
		m.QueryCache,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "language_atlas",
			Name:      "records_ingested_total",
			Help:      "Total language records ingested from the source table.",
		}),
		SpeakerNulls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "language_atlas",
			Name:      "speaker_nulls_total",
			Help:      "Records whose speaker count field parsed to null.",
		}),
		UnknownStates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "language_atlas",
			Name:      "unknown_states_total",
			Help:      "Records whose state reference canonicalized outside the known set.",
		}),
		SnapshotLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "language_atlas",
			Name:      "snapshot_loaded",
			Help:      "1 once a dataset snapshot has been loaded and joined.",
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "language_atlas",
			Name:      "load_duration_seconds",
			Help:      "Duration of a complete fetch-parse-join load.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PopulationStates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "language_atlas",
			Name:      "population_states",
			Help:      "Number of states with a resolved population figure.",
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "language_atlas",
			Name:      "fetch_duration_seconds",
			Help:      "Source fetch duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "language_atlas",
			Name:      "fetch_errors_total",
			Help:      "Source fetch failures by source.",
		}, []string{"source"}),
		QueryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "language_atlas",
			Name:      "query_requests_total",
			Help:      "Aggregate query requests by endpoint.",
		}, []string{"endpoint"}),
		QueryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "language_atlas",
			Name:      "query_cache_total",
			Help:      "Memoized query lookups by result.",
		}, []string{"result"}),
	}
}
