package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline.
type Metrics struct {
	FetchesTotal     *prometheus.CounterVec // labels: outcome={success,transport_error,structure_error,no_valid_records}
	RecordsValidated prometheus.Counter
	RecordsRejected  prometheus.Counter
	CacheLookups     *prometheus.CounterVec // labels: result={hit,miss}
	IngestDuration   prometheus.Histogram
	PointsLoaded     prometheus.Gauge

	// Filter pass metrics.
	FilterDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firewatch",
			Name:      "fetches_total",
			Help:      "Upstream fetch attempts by outcome.",
		}, []string{"outcome"}),
		RecordsValidated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "firewatch",
			Name:      "records_validated_total",
			Help:      "Raw records that passed validation.",
		}),
		RecordsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "firewatch",
			Name:      "records_rejected_total",
			Help:      "Raw records dropped by validation.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firewatch",
			Name:      "cache_lookups_total",
			Help:      "Point cache lookups by result.",
		}, []string{"result"}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "firewatch",
			Name:      "ingest_duration_seconds",
			Help:      "Duration of a complete fetch-validate-cache cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		PointsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "firewatch",
			Name:      "points_loaded",
			Help:      "Validated fire points currently held by the coordinator.",
		}),
		FilterDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "firewatch",
			Name:      "filter_duration_seconds",
			Help:      "Duration of one filter pass over the point collection.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
	}

	prometheus.MustRegister(
		m.FetchesTotal,
		m.RecordsValidated,
		m.RecordsRejected,
		m.CacheLookups,
		m.IngestDuration,
		m.PointsLoaded,
		m.FilterDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FetchesTotal:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "firewatch", Name: "fetches_total"}, []string{"outcome"}),
		RecordsValidated: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "firewatch", Name: "records_validated_total"}),
		RecordsRejected:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "firewatch", Name: "records_rejected_total"}),
		CacheLookups:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "firewatch", Name: "cache_lookups_total"}, []string{"result"}),
		IngestDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "firewatch", Name: "ingest_duration_seconds"}),
		PointsLoaded:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "firewatch", Name: "points_loaded"}),
		FilterDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "firewatch", Name: "filter_duration_seconds"}),
	}
}
