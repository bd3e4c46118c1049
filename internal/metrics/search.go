package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "catalogsearch"

// Search and catalog Prometheus metrics.
var (
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "In-memory search evaluation time in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
		[]string{"mode"},
	)

	SearchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"mode"},
	)

	CatalogCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_total",
			Help:      "Catalog snapshot lookups by outcome",
		},
		[]string{"result"}, // "hit" / "miss" / "stale"
	)

	CatalogRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_refresh_total",
			Help:      "Catalog refresh attempts by status",
		},
		[]string{"status"}, // "ok" / "error"
	)

	CatalogRefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_refresh_duration_seconds",
			Help:      "Catalog refresh duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	CatalogSnapshotItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_snapshot_items",
			Help:      "Number of items in the current catalog snapshot",
		},
	)

	QueryEvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_evaluations_total",
			Help:      "Debounced query evaluations by outcome",
		},
		[]string{"controller", "outcome"}, // "delivered" / "superseded" / "discarded"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search and catalog metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(CatalogCacheTotal)
	prometheus.MustRegister(CatalogRefreshTotal)
	prometheus.MustRegister(CatalogRefreshDuration)
	prometheus.MustRegister(CatalogSnapshotItems)
	prometheus.MustRegister(QueryEvaluationsTotal)
	searchMetricsRegistered = true
}

// ObserveSearch records one search evaluation.
func ObserveSearch(mode string, d time.Duration, results int) {
	SearchDuration.WithLabelValues(mode).Observe(d.Seconds())
	SearchResults.WithLabelValues(mode).Observe(float64(results))
}

// ObserveRefresh records one catalog refresh attempt.
func ObserveRefresh(d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	CatalogRefreshTotal.WithLabelValues(status).Inc()
	CatalogRefreshDuration.Observe(d.Seconds())
}
