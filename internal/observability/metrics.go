// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	SnapshotsIngested prometheus.Counter
	ResultsReconciled prometheus.Counter
	ProductsCreated   prometheus.Counter
	PricePointsStored prometheus.Counter
	RecordsSkipped    *prometheus.CounterVec

	// Enrichment metrics
	ProductsEnriched  prometheus.Counter
	ReviewsStored     prometheus.Counter
	RollupsRecomputed prometheus.Counter

	// Pipeline metrics
	MetricsComputed      prometheus.Counter
	OpportunitiesEmitted *prometheus.CounterVec
	PipelineRunsTotal    *prometheus.CounterVec
	PipelineDuration     *prometheus.HistogramVec

	// Analytics sync metrics
	RowsMirrored *prometheus.CounterVec

	// Collector metrics
	CollectorRequests *prometheus.CounterVec

	// Health metrics
	LastSuccessfulIngestion prometheus.Gauge
	LastSuccessfulPipeline  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "serp_market_lab"
	}

	return &Metrics{
		// Ingestion metrics
		SnapshotsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "snapshots_ingested_total",
			Help:      "Total number of search snapshots persisted",
		}),
		ResultsReconciled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "results_reconciled_total",
			Help:      "Total number of search results folded into the product master",
		}),
		ProductsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "products_created_total",
			Help:      "Total number of products created from first sightings",
		}),
		PricePointsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "price_points_stored_total",
			Help:      "Total number of price history rows appended",
		}),
		RecordsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "records_skipped_total",
			Help:      "Total number of records skipped by reason",
		}, []string{"reason"}),

		// Enrichment metrics
		ProductsEnriched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "products_enriched_total",
			Help:      "Total number of products merged with detail payloads",
		}),
		ReviewsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "reviews_stored_total",
			Help:      "Total number of reviews stored",
		}),
		RollupsRecomputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "rollups_recomputed_total",
			Help:      "Total number of seller rollup recomputations",
		}),

		// Pipeline metrics
		MetricsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "daily_metrics_computed_total",
			Help:      "Total number of daily metric rows computed",
		}),
		OpportunitiesEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "opportunities_emitted_total",
			Help:      "Total number of opportunities emitted by type",
		}, []string{"type"}),
		PipelineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by phase and status",
		}, []string{"phase", "status"}),
		PipelineDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline execution duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"phase"}),

		// Analytics sync metrics
		RowsMirrored: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "rows_mirrored_total",
			Help:      "Total number of rows mirrored to the analytics store by table",
		}, []string{"table"}),

		// Collector metrics
		CollectorRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "requests_total",
			Help:      "Total number of collector API requests by endpoint and status",
		}, []string{"endpoint", "status"}),

		// Health metrics
		LastSuccessfulIngestion: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of last successful ingestion",
		}),
		LastSuccessfulPipeline: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pipeline_timestamp",
			Help:      "Unix timestamp of last successful pipeline run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSnapshotIngested increments the snapshots ingested counter.
func RecordSnapshotIngested() {
	DefaultMetrics.SnapshotsIngested.Inc()
}

// RecordResultReconciled increments the results reconciled counter and,
// when the result created a product, the products created counter.
func RecordResultReconciled(created bool) {
	DefaultMetrics.ResultsReconciled.Inc()
	if created {
		DefaultMetrics.ProductsCreated.Inc()
	}
}

// RecordRecordSkipped records a skipped ingest record by reason.
func RecordRecordSkipped(reason string) {
	DefaultMetrics.RecordsSkipped.WithLabelValues(reason).Inc()
}

// RecordOpportunity records an emitted opportunity by type.
func RecordOpportunity(opportunityType string) {
	DefaultMetrics.OpportunitiesEmitted.WithLabelValues(opportunityType).Inc()
}

// RecordPipelineRun records a pipeline run.
func RecordPipelineRun(phase, status string, durationSeconds float64) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(phase, status).Inc()
	DefaultMetrics.PipelineDuration.WithLabelValues(phase).Observe(durationSeconds)
}

// RecordCollectorRequest records a collector API request.
func RecordCollectorRequest(endpoint, status string) {
	DefaultMetrics.CollectorRequests.WithLabelValues(endpoint, status).Inc()
}
