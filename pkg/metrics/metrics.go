package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// API metrics
	GraphQLRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetgraph_graphql_requests_total",
			Help: "Total number of GraphQL requests by operation and status",
		},
		[]string{"operation", "status"},
	)

	GraphQLRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assetgraph_graphql_request_duration_seconds",
			Help:    "GraphQL request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	PathTruncationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assetgraph_path_truncations_total",
			Help: "Total number of breadcrumb paths cut by the depth bound",
		},
	)

	// Ingestion metrics
	MeasurementsInserted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assetgraph_measurements_inserted_total",
			Help: "Total number of measurement rows inserted",
		},
	)

	MeasurementInsertFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assetgraph_measurement_insert_failures_total",
			Help: "Total number of failed measurement batch inserts",
		},
	)

	IngestTickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assetgraph_ingest_tick_duration_seconds",
			Help:    "Ingestion tick duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Retention sweep metrics
	SweepsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assetgraph_retention_sweeps_total",
			Help: "Total number of retention sweep runs",
		},
	)

	SweepFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assetgraph_retention_sweep_failures_total",
			Help: "Total number of failed retention sweeps",
		},
	)

	RowsSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assetgraph_retention_rows_swept_total",
			Help: "Total number of measurement rows removed by retention sweeps",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(GraphQLRequestsTotal)
	prometheus.MustRegister(GraphQLRequestDuration)
	prometheus.MustRegister(PathTruncationsTotal)
	prometheus.MustRegister(MeasurementsInserted)
	prometheus.MustRegister(MeasurementInsertFailures)
	prometheus.MustRegister(IngestTickDuration)
	prometheus.MustRegister(SweepsTotal)
	prometheus.MustRegister(SweepFailures)
	prometheus.MustRegister(RowsSwept)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
