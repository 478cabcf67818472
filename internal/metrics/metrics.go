package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route pattern and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hopgraph_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hopgraph_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	// TraversalsTotal counts customized path traversals by sort order and outcome
	// (ok, invalid, error).
	TraversalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hopgraph_traversals_total",
			Help: "Customized path traversals executed",
		},
		[]string{"sort_by", "result"},
	)

	TraversalDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hopgraph_traversal_duration_seconds",
			Help:    "Time spent expanding customized paths",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		},
	)

	PathsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hopgraph_traversal_paths_returned",
			Help:    "Number of paths returned per traversal",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	EdgesAccessed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hopgraph_traversal_edges_accessed",
			Help:    "Edges accepted into the path tree per traversal",
			Buckets: prometheus.ExponentialBuckets(1, 10, 8),
		},
	)

	// TraversalCutoffs counts traversals stopped early, by the limit that fired.
	TraversalCutoffs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hopgraph_traversal_cutoffs_total",
			Help: "Traversals stopped by the limit or capacity bound",
		},
		[]string{"reason"},
	)

	IngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hopgraph_ingested_total",
			Help: "Vertices and edges written by the bulk ingestor",
		},
		[]string{"kind", "result"},
	)
)
