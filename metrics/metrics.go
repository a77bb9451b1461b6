// Package metrics holds the Prometheus collectors of the backend
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Oracle request outcomes
const (
	OutcomeSuccess     = "success"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

var (
	ChunksIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nivesh_chunks_ingested_total",
		Help: "Chunks written to the vector store.",
	})

	EmbeddingsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nivesh_embeddings_dropped_total",
		Help: "Chunks skipped because their embedding failed or was invalid.",
	})

	OracleRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nivesh_oracle_requests_total",
		Help: "Oracle completions by provider and outcome.",
	}, []string{"provider", "outcome"})

	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nivesh_analysis_duration_seconds",
		Help:    "Time spent producing one grounded analysis.",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nivesh_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	RetrievedChunks = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nivesh_retrieved_chunks",
		Help:    "Chunks returned per retrieval.",
		Buckets: prometheus.LinearBuckets(0, 2, 11),
	})
)

// ObserveOracle records one oracle call
func ObserveOracle(provider, outcome string) {
	OracleRequests.WithLabelValues(provider, outcome).Inc()
}

// ObserveHTTP records one served request. route is the matched pattern, not
// the raw path.
func ObserveHTTP(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
