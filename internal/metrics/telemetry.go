package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Throughput
	SearchRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vectord_search_requests_total",
		Help: "Total number of search requests received",
	})

	InsertRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vectord_insert_requests_total",
		Help: "Total number of vector upsert requests received",
	})

	// Latency - P99 lives here
	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vectord_search_duration_seconds",
		Help:    "Time taken to process search requests",
		Buckets: prometheus.DefBuckets,
	})

	InsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vectord_insert_duration_seconds",
		Help:    "Time taken to process upsert requests (including replication)",
		Buckets: []float64{.01, .05, .1, .5, 1, 2.5, 5},
	})

	// State
	TotalVectors = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vectord_vectors_total",
		Help: "Current number of vectors across all collections",
	})

	Collections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vectord_collections_total",
		Help: "Current number of collections",
	})

	RaftState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vectord_raft_state",
		Help: "Current Raft state (0=Follower, 1=Candidate, 2=Leader)",
	})
)
