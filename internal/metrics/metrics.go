package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EndpointResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "endpoint_responses_total",
		Help: "The total number of endpoint responses",
	}, []string{"endpoint", "status_code"})

	// Profile cache metrics
	ProfileCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "profile_cache_lookups_total",
		Help: "Total number of profile cache lookups by cache and result (hit or miss)",
	}, []string{"cache", "result"})

	ProfileBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "profile_batches_total",
		Help: "Total number of batched ledger requests issued by the profile client",
	}, []string{"kind"})

	// Ledger RPC metrics
	LedgerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_requests_total",
		Help: "Total number of ledger JSON-RPC requests by method and status",
	}, []string{"method", "status"})

	LedgerRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_request_duration_seconds",
		Help:    "Duration of ledger JSON-RPC requests in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
	}, []string{"method"})
)
