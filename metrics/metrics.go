package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderRequests counts outbound X API calls by logical endpoint and
	// response status code.
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "perch_provider_requests_total",
		Help: "Outbound X API requests by endpoint and status code.",
	}, []string{"endpoint", "status"})

	// RateLimited counts provider responses rejected with HTTP 429.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "perch_provider_rate_limited_total",
		Help: "X API responses rejected with HTTP 429.",
	})
)
