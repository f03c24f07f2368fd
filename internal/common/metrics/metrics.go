// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for APIRequests.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
)

var (
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_api_requests_total",
			Help: "Total number of requests made to the activities API",
		},
		[]string{"endpoint", "outcome"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_api_request_duration_seconds",
			Help:    "Duration of activities API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	StatusMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_status_messages_total",
			Help: "Status messages shown per form and kind",
		},
		[]string{"form", "kind"},
	)

	ActivitiesRendered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "portal_activities_rendered",
			Help: "Number of activity cards currently rendered",
		},
	)
)
