package superstaq

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "qstaq"
	subsystem        = "client"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of requests sent to the service",
		},
		[]string{"endpoint", "code"}, // code: HTTP status, or "error" for transport failures
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Time taken by requests to the service",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	jobPollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "job_polls_total",
			Help:      "Total number of job status polls",
		},
		[]string{"status"},
	)
)
