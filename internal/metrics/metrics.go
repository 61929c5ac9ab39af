package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vodstream",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vodstream",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method", "path"})

	JobsStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vodstream",
		Name:      "jobs_started_total",
		Help:      "Total number of transcode jobs started.",
	})

	JobsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vodstream",
		Name:      "jobs_failed_total",
		Help:      "Total number of transcode jobs that failed before publishing.",
	})

	ActiveJobs = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vodstream",
		Name:      "active_jobs",
		Help:      "Number of transcode jobs currently running.",
	})

	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vodstream",
		Name:      "queue_depth",
		Help:      "Number of jobs waiting in the transcode queue.",
	})

	EncodeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vodstream",
		Name:      "encode_duration_seconds",
		Help:      "Duration of FFmpeg encode invocations in seconds.",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
	})

	EncodeFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vodstream",
		Name:      "encode_failures_total",
		Help:      "Total number of failed FFmpeg invocations by resolution.",
	}, []string{"resolution"})

	SegmentsServedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vodstream",
		Name:      "segments_served_total",
		Help:      "Total number of HLS segments served.",
	})

	FallbackManifestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vodstream",
		Name:      "fallback_manifests_total",
		Help:      "Total number of synthetic fallback manifests served.",
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		JobsStartedTotal,
		JobsFailedTotal,
		ActiveJobs,
		QueueDepth,
		EncodeDuration,
		EncodeFailuresTotal,
		SegmentsServedTotal,
		FallbackManifestsTotal,
	)
}
