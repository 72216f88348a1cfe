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
	// Evaluation metrics
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	FallbacksTotal     prometheus.Counter
	SignalsEmitted     *prometheus.CounterVec

	// Detector metrics
	DetectorFailures *prometheus.CounterVec

	// Upstream metrics
	UpstreamCallLatency *prometheus.HistogramVec
	UpstreamErrors      *prometheus.CounterVec

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Holder-job metrics
	HolderJobPages     prometheus.Counter
	HolderJobsFinished *prometheus.CounterVec

	// Health metrics
	LastSuccessfulEvaluation prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "token_risk"
	}

	return &Metrics{
		// Evaluation metrics
		EvaluationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "evaluations_total",
			Help:      "Total number of risk evaluations by resulting level",
		}, []string{"level"}),
		EvaluationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "duration_seconds",
			Help:      "Risk evaluation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		FallbacksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "fallbacks_total",
			Help:      "Total number of evaluations that fell back to the minimal result",
		}),
		SignalsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "signals_emitted_total",
			Help:      "Total number of signals emitted by signal id",
		}, []string{"id"}),

		// Detector metrics
		DetectorFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detector",
			Name:      "failures_total",
			Help:      "Total number of detector failures by detector",
		}, []string{"detector"}),

		// Upstream metrics
		UpstreamCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "call_duration_seconds",
			Help:      "Upstream call duration in seconds by source and method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source", "method"}),
		UpstreamErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "errors_total",
			Help:      "Total number of upstream call errors by source and method",
		}, []string{"source", "method"}),

		// Cache metrics
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of cache hits by cache name",
		}, []string{"cache"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of cache misses by cache name",
		}, []string{"cache"}),

		// Holder-job metrics
		HolderJobPages: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "holderjob",
			Name:      "pages_total",
			Help:      "Total number of holder-enumeration pages fetched",
		}),
		HolderJobsFinished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "holderjob",
			Name:      "finished_total",
			Help:      "Total number of holder jobs finished by terminal status",
		}, []string{"status"}),

		// Health metrics
		LastSuccessfulEvaluation: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_evaluation_timestamp",
			Help:      "Unix timestamp of last successful evaluation",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordEvaluation records a completed evaluation.
func RecordEvaluation(level string, seconds float64) {
	DefaultMetrics.EvaluationsTotal.WithLabelValues(level).Inc()
	DefaultMetrics.EvaluationDuration.Observe(seconds)
}

// RecordFallback increments the fallback counter.
func RecordFallback() {
	DefaultMetrics.FallbacksTotal.Inc()
}

// RecordSignal increments the emitted-signal counter for a signal id.
func RecordSignal(id string) {
	DefaultMetrics.SignalsEmitted.WithLabelValues(id).Inc()
}

// RecordDetectorFailure records a detector failure.
func RecordDetectorFailure(detector string) {
	DefaultMetrics.DetectorFailures.WithLabelValues(detector).Inc()
}

// RecordUpstreamCall records an upstream call's latency and outcome.
func RecordUpstreamCall(source, method string, seconds float64, err error) {
	DefaultMetrics.UpstreamCallLatency.WithLabelValues(source, method).Observe(seconds)
	if err != nil {
		DefaultMetrics.UpstreamErrors.WithLabelValues(source, method).Inc()
	}
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		DefaultMetrics.CacheHits.WithLabelValues(cache).Inc()
	} else {
		DefaultMetrics.CacheMisses.WithLabelValues(cache).Inc()
	}
}

// RecordHolderJobPage increments the holder-job page counter.
func RecordHolderJobPage() {
	DefaultMetrics.HolderJobPages.Inc()
}

// RecordHolderJobFinished records a holder job reaching a terminal status.
func RecordHolderJobFinished(status string) {
	DefaultMetrics.HolderJobsFinished.WithLabelValues(status).Inc()
}

// MarkEvaluationSuccess updates the last-successful-evaluation gauge.
func MarkEvaluationSuccess(unixSeconds int64) {
	DefaultMetrics.LastSuccessfulEvaluation.Set(float64(unixSeconds))
}
