package analytics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ WorkDataCollector = new(PrometheusDataCollector)

type PrometheusDataCollector struct {
	registry        *prometheus.Registry
	attempts        *prometheus.CounterVec
	succeeded       *prometheus.CounterVec
	retried         *prometheus.CounterVec
	failed          *prometheus.CounterVec
	attemptNumber   *prometheus.HistogramVec
	duration        *prometheus.HistogramVec
	flowNodeRetries *prometheus.CounterVec
}

// NewPrometheusDataCollector registers its metrics on a private registry so
// several collectors can live in one process.
func NewPrometheusDataCollector() *PrometheusDataCollector {
	c := &PrometheusDataCollector{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowrt_work_attempts_total",
			Help: "Number of work attempts started",
		}, []string{"type"}),
		succeeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowrt_work_succeeded_total",
			Help: "Number of work invocations that succeeded",
		}, []string{"type"}),
		retried: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowrt_work_retried_total",
			Help: "Number of attempts that ended in a scheduled retry",
		}, []string{"type"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowrt_work_failed_total",
			Help: "Number of work invocations handed to their failure handler",
		}, []string{"type"}),
		attemptNumber: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flowrt_work_success_attempt",
			Help:    "Attempt number at which invocations succeeded",
			Buckets: prometheus.LinearBuckets(1, 1, 11),
		}, []string{"type"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flowrt_work_duration_seconds",
			Help:    "Duration of successful attempts",
			Buckets: prometheus.DefBuckets,
		}, []string{"type"}),
		flowNodeRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowrt_flownode_retries_total",
			Help: "Number of flow node retry requests by result",
		}, []string{"result"}),
	}
	c.registry.MustRegister(c.attempts, c.succeeded, c.retried, c.failed, c.attemptNumber, c.duration, c.flowNodeRetries)
	return c
}

func (c *PrometheusDataCollector) RecordAttempt(workType string, attempt int) {
	c.attempts.WithLabelValues(workType).Inc()
}

func (c *PrometheusDataCollector) RecordSuccess(workType string, attempt int, duration time.Duration) {
	c.succeeded.WithLabelValues(workType).Inc()
	c.attemptNumber.WithLabelValues(workType).Observe(float64(attempt))
	c.duration.WithLabelValues(workType).Observe(duration.Seconds())
}

func (c *PrometheusDataCollector) RecordRetry(workType string, attempt int, delay time.Duration) {
	c.retried.WithLabelValues(workType).Inc()
}

func (c *PrometheusDataCollector) RecordFailure(workType string, attempt int, reason string) {
	c.failed.WithLabelValues(workType).Inc()
}

func (c *PrometheusDataCollector) RecordFlowNodeRetry(flowNodeInstanceID int64, result string) {
	c.flowNodeRetries.WithLabelValues(result).Inc()
}

func (c *PrometheusDataCollector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *PrometheusDataCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
