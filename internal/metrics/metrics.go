// Package metrics provides Prometheus metrics for cubefs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Engine operation metrics
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cubefs_operations_total",
			Help: "Total number of engine mutations by final result",
		},
		[]string{"operation", "result"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cubefs_operation_duration_seconds",
			Help:    "Engine mutation duration in seconds, retries included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	failuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cubefs_operation_failures_total",
			Help: "Total number of failed attempts reported to the failure observer",
		},
		[]string{"operation"},
	)

	rollbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cubefs_rollbacks_total",
			Help: "Total number of overwrite-move rollbacks by result",
		},
		[]string{"result"},
	)

	// Daemon job metrics
	jobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cubefs_jobs_total",
			Help: "Total number of job runs by result",
		},
		[]string{"job", "result"},
	)

	jobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cubefs_job_duration_seconds",
			Help:    "Job run duration in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"job"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordOperation records the final result of one engine mutation.
func RecordOperation(op, result string, d time.Duration) {
	operationsTotal.WithLabelValues(op, result).Inc()
	operationDuration.WithLabelValues(op).Observe(d.Seconds())
}

// RecordFailure records one failure delivered to an observer.
func RecordFailure(op string) {
	failuresTotal.WithLabelValues(op).Inc()
}

// RecordRollback records an overwrite-move rollback.
func RecordRollback(success bool) {
	result := "restored"
	if !success {
		result = "degraded"
	}
	rollbacksTotal.WithLabelValues(result).Inc()
}

// RecordJob records one daemon job run.
func RecordJob(name, result string, d time.Duration) {
	jobsTotal.WithLabelValues(name, result).Inc()
	jobDuration.WithLabelValues(name).Observe(d.Seconds())
}
