// Package metrics registers Prometheus instrumentation for the maintenance
// repository and its report exports.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "carnet_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	operationsTotal *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	reportExports   *prometheus.CounterVec
	snapshotOps     *prometheus.CounterVec
)

// Init registers the metric set. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		operationsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "repository_operations_total",
				Help: "Total repository operations by operation and result",
			},
			[]string{"operation", "result"},
		)
		persistFailures = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "persist_failures_total",
				Help: "Total durable-store write failures by bucket",
			},
			[]string{"bucket"},
		)
		reportExports = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_exports_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		snapshotOps = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "snapshot_operations_total",
				Help: "Total dataset export/import operations by direction and result",
			},
			[]string{"direction", "result"},
		)

		prometheus.MustRegister(
			operationsTotal,
			persistFailures,
			reportExports,
			snapshotOps,
		)
	})
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}

// ObserveOperation records one repository operation outcome.
func ObserveOperation(operation string, err error) {
	if operationsTotal != nil {
		operationsTotal.WithLabelValues(operation, result(err)).Inc()
	}
}

// IncPersistFailure counts a failed durable write for a bucket.
func IncPersistFailure(bucket string) {
	if persistFailures != nil {
		persistFailures.WithLabelValues(bucket).Inc()
	}
}

// ObserveReportExport records one report render by format.
func ObserveReportExport(format string, err error) {
	if reportExports != nil {
		reportExports.WithLabelValues(format, result(err)).Inc()
	}
}

// ObserveSnapshot records a dataset export or import.
func ObserveSnapshot(direction string, err error) {
	if snapshotOps != nil {
		snapshotOps.WithLabelValues(direction, result(err)).Inc()
	}
}
