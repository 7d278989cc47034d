package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// FilesystemMetrics observes filesystem operations.
//
// The interface is optional: a nil value passed to the filesystem core
// disables collection entirely.
type FilesystemMetrics interface {
	// RecordOperation records one completed operation with its name,
	// duration, and outcome.
	RecordOperation(operation string, duration time.Duration, err error)

	// SetOpenHandles updates the count of currently open file handles.
	SetOpenHandles(count int64)
}

// filesystemMetrics is the Prometheus implementation.
type filesystemMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	openHandles       prometheus.Gauge
}

// NewFilesystemMetrics creates filesystem metrics backed by the global
// registry, or a no-op implementation when the registry is not
// initialized.
func NewFilesystemMetrics() FilesystemMetrics {
	reg := GetRegistry()
	if reg == nil {
		return &noopFilesystemMetrics{}
	}

	factory := promauto.With(reg)

	return &filesystemMetrics{
		operationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fsx_operations_total",
			Help: "Total filesystem operations by name and outcome",
		}, []string{"operation", "status"}),
		operationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fsx_operation_duration_seconds",
			Help:    "Filesystem operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		openHandles: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fsx_open_handles",
			Help: "Number of currently open file handles",
		}),
	}
}

func (m *filesystemMetrics) RecordOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *filesystemMetrics) SetOpenHandles(count int64) {
	m.openHandles.Set(float64(count))
}

// noopFilesystemMetrics discards all observations.
type noopFilesystemMetrics struct{}

func (*noopFilesystemMetrics) RecordOperation(string, time.Duration, error) {}
func (*noopFilesystemMetrics) SetOpenHandles(int64)                         {}
