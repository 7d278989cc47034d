package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BlobMetrics observes blob storage operations per tier.
//
// Optional like FilesystemMetrics: nil disables collection.
type BlobMetrics interface {
	// RecordOperation records one completed blob operation with the tier
	// it hit.
	RecordOperation(operation, tier string, duration time.Duration, err error)

	// RecordBytes records payload bytes moved in a direction ("read" or
	// "write") for a tier.
	RecordBytes(direction, tier string, n int)
}

type blobMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTotal        *prometheus.CounterVec
}

// NewBlobMetrics creates blob metrics backed by the global registry, or
// a no-op implementation when the registry is not initialized.
func NewBlobMetrics() BlobMetrics {
	reg := GetRegistry()
	if reg == nil {
		return &noopBlobMetrics{}
	}

	factory := promauto.With(reg)

	return &blobMetrics{
		operationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fsx_blob_operations_total",
			Help: "Total blob store operations by name, tier and outcome",
		}, []string{"operation", "tier", "status"}),
		operationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fsx_blob_operation_duration_seconds",
			Help:    "Blob store operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "tier"}),
		bytesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fsx_blob_bytes_total",
			Help: "Payload bytes moved through the blob store",
		}, []string{"direction", "tier"}),
	}
}

func (m *blobMetrics) RecordOperation(operation, tier string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(operation, tier, status).Inc()
	m.operationDuration.WithLabelValues(operation, tier).Observe(duration.Seconds())
}

func (m *blobMetrics) RecordBytes(direction, tier string, n int) {
	m.bytesTotal.WithLabelValues(direction, tier).Add(float64(n))
}

type noopBlobMetrics struct{}

func (*noopBlobMetrics) RecordOperation(string, string, time.Duration, error) {}
func (*noopBlobMetrics) RecordBytes(string, string, int)                      {}
