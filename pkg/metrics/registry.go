// Package metrics provides Prometheus metrics collection for fsx
// components.
//
// All metrics are optional. If the registry is never initialized, the
// constructors return no-op implementations with zero overhead, so the
// filesystem and blob layers can run with or without collection enabled.
//
// Usage:
//
//	// Initialize global registry (typically in main.go)
//	metrics.InitRegistry()
//
//	// Create metrics instances for components
//	fsMetrics := metrics.NewFilesystemMetrics()
//	blobMetrics := metrics.NewBlobMetrics()
//
//	// Or pass nil for no-op behavior
//	fs, err := fsx.New(ctx, fsx.Options{..., Metrics: nil})
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// registry is the global Prometheus registry for all fsx metrics.
	// Write-once via registryOnce, read-many afterwards.
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry initializes the global Prometheus registry.
//
// Must be called before creating metrics instances; safe to call more
// than once (subsequent calls are ignored). When never called,
// GetRegistry returns nil and all constructors return no-op
// implementations.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the global Prometheus registry, or nil when
// metrics are disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled reports whether metrics collection is enabled.
func IsEnabled() bool {
	return GetRegistry() != nil
}
