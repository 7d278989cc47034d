package config

import (
	"strings"
	"time"

	"github.com/dot-do/fsx/pkg/fsx"
)

// ApplyDefaults fills unspecified configuration fields with sensible
// defaults.
//
// Zero values (0, "", false, nil) are replaced; explicit values are
// preserved. Store-specific defaults live with the store
// implementations.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyFilesystemDefaults(&cfg.Filesystem)
	applyMetadataDefaults(&cfg.Metadata)
	applyBlobDefaults(&cfg.Blob)
	applyGCDefaults(&cfg.GC)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalized to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyFilesystemDefaults(cfg *FilesystemConfig) {
	if cfg.MaxLinkDepth == 0 {
		cfg.MaxLinkDepth = fsx.DefaultMaxLinkDepth
	}
}

func applyMetadataDefaults(cfg *MetadataConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}
	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}
	if cfg.Badger == nil {
		cfg.Badger = make(map[string]any)
	}
	if _, ok := cfg.Badger["path"]; !ok {
		cfg.Badger["path"] = "/var/lib/fsx/metadata"
	}
}

func applyBlobDefaults(cfg *BlobConfig) {
	if cfg.HotMaxBytes == 0 {
		cfg.HotMaxBytes = 256 * 1024
	}
	if cfg.WarmMaxBytes == 0 {
		cfg.WarmMaxBytes = 64 * 1024 * 1024
	}
	if cfg.Hot.Type == "" {
		cfg.Hot.Type = "memory"
	}
	// Warm and Cold deliberately keep an empty Type: the factory
	// inherits them from the previous tier.
}

func applyGCDefaults(cfg *GCConfig) {
	if cfg.Interval == 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 1000
	}
}
