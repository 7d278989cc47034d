// Package config loads and validates the fsx daemon configuration and
// provides factories that build stores from it.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (FSX_*)
//  2. Configuration file (YAML)
//  3. Default values
//
// Store Configuration Pattern:
// Each store implementation defines its own option set. The Config
// struct carries type-tagged sections (e.g. metadata.memory,
// metadata.badger) and only the section matching the selected type is
// decoded, via mapstructure, in the factory for that type.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete fsx daemon configuration.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging"`

	// Server contains daemon-wide settings
	Server ServerConfig `mapstructure:"server"`

	// Identity is the default caller identity for filesystem operations
	Identity IdentityConfig `mapstructure:"identity"`

	// Filesystem contains core filesystem settings
	Filesystem FilesystemConfig `mapstructure:"filesystem"`

	// Metadata specifies the metadata store type and type-specific
	// configuration
	Metadata MetadataConfig `mapstructure:"metadata"`

	// Blob specifies the tiered blob store configuration
	Blob BlobConfig `mapstructure:"blob"`

	// GC controls background garbage collection of orphaned blobs
	GC GCConfig `mapstructure:"gc"`

	// Metrics controls Prometheus metrics collection
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format: text or json
	Format string `mapstructure:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written: stdout, stderr, or a
	// file path
	Output string `mapstructure:"output" validate:"required"`
}

// ServerConfig contains daemon-wide settings.
type ServerConfig struct {
	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`
}

// IdentityConfig is the identity filesystem operations run as.
type IdentityConfig struct {
	UID uint32 `mapstructure:"uid"`
	GID uint32 `mapstructure:"gid"`

	// Groups lists supplementary group IDs
	Groups []uint32 `mapstructure:"groups"`
}

// FilesystemConfig contains core filesystem settings.
type FilesystemConfig struct {
	// MaxLinkDepth bounds symlink chain resolution (default: 40)
	MaxLinkDepth int `mapstructure:"max_link_depth" validate:"gte=0"`
}

// MetadataConfig specifies metadata store configuration.
//
// The Type field determines which store implementation is used; only
// the corresponding section is decoded.
type MetadataConfig struct {
	// Type specifies which metadata store implementation to use
	// Valid values: memory, badger
	Type string `mapstructure:"type" validate:"required,oneof=memory badger"`

	// Memory contains memory-specific configuration
	Memory map[string]any `mapstructure:"memory"`

	// Badger contains BadgerDB-specific configuration
	Badger map[string]any `mapstructure:"badger"`
}

// BlobConfig specifies the tiered blob store configuration.
type BlobConfig struct {
	// HotMaxBytes is the largest blob kept in the hot tier
	// (default: 256 KiB)
	HotMaxBytes uint64 `mapstructure:"hot_max_bytes"`

	// WarmMaxBytes is the largest blob kept in the warm tier; anything
	// larger goes cold (default: 64 MiB)
	WarmMaxBytes uint64 `mapstructure:"warm_max_bytes"`

	// Hot, Warm and Cold configure the backend per tier. Warm falls
	// back to Hot and Cold to Warm when their type is empty.
	Hot  TierConfig `mapstructure:"hot"`
	Warm TierConfig `mapstructure:"warm"`
	Cold TierConfig `mapstructure:"cold"`

	// ColdRequestsPerSecond throttles cold tier access (0 = unlimited)
	ColdRequestsPerSecond uint `mapstructure:"cold_requests_per_second"`

	// ColdBurst is the cold tier burst capacity
	ColdBurst uint `mapstructure:"cold_burst"`
}

// TierConfig configures one blob tier backend.
type TierConfig struct {
	// Type specifies the backend implementation
	// Valid values: memory, s3 (empty inherits the previous tier)
	Type string `mapstructure:"type" validate:"omitempty,oneof=memory s3"`

	// S3 contains S3-specific configuration, used when Type = "s3"
	S3 map[string]any `mapstructure:"s3"`
}

// GCConfig controls background garbage collection.
type GCConfig struct {
	// Enabled turns the background collector on
	Enabled bool `mapstructure:"enabled"`

	// Interval is how often to run collection (default: 24h)
	Interval time.Duration `mapstructure:"interval"`

	// BatchSize is how many orphaned blobs to delete per batch
	BatchSize int `mapstructure:"batch_size" validate:"gte=0"`

	// DryRun logs what would be deleted without deleting
	DryRun bool `mapstructure:"dry_run"`
}

// MetricsConfig controls Prometheus metrics collection.
type MetricsConfig struct {
	// Enabled initializes the global metrics registry
	Enabled bool `mapstructure:"enabled"`
}

// Load loads configuration from file, environment, and defaults.
//
// An empty configPath uses the default location
// ($XDG_CONFIG_HOME/fsx/config.yaml); a missing config file is not an
// error, defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures environment variable and config file handling.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the FSX_ prefix with underscores,
	// e.g. FSX_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("FSX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is acceptable, defaults apply
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, falling back to the
// current directory if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "fsx")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "fsx")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
