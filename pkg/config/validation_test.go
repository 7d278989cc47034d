package config

import (
	"strings"
	"testing"
)

// validConfig returns a configuration that passes validation.
func validConfig() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("Default config should be valid, got: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "VERBOSE"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for invalid log level")
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Format = "xml"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for invalid log format")
	}
}

func TestValidate_InvalidMetadataType(t *testing.T) {
	cfg := validConfig()
	cfg.Metadata.Type = "postgres"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for unknown metadata store type")
	}
}

func TestValidate_HotExceedsWarm(t *testing.T) {
	cfg := validConfig()
	cfg.Blob.HotMaxBytes = 128 * 1024 * 1024
	cfg.Blob.WarmMaxBytes = 64 * 1024 * 1024

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected error when hot_max_bytes exceeds warm_max_bytes")
	}
	if !strings.Contains(err.Error(), "hot_max_bytes") {
		t.Errorf("Expected threshold error, got: %v", err)
	}
}

func TestValidate_S3TierRequiresBucket(t *testing.T) {
	cfg := validConfig()
	cfg.Blob.Cold.Type = "s3"
	cfg.Blob.Cold.S3 = map[string]any{"region": "us-east-1"}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected error for s3 tier without bucket")
	}
	if !strings.Contains(err.Error(), "bucket") {
		t.Errorf("Expected bucket error, got: %v", err)
	}
}

func TestValidate_InvalidTierType(t *testing.T) {
	cfg := validConfig()
	cfg.Blob.Warm.Type = "glacier"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for unknown tier backend type")
	}
}

func TestValidate_BadgerRequiresPath(t *testing.T) {
	cfg := validConfig()
	cfg.Metadata.Type = "badger"
	cfg.Metadata.Badger = map[string]any{}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected error for badger store without path")
	}

	cfg.Metadata.Badger = map[string]any{"in_memory": true}
	if err := Validate(cfg); err != nil {
		t.Fatalf("in_memory badger store should not need a path, got: %v", err)
	}
}

func TestValidate_NegativeShutdownTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Server.ShutdownTimeout = -1

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for negative shutdown timeout")
	}
}
