package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags plus custom
// rules that cannot be expressed in tags.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return validateCustomRules(cfg)
}

// validateCustomRules performs validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	if cfg.Blob.HotMaxBytes > cfg.Blob.WarmMaxBytes {
		return fmt.Errorf("blob: hot_max_bytes (%d) exceeds warm_max_bytes (%d)",
			cfg.Blob.HotMaxBytes, cfg.Blob.WarmMaxBytes)
	}

	for _, tier := range []struct {
		name string
		cfg  *TierConfig
	}{
		{"hot", &cfg.Blob.Hot},
		{"warm", &cfg.Blob.Warm},
		{"cold", &cfg.Blob.Cold},
	} {
		if tier.cfg.Type == "s3" {
			bucket, _ := tier.cfg.S3["bucket"].(string)
			if bucket == "" {
				return fmt.Errorf("blob.%s: s3 backend requires a bucket", tier.name)
			}
		}
	}

	if cfg.Metadata.Type == "badger" {
		path, _ := cfg.Metadata.Badger["path"].(string)
		inMemory, _ := cfg.Metadata.Badger["in_memory"].(bool)
		if path == "" && !inMemory {
			return fmt.Errorf("metadata.badger: path is required unless in_memory is set")
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly
// messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
