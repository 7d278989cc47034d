package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/dot-do/fsx/internal/logger"
	"github.com/dot-do/fsx/pkg/blob"
	blobmemory "github.com/dot-do/fsx/pkg/blob/memory"
	blobs3 "github.com/dot-do/fsx/pkg/blob/s3"
	"github.com/dot-do/fsx/pkg/blob/tiered"
	"github.com/dot-do/fsx/pkg/metadata"
	"github.com/dot-do/fsx/pkg/metadata/badger"
	"github.com/dot-do/fsx/pkg/metadata/memory"
	"github.com/dot-do/fsx/pkg/metrics"
)

// CreateMetadataStore creates a metadata store based on configuration.
//
// The Type field selects the implementation; only the matching
// type-specific section is decoded and passed to the constructor.
//
// Supported types:
//   - "memory": pkg/metadata/memory (ephemeral, in-memory)
//   - "badger": pkg/metadata/badger (persistent, BadgerDB)
func CreateMetadataStore(ctx context.Context, cfg *MetadataConfig) (metadata.Store, error) {
	switch cfg.Type {
	case "memory":
		return createMemoryMetadataStore(ctx)
	case "badger":
		return createBadgerMetadataStore(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown metadata store type: %q (supported: memory, badger)", cfg.Type)
	}
}

func createMemoryMetadataStore(ctx context.Context) (metadata.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return memory.NewMemoryStore(), nil
}

func createBadgerMetadataStore(ctx context.Context, options map[string]any) (metadata.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type BadgerStoreOptions struct {
		Path     string `mapstructure:"path"`
		InMemory bool   `mapstructure:"in_memory"`
	}

	var storeOpts BadgerStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode badger metadata store options: %w", err)
	}

	store, err := badger.NewBadgerStore(ctx, badger.Options{
		Path:     storeOpts.Path,
		InMemory: storeOpts.InMemory,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create badger metadata store: %w", err)
	}

	logger.Info("badger metadata store initialized: path=%s in_memory=%v",
		storeOpts.Path, storeOpts.InMemory)

	return store, nil
}

// CreateBlobStore creates the tiered blob store based on configuration.
//
// Each tier gets its own backend; an unconfigured warm tier inherits the
// hot backend, and an unconfigured cold tier inherits the warm one, so a
// minimal config runs everything on a single backend.
func CreateBlobStore(ctx context.Context, cfg *BlobConfig, blobMetrics metrics.BlobMetrics) (*tiered.TieredStore, error) {
	hot, err := createTierBackend(ctx, "hot", &cfg.Hot)
	if err != nil {
		return nil, err
	}

	// Warm and cold inherit the previous tier when their type is empty;
	// NewTieredStore handles nil fallbacks.
	var warm, cold blob.Backend
	if cfg.Warm.Type != "" {
		if warm, err = createTierBackend(ctx, "warm", &cfg.Warm); err != nil {
			return nil, err
		}
	}
	if cfg.Cold.Type != "" {
		if cold, err = createTierBackend(ctx, "cold", &cfg.Cold); err != nil {
			return nil, err
		}
	}

	store, err := tiered.NewTieredStore(tiered.Options{
		Policy: blob.TierPolicy{
			HotMaxBytes:  cfg.HotMaxBytes,
			WarmMaxBytes: cfg.WarmMaxBytes,
		},
		Hot:                   hot,
		Warm:                  warm,
		Cold:                  cold,
		ColdRequestsPerSecond: cfg.ColdRequestsPerSecond,
		ColdBurst:             cfg.ColdBurst,
		Metrics:               blobMetrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tiered blob store: %w", err)
	}

	return store, nil
}

// createTierBackend builds one tier's backend from its configuration.
func createTierBackend(ctx context.Context, tier string, cfg *TierConfig) (blob.Backend, error) {
	switch cfg.Type {
	case "memory":
		return blobmemory.NewMemoryBackend(), nil
	case "s3":
		return createS3Backend(ctx, tier, cfg.S3)
	default:
		return nil, fmt.Errorf("blob.%s: unknown backend type: %q (supported: memory, s3)", tier, cfg.Type)
	}
}

// createS3Backend builds an S3 client and backend for one tier.
func createS3Backend(ctx context.Context, tier string, options map[string]any) (blob.Backend, error) {
	type S3BackendOptions struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	var backendOpts S3BackendOptions
	if err := mapstructure.Decode(options, &backendOpts); err != nil {
		return nil, fmt.Errorf("failed to decode S3 backend options: %w", err)
	}

	if backendOpts.Bucket == "" {
		return nil, fmt.Errorf("blob.%s: s3 backend requires a bucket", tier)
	}
	if backendOpts.Region == "" {
		return nil, fmt.Errorf("blob.%s: s3 backend requires a region", tier)
	}

	// Distinct prefixes let multiple tiers share a bucket.
	if backendOpts.KeyPrefix == "" {
		backendOpts.KeyPrefix = tier + "/"
	}

	var configOptions []func(*awsConfig.LoadOptions) error

	configOptions = append(configOptions, awsConfig.WithRegion(backendOpts.Region))

	// Custom endpoint for S3-compatible stores (MinIO, Localstack)
	if backendOpts.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               backendOpts.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Static credentials if provided, otherwise the default chain
	if backendOpts.AccessKeyID != "" && backendOpts.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			backendOpts.AccessKeyID,
			backendOpts.SecretAccessKey,
			"",
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := backendOpts.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		// Path-style addressing for MinIO/Localstack compatibility
		if backendOpts.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	backend, err := blobs3.NewS3Backend(ctx, blobs3.Config{
		Client:    client,
		Bucket:    backendOpts.Bucket,
		KeyPrefix: backendOpts.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("blob.%s: failed to create S3 backend: %w", tier, err)
	}

	logger.Info("S3 blob backend initialized: tier=%s bucket=%s region=%s prefix=%s",
		tier, backendOpts.Bucket, backendOpts.Region, backendOpts.KeyPrefix)

	return backend, nil
}
