// Package s3 provides an S3-backed blob backend for the warm and cold
// tiers.
//
// Works with Amazon S3 or any S3-compatible store (MinIO, Localstack)
// via a custom endpoint. The bucket must already exist.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dot-do/fsx/pkg/blob"
	"github.com/dot-do/fsx/pkg/metadata"
)

// S3Backend implements blob.Backend against an S3 bucket.
//
// Key layout: <keyPrefix><blobID>. Tiered deployments run one S3Backend
// per tier with distinct prefixes (e.g. "warm/" and "cold/") so a single
// bucket can hold both tiers and garbage collection can list them
// independently.
//
// Thread Safety: safe for concurrent use; concurrent Puts to the same ID
// are last-write-wins per S3 semantics.
type S3Backend struct {
	client    *awss3.Client
	bucket    string
	keyPrefix string
}

// Config contains configuration for an S3 backend.
type Config struct {
	// Client is the configured S3 client.
	Client *awss3.Client

	// Bucket is the S3 bucket name.
	Bucket string

	// KeyPrefix is an optional prefix for all object keys, typically the
	// tier name (e.g. "warm/").
	KeyPrefix string
}

// NewS3Backend creates an S3-backed blob backend and verifies bucket
// access with a HeadBucket call.
func NewS3Backend(ctx context.Context, cfg Config) (*S3Backend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	backend := &S3Backend{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}

	_, err := cfg.Client.HeadBucket(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to access bucket %s: %w", cfg.Bucket, err)
	}

	return backend, nil
}

func (b *S3Backend) objectKey(id metadata.BlobID) string {
	return b.keyPrefix + string(id)
}

// Put uploads data under the given blob ID.
func (b *S3Backend) Put(ctx context.Context, id metadata.BlobID, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := b.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(id)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to put blob %s: %w", id, err)
	}
	return nil
}

// Get downloads the full content of the blob.
func (b *S3Backend) Get(ctx context.Context, id metadata.BlobID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := b.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(id)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("blob %s: %w", id, blob.ErrBlobNotFound)
		}
		return nil, fmt.Errorf("failed to get blob %s: %w", id, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", id, err)
	}
	return data, nil
}

// Exists reports whether the blob is present, using a HeadObject call.
func (b *S3Backend) Exists(ctx context.Context, id metadata.BlobID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := b.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(id)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head blob %s: %w", id, err)
	}
	return true, nil
}

// Delete removes the blob. S3 DeleteObject succeeds for missing keys, so
// this is naturally idempotent.
func (b *S3Backend) Delete(ctx context.Context, id metadata.BlobID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := b.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(id)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", id, err)
	}
	return nil
}

// List returns every blob ID under this backend's key prefix.
func (b *S3Backend) List(ctx context.Context) ([]metadata.BlobID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ids []metadata.BlobID

	paginator := awss3.NewListObjectsV2Paginator(b.client, &awss3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(b.keyPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list blobs: %w", err)
		}
		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			ids = append(ids, metadata.BlobID(strings.TrimPrefix(key, b.keyPrefix)))
		}
	}

	return ids, nil
}

// isNotFound classifies S3 "object does not exist" errors across the
// shapes the SDK produces (NoSuchKey from GetObject, NotFound from
// HeadObject).
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}
