// Package tiered implements the blob.Store contract by routing content
// across hot, warm and cold tier backends.
//
// Placement is decided once per write by the configured TierPolicy. Reads
// consult an in-memory ref index first and fall back to probing backends
// hot to cold, so the store recovers blob locations after a restart even
// though the index itself is volatile.
package tiered

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dot-do/fsx/internal/ratelimiter"
	"github.com/dot-do/fsx/pkg/blob"
	"github.com/dot-do/fsx/pkg/metadata"
	"github.com/dot-do/fsx/pkg/metrics"
)

// probeOrder is the sequence backends are checked when a blob ID is not
// in the ref index. Hot first: it is both cheapest and the most likely
// home for recently written content.
var probeOrder = []blob.Tier{blob.TierHot, blob.TierWarm, blob.TierCold}

// TieredStore implements blob.Store over per-tier backends.
//
// Thread Safety: all methods are safe for concurrent use. The ref index
// is guarded by a mutex; backend calls happen outside the lock.
type TieredStore struct {
	policy   blob.TierPolicy
	backends map[blob.Tier]blob.Backend

	// coldLimiter throttles requests against the cold backend, which is
	// assumed to be archival storage with request quotas.
	coldLimiter *ratelimiter.RateLimiter

	metrics metrics.BlobMetrics

	mu   sync.RWMutex
	refs map[metadata.BlobID]*blob.Ref
}

// Options contains configuration for a tiered store.
type Options struct {
	// Policy decides tier placement by content size. Zero value means
	// blob.DefaultTierPolicy.
	Policy blob.TierPolicy

	// Hot is the backend for small, frequently accessed content.
	// Required.
	Hot blob.Backend

	// Warm is the backend for medium content. Falls back to Hot when nil.
	Warm blob.Backend

	// Cold is the backend for large archival content. Falls back to Warm
	// (then Hot) when nil.
	Cold blob.Backend

	// ColdRequestsPerSecond throttles cold tier access. Zero disables
	// throttling.
	ColdRequestsPerSecond uint

	// ColdBurst is the cold tier burst capacity. Defaults to
	// 2*ColdRequestsPerSecond when zero.
	ColdBurst uint

	// Metrics receives per-operation observations. Nil disables
	// instrumentation.
	Metrics metrics.BlobMetrics
}

// NewTieredStore creates a tiered blob store.
func NewTieredStore(opts Options) (*TieredStore, error) {
	if opts.Hot == nil {
		return nil, fmt.Errorf("hot tier backend is required")
	}

	policy := opts.Policy
	if policy.HotMaxBytes == 0 && policy.WarmMaxBytes == 0 {
		policy = blob.DefaultTierPolicy()
	}

	warm := opts.Warm
	if warm == nil {
		warm = opts.Hot
	}
	cold := opts.Cold
	if cold == nil {
		cold = warm
	}

	burst := opts.ColdBurst
	if burst == 0 {
		burst = opts.ColdRequestsPerSecond * 2
	}

	return &TieredStore{
		policy: policy,
		backends: map[blob.Tier]blob.Backend{
			blob.TierHot:  opts.Hot,
			blob.TierWarm: warm,
			blob.TierCold: cold,
		},
		coldLimiter: ratelimiter.New(opts.ColdRequestsPerSecond, burst),
		metrics:     opts.Metrics,
		refs:        make(map[metadata.BlobID]*blob.Ref),
	}, nil
}

// observe reports one completed backend operation to the metrics sink,
// if any.
func (s *TieredStore) observe(op string, tier blob.Tier, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.RecordOperation(op, string(tier), time.Since(start), err)
	}
}

// Put stores data in the tier chosen by the policy and returns its Ref.
func (s *TieredStore) Put(ctx context.Context, data []byte) (*blob.Ref, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 1: Choose identity and placement
	id := metadata.BlobID(uuid.NewString())
	tier := s.policy.PickTier(uint64(len(data)))

	sum := sha256.Sum256(data)
	ref := &blob.Ref{
		ID:        id,
		Tier:      tier,
		Size:      uint64(len(data)),
		Checksum:  hex.EncodeToString(sum[:]),
		CreatedAt: time.Now().UTC(),
	}

	// Step 2: Write the bytes
	if err := s.throttle(ctx, tier); err != nil {
		return nil, err
	}
	start := time.Now()
	err := s.backends[tier].Put(ctx, id, data)
	s.observe("put", tier, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to store blob in %s tier: %w", tier, err)
	}
	if s.metrics != nil {
		s.metrics.RecordBytes("write", string(tier), len(data))
	}

	// Step 3: Index the ref
	s.mu.Lock()
	s.refs[id] = ref
	s.mu.Unlock()

	return ref, nil
}

// Get returns the content of the blob, verifying its checksum when the
// ref index knows one.
func (s *TieredStore) Get(ctx context.Context, id metadata.BlobID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ref, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.throttle(ctx, ref.Tier); err != nil {
		return nil, err
	}
	start := time.Now()
	data, err := s.backends[ref.Tier].Get(ctx, id)
	s.observe("get", ref.Tier, start, err)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordBytes("read", string(ref.Tier), len(data))
	}

	if ref.Checksum != "" {
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != ref.Checksum {
			return nil, fmt.Errorf("blob %s: %w", id, blob.ErrChecksumMismatch)
		}
	}

	return data, nil
}

// Stat returns the Ref for a stored blob without reading its bytes.
func (s *TieredStore) Stat(ctx context.Context, id metadata.BlobID) (*blob.Ref, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ref, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	out := *ref
	return &out, nil
}

// Exists reports whether a blob with the ID exists in any tier.
func (s *TieredStore) Exists(ctx context.Context, id metadata.BlobID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := s.lookup(ctx, id)
	if err != nil {
		if err == blob.ErrBlobNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes the blob from its tier. Deleting a missing blob
// succeeds.
func (s *TieredStore) Delete(ctx context.Context, id metadata.BlobID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ref, err := s.lookup(ctx, id)
	if err != nil {
		if err == blob.ErrBlobNotFound {
			return nil
		}
		return err
	}

	if err := s.throttle(ctx, ref.Tier); err != nil {
		return err
	}
	start := time.Now()
	err = s.backends[ref.Tier].Delete(ctx, id)
	s.observe("delete", ref.Tier, start, err)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.refs, id)
	s.mu.Unlock()

	return nil
}

// List returns the IDs of every blob across all tiers. Used by the
// garbage collector to find content no metadata entry references.
func (s *TieredStore) List(ctx context.Context) ([]metadata.BlobID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := make(map[metadata.BlobID]struct{})
	var ids []metadata.BlobID

	for _, tier := range probeOrder {
		backend := s.backends[tier]
		if tier != blob.TierHot && backend == s.backends[blob.TierHot] {
			// Shared backend, already listed
			continue
		}
		if tier == blob.TierCold && backend == s.backends[blob.TierWarm] {
			continue
		}

		tierIDs, err := backend.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s tier: %w", tier, err)
		}
		for _, id := range tierIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	return ids, nil
}

// lookup resolves a blob ID to its Ref, first from the index, then by
// probing backends hot to cold. A probe hit rebuilds and caches the ref
// so subsequent reads skip the scan.
func (s *TieredStore) lookup(ctx context.Context, id metadata.BlobID) (*blob.Ref, error) {
	s.mu.RLock()
	ref, ok := s.refs[id]
	s.mu.RUnlock()
	if ok {
		return ref, nil
	}

	for _, tier := range probeOrder {
		if err := s.throttle(ctx, tier); err != nil {
			return nil, err
		}
		exists, err := s.backends[tier].Exists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}

		// Recovered after index loss: size and checksum are unknown
		// until the next read, so leave them zero.
		ref = &blob.Ref{ID: id, Tier: tier}
		s.mu.Lock()
		s.refs[id] = ref
		s.mu.Unlock()
		return ref, nil
	}

	return nil, blob.ErrBlobNotFound
}

// throttle applies the cold tier rate limit. Other tiers pass through.
func (s *TieredStore) throttle(ctx context.Context, tier blob.Tier) error {
	if tier != blob.TierCold {
		return nil
	}
	return s.coldLimiter.Wait(ctx)
}
