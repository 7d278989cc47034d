// Package gc provides garbage collection for orphaned blobs.
//
// A blob is orphaned when no FileEntry references its ID. Orphans can
// occur due to:
//   - Crashes between metadata removal and blob cleanup
//   - Failed blob delete operations
//   - Bugs in metadata/blob coordination
//
// The collector works with any metadata.Store and any blob.Store that
// can enumerate its contents.
package gc

import (
	"context"
	"fmt"
	"time"

	"github.com/dot-do/fsx/internal/logger"
	"github.com/dot-do/fsx/pkg/blob"
	"github.com/dot-do/fsx/pkg/metadata"
)

// Lister is the enumeration capability the collector requires from a
// blob store.
type Lister interface {
	List(ctx context.Context) ([]metadata.BlobID, error)
}

// Collector performs periodic garbage collection on a blob store.
//
// It runs in the background, scanning for blobs no metadata entry
// references and deleting them in batches.
//
// Thread Safety: Safe for concurrent use.
type Collector struct {
	store  metadata.Store
	blobs  blob.Store
	lister Lister
	config Config
	stopCh chan struct{}
	doneCh chan struct{}
}

// Config contains configuration for the garbage collector.
type Config struct {
	// Enabled controls whether garbage collection is active.
	Enabled bool

	// Interval is how often to run garbage collection (default: 24h).
	Interval time.Duration

	// BatchSize is how many orphaned blobs to delete per batch
	// (default: 1000).
	BatchSize int

	// DryRun logs what would be deleted without deleting. Useful for
	// validation.
	DryRun bool
}

// NewCollector creates a garbage collector over the given stores.
//
// The collector is initialized but not started; call Start to begin
// background collection. The blob store must implement Lister.
func NewCollector(store metadata.Store, blobs blob.Store, config Config) (*Collector, error) {
	lister, ok := blobs.(Lister)
	if !ok {
		return nil, fmt.Errorf("blob store does not support enumeration")
	}

	if config.Interval == 0 {
		config.Interval = 24 * time.Hour
	}
	if config.BatchSize == 0 {
		config.BatchSize = 1000
	}

	return &Collector{
		store:  store,
		blobs:  blobs,
		lister: lister,
		config: config,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}, nil
}

// Start begins background garbage collection. Safe to call when
// disabled; it simply does nothing.
func (c *Collector) Start() {
	if !c.config.Enabled {
		logger.Info("garbage collection disabled")
		return
	}

	logger.Info("starting garbage collector: interval=%s batch_size=%d dry_run=%v",
		c.config.Interval, c.config.BatchSize, c.config.DryRun)

	go c.worker()
}

// Stop stops the collector and waits for any in-progress run to finish,
// bounded by the context.
func (c *Collector) Stop(ctx context.Context) error {
	if !c.config.Enabled {
		return nil
	}

	logger.Info("stopping garbage collector...")
	close(c.stopCh)

	select {
	case <-c.doneCh:
		logger.Info("garbage collector stopped")
		return nil
	case <-ctx.Done():
		logger.Warn("garbage collector shutdown timeout")
		return ctx.Err()
	}
}

// RunNow triggers an immediate collection run and blocks until it
// completes or the context is cancelled. Useful for tests, manual
// triggers, and startup cleanup.
func (c *Collector) RunNow(ctx context.Context) (*Stats, error) {
	logger.Info("running garbage collection (manual trigger)...")
	return c.collect(ctx)
}

// worker is the background goroutine running periodic collections.
func (c *Collector) worker() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			stats, err := c.collect(ctx)
			cancel()

			if err != nil {
				logger.Error("garbage collection failed: %v", err)
			} else {
				logger.Info("garbage collection completed: %s", stats.Summary())
			}

		case <-c.stopCh:
			return
		}
	}
}

// collect performs one garbage collection run:
//  1. Walk the metadata tree collecting referenced blob IDs
//  2. List all blob IDs in the blob store
//  3. Compute orphaned = existing - referenced
//  4. Batch delete orphaned blobs
func (c *Collector) collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}

	// Phase 1: Referenced IDs from metadata
	referenced := make(map[metadata.BlobID]struct{})
	if err := c.walkReferences(ctx, "/", referenced); err != nil {
		return stats, fmt.Errorf("failed to collect referenced blobs: %w", err)
	}
	stats.ReferencedCount = uint64(len(referenced))

	// Phase 2: Existing IDs from the blob store
	existing, err := c.lister.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list blobs: %w", err)
	}
	stats.ExistingCount = uint64(len(existing))

	// Phase 3: Orphans
	orphaned := make([]metadata.BlobID, 0)
	for _, id := range existing {
		if _, ok := referenced[id]; !ok {
			orphaned = append(orphaned, id)
		}
	}
	stats.OrphanedCount = uint64(len(orphaned))

	if len(orphaned) == 0 {
		stats.EndTime = time.Now()
		return stats, nil
	}

	logger.Info("gc: found %d orphaned blobs (%d referenced, %d existing)",
		stats.OrphanedCount, stats.ReferencedCount, stats.ExistingCount)

	if c.config.DryRun {
		for i, id := range orphaned {
			if i == 10 {
				logger.Info("gc: dry run: ... and %d more", len(orphaned)-10)
				break
			}
			logger.Info("gc: dry run: would delete %s", id)
		}
		stats.EndTime = time.Now()
		return stats, nil
	}

	// Phase 4: Delete in batches
	for i := 0; i < len(orphaned); i += c.config.BatchSize {
		if err := ctx.Err(); err != nil {
			stats.EndTime = time.Now()
			return stats, err
		}

		end := i + c.config.BatchSize
		if end > len(orphaned) {
			end = len(orphaned)
		}

		for _, id := range orphaned[i:end] {
			if derr := c.blobs.Delete(ctx, id); derr != nil {
				logger.Debug("gc: failed to delete %s: %v", id, derr)
				stats.FailedCount++
				continue
			}
			stats.DeletedCount++
		}
	}

	stats.EndTime = time.Now()
	logger.Info("gc: deleted %d blobs, %d failed, duration=%s",
		stats.DeletedCount, stats.FailedCount, stats.Duration())

	return stats, nil
}

// walkReferences walks the directory tree below path, adding every
// entry's BlobID to refs.
func (c *Collector) walkReferences(ctx context.Context, path string, refs map[metadata.BlobID]struct{}) error {
	children, err := c.store.Children(ctx, path)
	if err != nil {
		return err
	}

	for _, child := range children {
		if child.BlobID != "" {
			refs[child.BlobID] = struct{}{}
		}
		if child.Type == metadata.FileTypeDirectory {
			if err := c.walkReferences(ctx, child.Path, refs); err != nil {
				return err
			}
		}
	}
	return nil
}

// Stats contains statistics from one garbage collection run.
type Stats struct {
	StartTime       time.Time
	EndTime         time.Time
	ReferencedCount uint64
	ExistingCount   uint64
	OrphanedCount   uint64
	DeletedCount    uint64
	FailedCount     uint64
}

// Duration returns the total collection duration.
func (s *Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Summary returns a human-readable summary of the run.
func (s *Stats) Summary() string {
	return fmt.Sprintf("referenced=%d existing=%d orphaned=%d deleted=%d failed=%d duration=%s",
		s.ReferencedCount, s.ExistingCount, s.OrphanedCount,
		s.DeletedCount, s.FailedCount, s.Duration())
}
