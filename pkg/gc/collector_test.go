package gc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dot-do/fsx/pkg/blob"
	blobmemory "github.com/dot-do/fsx/pkg/blob/memory"
	"github.com/dot-do/fsx/pkg/blob/tiered"
	"github.com/dot-do/fsx/pkg/fsx"
	"github.com/dot-do/fsx/pkg/metadata"
	metamemory "github.com/dot-do/fsx/pkg/metadata/memory"
)

func newCollectorFixture(t *testing.T, cfg Config) (*Collector, *fsx.Filesystem, blob.Store) {
	t.Helper()

	store := metamemory.NewMemoryStore()
	blobs, err := tiered.NewTieredStore(tiered.Options{Hot: blobmemory.NewMemoryBackend()})
	require.NoError(t, err)

	filesystem, err := fsx.New(context.Background(), fsx.Options{
		Store: store,
		Blobs: blobs,
	})
	require.NoError(t, err)

	collector, err := NewCollector(store, blobs, cfg)
	require.NoError(t, err)

	return collector, filesystem, blobs
}

func TestRunNowDeletesOrphans(t *testing.T) {
	collector, filesystem, blobs := newCollectorFixture(t, Config{Enabled: true})
	ctx := context.Background()

	// Referenced content stays.
	require.NoError(t, filesystem.WriteFile(ctx, "/kept.txt", []byte("kept"), nil))

	// Content with no metadata entry is orphaned.
	orphan, err := blobs.Put(ctx, []byte("orphaned bytes"))
	require.NoError(t, err)

	stats, err := collector.RunNow(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), stats.ReferencedCount)
	require.Equal(t, uint64(2), stats.ExistingCount)
	require.Equal(t, uint64(1), stats.OrphanedCount)
	require.Equal(t, uint64(1), stats.DeletedCount)
	require.Zero(t, stats.FailedCount)

	ok, err := blobs.Exists(ctx, orphan.ID)
	require.NoError(t, err)
	require.False(t, ok)

	// The referenced file is untouched.
	got, err := filesystem.ReadFile(ctx, "/kept.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("kept"), got)
}

func TestRunNowWalksNestedDirectories(t *testing.T) {
	collector, filesystem, _ := newCollectorFixture(t, Config{Enabled: true})
	ctx := context.Background()

	require.NoError(t, filesystem.MkdirAll(ctx, "/a/b/c", 0o755))
	require.NoError(t, filesystem.WriteFile(ctx, "/a/b/c/deep.txt", []byte("deep"), nil))

	stats, err := collector.RunNow(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), stats.ReferencedCount)
	require.Zero(t, stats.OrphanedCount)
}

func TestDryRunDeletesNothing(t *testing.T) {
	collector, _, blobs := newCollectorFixture(t, Config{Enabled: true, DryRun: true})
	ctx := context.Background()

	orphan, err := blobs.Put(ctx, []byte("orphan"))
	require.NoError(t, err)

	stats, err := collector.RunNow(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), stats.OrphanedCount)
	require.Zero(t, stats.DeletedCount)

	ok, err := blobs.Exists(ctx, orphan.ID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestStartStopLifecycle(t *testing.T) {
	collector, _, _ := newCollectorFixture(t, Config{Enabled: true, Interval: time.Hour})

	collector.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, collector.Stop(ctx))
}

func TestDisabledCollectorStops(t *testing.T) {
	collector, _, _ := newCollectorFixture(t, Config{Enabled: false})

	collector.Start()
	require.NoError(t, collector.Stop(context.Background()))
}

func TestNewCollectorRequiresLister(t *testing.T) {
	store := metamemory.NewMemoryStore()
	_, err := NewCollector(store, nonListingStore{}, Config{})
	require.Error(t, err)
}

// nonListingStore implements blob.Store without enumeration.
type nonListingStore struct{}

func (nonListingStore) Put(context.Context, []byte) (*blob.Ref, error) { return nil, nil }
func (nonListingStore) Get(context.Context, metadata.BlobID) ([]byte, error) {
	return nil, blob.ErrBlobNotFound
}
func (nonListingStore) Stat(context.Context, metadata.BlobID) (*blob.Ref, error) {
	return nil, blob.ErrBlobNotFound
}
func (nonListingStore) Exists(context.Context, metadata.BlobID) (bool, error) { return false, nil }
func (nonListingStore) Delete(context.Context, metadata.BlobID) error         { return nil }
