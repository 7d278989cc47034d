package tiered

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dot-do/fsx/pkg/blob"
	"github.com/dot-do/fsx/pkg/blob/memory"
	"github.com/dot-do/fsx/pkg/metadata"
)

// newTestStore builds a tiered store with separate in-memory backends per
// tier and small thresholds so tests can hit every tier cheaply.
func newTestStore(t *testing.T) (*TieredStore, *memory.MemoryBackend, *memory.MemoryBackend, *memory.MemoryBackend) {
	t.Helper()

	hot := memory.NewMemoryBackend()
	warm := memory.NewMemoryBackend()
	cold := memory.NewMemoryBackend()

	store, err := NewTieredStore(Options{
		Policy: blob.TierPolicy{HotMaxBytes: 16, WarmMaxBytes: 64},
		Hot:    hot,
		Warm:   warm,
		Cold:   cold,
	})
	require.NoError(t, err)

	return store, hot, warm, cold
}

func TestNewTieredStoreRequiresHot(t *testing.T) {
	_, err := NewTieredStore(Options{})
	require.Error(t, err)
}

func TestPutRoutesByTier(t *testing.T) {
	store, hot, warm, cold := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		data    []byte
		tier    blob.Tier
		backend *memory.MemoryBackend
	}{
		{"small goes hot", []byte("tiny"), blob.TierHot, hot},
		{"medium goes warm", bytes.Repeat([]byte("w"), 32), blob.TierWarm, warm},
		{"large goes cold", bytes.Repeat([]byte("c"), 128), blob.TierCold, cold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := store.Put(ctx, tt.data)
			require.NoError(t, err)
			require.Equal(t, tt.tier, ref.Tier)
			require.Equal(t, uint64(len(tt.data)), ref.Size)
			require.NotEmpty(t, ref.ID)
			require.Len(t, ref.Checksum, 64)

			raw, err := tt.backend.Get(ctx, ref.ID)
			require.NoError(t, err)
			require.Equal(t, tt.data, raw)
		})
	}
}

func TestGetRoundTrip(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	ctx := context.Background()

	content := []byte("Hello, World!")
	ref, err := store.Put(ctx, content)
	require.NoError(t, err)

	data, err := store.Get(ctx, ref.ID)
	require.NoError(t, err)
	require.Equal(t, content, data)
}

func TestGetMissing(t *testing.T) {
	store, _, _, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "no-such-blob")
	require.True(t, errors.Is(err, blob.ErrBlobNotFound))
}

func TestGetDetectsCorruption(t *testing.T) {
	store, hot, _, _ := newTestStore(t)
	ctx := context.Background()

	ref, err := store.Put(ctx, []byte("pristine"))
	require.NoError(t, err)

	// Corrupt the stored bytes behind the store's back.
	require.NoError(t, hot.Put(ctx, ref.ID, []byte("tampered")))

	_, err = store.Get(ctx, ref.ID)
	require.True(t, errors.Is(err, blob.ErrChecksumMismatch))
}

func TestStat(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	ctx := context.Background()

	ref, err := store.Put(ctx, []byte("some content"))
	require.NoError(t, err)

	got, err := store.Stat(ctx, ref.ID)
	require.NoError(t, err)
	require.Equal(t, ref.ID, got.ID)
	require.Equal(t, ref.Size, got.Size)
	require.Equal(t, ref.Checksum, got.Checksum)

	_, err = store.Stat(ctx, "missing")
	require.True(t, errors.Is(err, blob.ErrBlobNotFound))
}

func TestExists(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	ctx := context.Background()

	ok, err := store.Exists(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	ref, err := store.Put(ctx, []byte("x"))
	require.NoError(t, err)

	ok, err = store.Exists(ctx, ref.ID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDeleteIdempotent(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	ctx := context.Background()

	ref, err := store.Put(ctx, []byte("x"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, ref.ID))
	require.NoError(t, store.Delete(ctx, ref.ID))

	ok, err := store.Exists(ctx, ref.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

// TestLookupRecoversAfterIndexLoss simulates a restart: content written
// through one store instance must be readable through a fresh instance
// sharing the same backends.
func TestLookupRecoversAfterIndexLoss(t *testing.T) {
	ctx := context.Background()

	hot := memory.NewMemoryBackend()
	warm := memory.NewMemoryBackend()

	opts := Options{
		Policy: blob.TierPolicy{HotMaxBytes: 16, WarmMaxBytes: 64},
		Hot:    hot,
		Warm:   warm,
	}

	first, err := NewTieredStore(opts)
	require.NoError(t, err)

	content := bytes.Repeat([]byte("w"), 32)
	ref, err := first.Put(ctx, content)
	require.NoError(t, err)
	require.Equal(t, blob.TierWarm, ref.Tier)

	second, err := NewTieredStore(opts)
	require.NoError(t, err)

	data, err := second.Get(ctx, ref.ID)
	require.NoError(t, err)
	require.Equal(t, content, data)
}

func TestListSpansTiers(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	ctx := context.Background()

	hotRef, err := store.Put(ctx, []byte("tiny"))
	require.NoError(t, err)
	warmRef, err := store.Put(ctx, bytes.Repeat([]byte("w"), 32))
	require.NoError(t, err)
	coldRef, err := store.Put(ctx, bytes.Repeat([]byte("c"), 128))
	require.NoError(t, err)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []metadata.BlobID{hotRef.ID, warmRef.ID, coldRef.ID}, ids)
}
