package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dot-do/fsx/pkg/blob"
	"github.com/dot-do/fsx/pkg/metadata"
)

func TestMemoryBackendPutGet(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	id := metadata.BlobID("blob-1")
	require.NoError(t, backend.Put(ctx, id, []byte("Hello, World!")))

	data, err := backend.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []byte("Hello, World!"), data)
}

func TestMemoryBackendGetMissing(t *testing.T) {
	backend := NewMemoryBackend()

	_, err := backend.Get(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, errors.Is(err, blob.ErrBlobNotFound))
}

func TestMemoryBackendGetReturnsCopy(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	id := metadata.BlobID("blob-1")
	require.NoError(t, backend.Put(ctx, id, []byte("original")))

	data, err := backend.Get(ctx, id)
	require.NoError(t, err)
	data[0] = 'X'

	again, err := backend.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []byte("original"), again)
}

func TestMemoryBackendExists(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	ok, err := backend.Exists(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, backend.Put(ctx, "present", []byte("x")))

	ok, err = backend.Exists(ctx, "present")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemoryBackendDeleteIdempotent(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	require.NoError(t, backend.Put(ctx, "blob-1", []byte("x")))
	require.NoError(t, backend.Delete(ctx, "blob-1"))
	require.NoError(t, backend.Delete(ctx, "blob-1"))

	ok, err := backend.Exists(ctx, "blob-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryBackendList(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	ids, err := backend.List(ctx)
	require.NoError(t, err)
	require.Empty(t, ids)

	require.NoError(t, backend.Put(ctx, "a", []byte("1")))
	require.NoError(t, backend.Put(ctx, "b", []byte("2")))

	ids, err = backend.List(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []metadata.BlobID{"a", "b"}, ids)
}

func TestMemoryBackendCancelledContext(t *testing.T) {
	backend := NewMemoryBackend()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, backend.Put(ctx, "blob-1", []byte("x")))
	_, err := backend.Get(ctx, "blob-1")
	require.Error(t, err)
}
