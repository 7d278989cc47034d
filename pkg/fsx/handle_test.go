package fsx

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestHandle(t *testing.T, fs *Filesystem, path, flag string) *Handle {
	t.Helper()
	h, err := fs.Open(context.Background(), path, flag, 0o644)
	require.NoError(t, err)
	return h
}

func TestOpenFlags(t *testing.T) {
	fs := newTestFS(t, Identity{})
	ctx := context.Background()

	// "r" requires the file to exist.
	_, err := fs.Open(ctx, "/missing", "r", 0)
	requireCode(t, err, ENOENT)

	// "w" creates, "wx" refuses the second time.
	h := openTestHandle(t, fs, "/f", "w")
	require.NoError(t, h.Close(ctx))

	_, err = fs.Open(ctx, "/f", "wx", 0)
	requireCode(t, err, EEXIST)

	// Directories cannot be opened.
	require.NoError(t, fs.Mkdir(ctx, "/d", 0o755))
	_, err = fs.Open(ctx, "/d", "r", 0)
	requireCode(t, err, EISDIR)

	_, err = fs.Open(ctx, "/f", "rw+", 0)
	requireCode(t, err, EINVAL)
}

func TestOpenWriteTruncates(t *testing.T) {
	fs := newTestFS(t, Identity{})
	ctx := context.Background()

	require.NoError(t, fs.WriteFile(ctx, "/f", []byte("previous content"), nil))

	h := openTestHandle(t, fs, "/f", "w")
	stats, err := h.Stat()
	require.NoError(t, err)
	require.Zero(t, stats.Size)
	require.NoError(t, h.Close(ctx))

	got, err := fs.ReadFile(ctx, "/f")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestHandleReadAt(t *testing.T) {
	fs := newTestFS(t, Identity{})
	ctx := context.Background()

	require.NoError(t, fs.WriteFile(ctx, "/f", []byte("Hello, World!"), nil))
	h := openTestHandle(t, fs, "/f", "r")
	defer h.Close(ctx)

	// Full read
	buf := make([]byte, 13)
	n, err := h.ReadAt(buf, 0, -1, 0)
	require.NoError(t, err)
	require.Equal(t, 13, n)
	require.Equal(t, []byte("Hello, World!"), buf)

	// Offset into the destination, position into the content
	buf = []byte("________")
	n, err = h.ReadAt(buf, 2, 5, 7)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, []byte("__World_"), buf)

	// Clamped by remaining content
	buf = make([]byte, 100)
	n, err = h.ReadAt(buf, 0, -1, 8)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	// Reading at or past the end yields zero bytes, not an error
	n, err = h.ReadAt(buf, 0, -1, 13)
	require.NoError(t, err)
	require.Zero(t, n)

	// Invalid arguments
	_, err = h.ReadAt(buf, -1, 1, 0)
	requireCode(t, err, EINVAL)
	_, err = h.ReadAt(buf, 0, 1000, 0)
	requireCode(t, err, EINVAL)
	_, err = h.ReadAt(buf, 0, 1, -5)
	requireCode(t, err, EINVAL)
}

func TestHandleWrite(t *testing.T) {
	fs := newTestFS(t, Identity{})
	ctx := context.Background()

	h := openTestHandle(t, fs, "/f", "w")

	n, err := h.Write([]byte("hello"), -1)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	// Sequential appends continue at the cursor.
	_, err = h.Write([]byte(" world"), -1)
	require.NoError(t, err)

	// Positioned writes patch in place without moving the cursor.
	_, err = h.Write([]byte("H"), 0)
	require.NoError(t, err)

	require.NoError(t, h.Close(ctx))

	got, err := fs.ReadFile(ctx, "/f")
	require.NoError(t, err)
	require.Equal(t, []byte("Hello world"), got)
}

func TestHandleWriteGapZeroFills(t *testing.T) {
	fs := newTestFS(t, Identity{})
	ctx := context.Background()

	h := openTestHandle(t, fs, "/f", "w")
	_, err := h.Write([]byte("end"), 5)
	require.NoError(t, err)
	require.NoError(t, h.Close(ctx))

	got, err := fs.ReadFile(ctx, "/f")
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0, 0, 'e', 'n', 'd'}, got)
}

func TestHandleAppendFlag(t *testing.T) {
	fs := newTestFS(t, Identity{})
	ctx := context.Background()

	require.NoError(t, fs.WriteFile(ctx, "/log", []byte("one"), nil))

	h := openTestHandle(t, fs, "/log", "a")
	_, err := h.Write([]byte(" two"), -1)
	require.NoError(t, err)
	require.NoError(t, h.Close(ctx))

	got, err := fs.ReadFile(ctx, "/log")
	require.NoError(t, err)
	require.Equal(t, []byte("one two"), got)
}

func TestHandleTruncate(t *testing.T) {
	fs := newTestFS(t, Identity{})
	ctx := context.Background()

	require.NoError(t, fs.WriteFile(ctx, "/f", []byte("1234567890"), nil))
	h := openTestHandle(t, fs, "/f", "a")

	require.NoError(t, h.Truncate(4))
	stats, err := h.Stat()
	require.NoError(t, err)
	require.Equal(t, uint64(4), stats.Size)

	require.NoError(t, h.Truncate(8))
	stats, err = h.Stat()
	require.NoError(t, err)
	require.Equal(t, uint64(8), stats.Size)

	require.NoError(t, h.Close(ctx))

	got, err := fs.ReadFile(ctx, "/f")
	require.NoError(t, err)
	require.Equal(t, []byte{'1', '2', '3', '4', 0, 0, 0, 0}, got)
}

func TestHandleStatLiveSize(t *testing.T) {
	fs := newTestFS(t, Identity{})
	ctx := context.Background()

	h := openTestHandle(t, fs, "/f", "w")
	defer h.Close(ctx)

	for i, want := range []uint64{3, 6, 9} {
		_, err := h.Write([]byte("abc"), -1)
		require.NoError(t, err)

		stats, err := h.Stat()
		require.NoError(t, err, "write %d", i)
		require.Equal(t, want, stats.Size)
	}
}

func TestHandleSyncPersists(t *testing.T) {
	fs := newTestFS(t, Identity{})
	ctx := context.Background()

	h := openTestHandle(t, fs, "/f", "w")
	_, err := h.Write([]byte("durable"), -1)
	require.NoError(t, err)

	require.NoError(t, h.Sync(ctx))

	// Visible through the filesystem before the handle closes.
	got, err := fs.ReadFile(ctx, "/f")
	require.NoError(t, err)
	require.Equal(t, []byte("durable"), got)

	// A clean handle syncs as a no-op.
	require.NoError(t, h.Sync(ctx))
	require.NoError(t, h.Close(ctx))
}

func TestClosedHandleGuard(t *testing.T) {
	fs := newTestFS(t, Identity{})
	ctx := context.Background()

	h := openTestHandle(t, fs, "/f", "w")
	require.NoError(t, h.Close(ctx))

	buf := make([]byte, 4)
	_, err := h.ReadAt(buf, 0, -1, 0)
	requireCode(t, err, EINVAL)
	require.True(t, errors.Is(err, ErrHandleClosed))

	_, err = h.Write([]byte("x"), -1)
	require.True(t, errors.Is(err, ErrHandleClosed))

	require.True(t, errors.Is(h.Truncate(0), ErrHandleClosed))
	_, err = h.Stat()
	require.True(t, errors.Is(err, ErrHandleClosed))
	require.True(t, errors.Is(h.Sync(ctx), ErrHandleClosed))
	require.True(t, errors.Is(h.Close(ctx), ErrHandleClosed))

	_, err = h.ReadStream(0, -1)
	require.True(t, errors.Is(err, ErrHandleClosed))
	_, err = h.WriteStream(-1)
	require.True(t, errors.Is(err, ErrHandleClosed))
}

func TestReadStream(t *testing.T) {
	fs := newTestFS(t, Identity{})
	ctx := context.Background()

	content := make([]byte, 200*1024)
	for i := range content {
		content[i] = byte(i % 251)
	}
	require.NoError(t, fs.WriteFile(ctx, "/big", content, nil))

	h := openTestHandle(t, fs, "/big", "r")
	defer h.Close(ctx)

	r, err := h.ReadStream(0, -1)
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, content, got)

	// Bounded range
	r, err = h.ReadStream(10, 20)
	require.NoError(t, err)
	got, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, content[10:20], got)

	// Streams snapshot: a later write is not visible.
	r, err = h.ReadStream(0, 5)
	require.NoError(t, err)
	_, err = h.Write([]byte("XXXXX"), 0)
	require.NoError(t, err)
	got, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, content[:5], got)

	_, err = h.ReadStream(-1, 10)
	requireCode(t, err, EINVAL)
}

func TestReadStreamChunking(t *testing.T) {
	fs := newTestFS(t, Identity{})
	ctx := context.Background()

	content := make([]byte, streamChunkSize+1)
	require.NoError(t, fs.WriteFile(ctx, "/big", content, nil))

	h := openTestHandle(t, fs, "/big", "r")
	defer h.Close(ctx)

	r, err := h.ReadStream(0, -1)
	require.NoError(t, err)

	// A read larger than the chunk size is capped at one chunk.
	buf := make([]byte, streamChunkSize*2)
	n, err := r.Read(buf)
	require.NoError(t, err)
	require.Equal(t, streamChunkSize, n)

	n, err = r.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = r.Read(buf)
	require.Equal(t, io.EOF, err)
}

func TestWriteStream(t *testing.T) {
	fs := newTestFS(t, Identity{})
	ctx := context.Background()

	require.NoError(t, fs.WriteFile(ctx, "/f", []byte("head "), nil))

	h := openTestHandle(t, fs, "/f", "a")
	w, err := h.WriteStream(-1)
	require.NoError(t, err)

	_, err = w.Write([]byte("tail"))
	require.NoError(t, err)
	require.NoError(t, h.Close(ctx))

	got, err := fs.ReadFile(ctx, "/f")
	require.NoError(t, err)
	require.Equal(t, []byte("head tail"), got)
}

func TestHandleWriteString(t *testing.T) {
	fs := newTestFS(t, Identity{})
	ctx := context.Background()

	h := openTestHandle(t, fs, "/f", "w")
	_, err := h.WriteString("SGVsbG8=", "base64", -1)
	require.NoError(t, err)
	require.NoError(t, h.Close(ctx))

	got, err := fs.ReadFile(ctx, "/f")
	require.NoError(t, err)
	require.Equal(t, []byte("Hello"), got)
}

func TestHandleFDsUnique(t *testing.T) {
	fs := newTestFS(t, Identity{})
	ctx := context.Background()

	h1 := openTestHandle(t, fs, "/a", "w")
	h2 := openTestHandle(t, fs, "/b", "w")
	require.NotEqual(t, h1.FD(), h2.FD())
	require.NoError(t, h1.Close(ctx))
	require.NoError(t, h2.Close(ctx))
}
