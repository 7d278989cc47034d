package fsx

import (
	"context"
	"sync"

	"github.com/dot-do/fsx/pkg/metadata"
)

// Handle is the mutable per-open-file state.
//
// It buffers the file's entire content in memory: reads and writes
// operate on the buffer, and Sync or Close persists it back through the
// filesystem. A Handle is single-owner. The mutex guards only the
// open/closed transition; concurrent writers to one handle race and the
// last write wins.
//
// Every method called after Close fails with an EINVAL error wrapping
// ErrHandleClosed. Nothing after close silently succeeds.
type Handle struct {
	fs    *Filesystem
	fd    uint64
	path  string
	entry *metadata.FileEntry

	mu     sync.Mutex
	open   bool
	buf    []byte
	cursor int64
	dirty  bool
}

// FD returns the handle's file descriptor number, unique within its
// Filesystem.
func (h *Handle) FD() uint64 {
	return h.fd
}

// Path returns the path the handle was opened with.
func (h *Handle) Path() string {
	return h.path
}

// guard fails with the closed-handle error unless the handle is open.
// Callers hold h.mu.
func (h *Handle) guard(op string) error {
	if !h.open {
		return wrapError(EINVAL, op, h.path, ErrHandleClosed)
	}
	return nil
}

// ReadAt copies up to length bytes of content starting at position into
// dst starting at offset.
//
// length < 0 means "the rest of dst's capacity". The count returned is
// clamped by both the remaining content and the remaining room in dst; a
// position at or past the end of content reads zero bytes without error.
// Offsets or positions below zero, or beyond dst, report EINVAL.
func (h *Handle) ReadAt(dst []byte, offset, length int, position int64) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.guard("read"); err != nil {
		return 0, err
	}
	if offset < 0 || offset > len(dst) || position < 0 {
		return 0, newError(EINVAL, "read", h.path)
	}
	if length < 0 {
		length = len(dst) - offset
	}
	if offset+length > len(dst) {
		return 0, newError(EINVAL, "read", h.path)
	}

	if position >= int64(len(h.buf)) {
		return 0, nil
	}

	n := copy(dst[offset:offset+length], h.buf[position:])
	return n, nil
}

// Write writes data into the content at position and returns the number
// of bytes written.
//
// position < 0 writes at the handle's cursor (the end, for handles
// opened with "a"); the cursor then advances past the written bytes. A
// position beyond the current content length grows the buffer, zero
// filling the gap.
func (h *Handle) Write(data []byte, position int64) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.guard("write"); err != nil {
		return 0, err
	}

	at := position
	if at < 0 {
		at = h.cursor
	}

	end := at + int64(len(data))
	if end > int64(len(h.buf)) {
		h.buf = resizeBuffer(h.buf, uint64(end))
	}
	copy(h.buf[at:end], data)

	if position < 0 {
		h.cursor = end
	}
	h.dirty = true
	return len(data), nil
}

// WriteString decodes text per the named encoding (see decodeString) and
// writes it at position, with the same position semantics as Write.
func (h *Handle) WriteString(data, encoding string, position int64) (int, error) {
	decoded, err := decodeString(data, encoding)
	if err != nil {
		return 0, wrapError(EINVAL, "write", h.path, err)
	}
	return h.Write(decoded, position)
}

// Truncate shrinks or zero-extends the content to exactly size bytes.
// The next Stat on the handle reflects the new size immediately.
func (h *Handle) Truncate(size uint64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.guard("truncate"); err != nil {
		return err
	}

	if uint64(len(h.buf)) != size {
		h.buf = resizeBuffer(h.buf, size)
		h.dirty = true
	}
	if h.cursor > int64(size) {
		h.cursor = int64(size)
	}
	return nil
}

// Stat returns a fresh Stats view of the handle. Size is always the
// live buffer length, never a cached value.
func (h *Handle) Stat() (Stats, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.guard("stat"); err != nil {
		return Stats{}, err
	}

	snapshot := h.entry.Clone()
	snapshot.Size = uint64(len(h.buf))
	return newStats(snapshot), nil
}

// Sync persists the buffered content back through the filesystem:
// a new blob plus metadata size and timestamps. A clean handle syncs as
// a no-op.
func (h *Handle) Sync(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.guard("sync"); err != nil {
		return err
	}
	return h.flushLocked(ctx)
}

// Close flushes pending content and invalidates the handle. Closing an
// already closed handle fails like every other post-close call.
func (h *Handle) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.guard("close"); err != nil {
		return err
	}

	flushErr := h.flushLocked(ctx)
	h.open = false
	h.buf = nil

	count := h.fs.openHandles.Add(-1)
	if h.fs.metrics != nil {
		h.fs.metrics.SetOpenHandles(count)
	}
	return flushErr
}

// flushLocked writes the buffer back when dirty. Callers hold h.mu.
func (h *Handle) flushLocked(ctx context.Context) error {
	if !h.dirty {
		return nil
	}

	current, err := h.fs.store.Get(ctx, h.entry.Path)
	if err != nil {
		return mapLookupError("sync", h.path, err)
	}
	if err := h.fs.overwriteFile(ctx, current, h.buf); err != nil {
		return err
	}
	h.entry.Size = uint64(len(h.buf))
	h.dirty = false
	return nil
}
