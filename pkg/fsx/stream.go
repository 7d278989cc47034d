package fsx

import "io"

// streamChunkSize caps how many bytes one Read call on a read stream
// hands out, so large payloads move in bounded chunks regardless of the
// caller's buffer size.
const streamChunkSize = 64 * 1024

// ReadStream returns an io.Reader over the content in [start, end).
//
// end < 0 means "to the current end of content". The reader operates on
// a snapshot taken at call time: later writes through the handle are not
// visible, and each call produces a fresh, non-restartable stream.
// Invalid bounds report EINVAL.
func (h *Handle) ReadStream(start, end int64) (io.Reader, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.guard("read"); err != nil {
		return nil, err
	}

	size := int64(len(h.buf))
	if end < 0 || end > size {
		end = size
	}
	if start < 0 || start > end {
		return nil, newError(EINVAL, "read", h.path)
	}

	snapshot := make([]byte, end-start)
	copy(snapshot, h.buf[start:end])

	return &readStream{data: snapshot}, nil
}

// WriteStream returns an io.Writer that appends into the handle's
// content starting at start (the current end of content when start < 0).
// Writes through the stream dirty the handle like direct Write calls;
// they hit storage on the next Sync or Close.
func (h *Handle) WriteStream(start int64) (io.Writer, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.guard("write"); err != nil {
		return nil, err
	}

	if start < 0 {
		start = int64(len(h.buf))
	}
	return &writeStream{handle: h, pos: start}, nil
}

// readStream is a finite reader over a fixed content snapshot.
type readStream struct {
	data []byte
	pos  int
}

func (r *readStream) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}

	n := len(p)
	if n > streamChunkSize {
		n = streamChunkSize
	}
	if remaining := len(r.data) - r.pos; n > remaining {
		n = remaining
	}

	copy(p, r.data[r.pos:r.pos+n])
	r.pos += n
	return n, nil
}

// writeStream appends into a handle's buffer at a private cursor.
type writeStream struct {
	handle *Handle
	pos    int64
}

func (w *writeStream) Write(p []byte) (int, error) {
	n, err := w.handle.Write(p, w.pos)
	if err != nil {
		return 0, err
	}
	w.pos += int64(n)
	return n, nil
}
