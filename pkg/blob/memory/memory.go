// Package memory provides an in-memory blob backend, the default hot
// tier.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dot-do/fsx/pkg/blob"
	"github.com/dot-do/fsx/pkg/metadata"
)

// MemoryBackend implements blob.Backend using an in-memory map.
//
// Content is copied on both Put and Get so callers can never race against
// the store's own buffers.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[metadata.BlobID][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data: make(map[metadata.BlobID][]byte),
	}
}

// Put stores a copy of data under the given ID.
func (b *MemoryBackend) Put(ctx context.Context, id metadata.BlobID, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[id] = buf
	return nil
}

// Get returns a copy of the content stored under the ID.
func (b *MemoryBackend) Get(ctx context.Context, id metadata.BlobID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.data[id]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", id, blob.ErrBlobNotFound)
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

// Exists reports whether the ID is present.
func (b *MemoryBackend) Exists(ctx context.Context, id metadata.BlobID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.data[id]
	return ok, nil
}

// Delete removes the ID. Idempotent.
func (b *MemoryBackend) Delete(ctx context.Context, id metadata.BlobID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, id)
	return nil
}

// List returns all stored blob IDs.
func (b *MemoryBackend) List(ctx context.Context) ([]metadata.BlobID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]metadata.BlobID, 0, len(b.data))
	for id := range b.data {
		ids = append(ids, id)
	}
	return ids, nil
}
