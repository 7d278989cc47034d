// Package blob defines the content storage contract consumed by the
// filesystem core.
//
// Blob storage is deliberately decoupled from metadata: a FileEntry holds
// a BlobID as a weak reference, multiple hard links share one blob, and
// blob bytes outlive any single directory entry until the last reference
// is gone. The store is tiered (hot in-memory, warm object storage, cold
// archival) but callers only see opaque IDs; tier placement is the
// storage layer's concern.
package blob

import (
	"context"
	"time"

	"github.com/dot-do/fsx/pkg/metadata"
)

// Tier is the storage class for blob content.
type Tier string

const (
	// TierHot keeps content inline in fast storage for small blobs.
	TierHot Tier = "hot"

	// TierWarm keeps content in object storage.
	TierWarm Tier = "warm"

	// TierCold keeps content in archival storage.
	TierCold Tier = "cold"
)

// Ref describes one stored blob.
//
// A Ref is owned by the storage layer. The metadata layer's
// FileEntry.BlobID is a lookup key only; deleting the last referencing
// entry triggers reclamation through Delete (directly or via the garbage
// collector).
type Ref struct {
	// ID is the opaque blob identifier referenced by FileEntry.BlobID.
	ID metadata.BlobID `json:"id"`

	// Tier is the storage class the bytes landed in.
	Tier Tier `json:"tier"`

	// Size is the content length in bytes.
	Size uint64 `json:"size"`

	// Checksum is the hex-encoded SHA-256 of the content.
	Checksum string `json:"checksum"`

	// CreatedAt is when the blob was stored.
	CreatedAt time.Time `json:"created_at"`
}

// Store is the content storage contract the filesystem core consumes.
//
// Thread Safety: implementations must be safe for concurrent use.
// Concurrent writes to the same ID are undefined (last write wins at
// best); the core never issues them for independent files.
type Store interface {
	// Put stores data and returns a Ref describing where it landed.
	// The ID is chosen by the store and is unique.
	Put(ctx context.Context, data []byte) (*Ref, error)

	// Get returns the full content of the blob.
	//
	// Returns ErrBlobNotFound if no blob has the ID.
	Get(ctx context.Context, id metadata.BlobID) ([]byte, error)

	// Stat returns the Ref for a stored blob without reading its bytes.
	//
	// Returns ErrBlobNotFound if no blob has the ID.
	Stat(ctx context.Context, id metadata.BlobID) (*Ref, error)

	// Exists reports whether a blob with the ID exists. A missing blob
	// is (false, nil), not an error.
	Exists(ctx context.Context, id metadata.BlobID) (bool, error)

	// Delete removes the blob. Deleting a non-existent blob succeeds
	// (idempotent), which tolerates crashes between metadata removal and
	// content cleanup.
	Delete(ctx context.Context, id metadata.BlobID) error
}

// Backend is a single-tier byte store composed by the tiered router.
//
// Unlike Store, a Backend is handed the blob ID so the router can keep
// IDs stable while choosing placement.
type Backend interface {
	// Put stores data under the given ID, replacing any previous value.
	Put(ctx context.Context, id metadata.BlobID, data []byte) error

	// Get returns the content stored under the ID, or ErrBlobNotFound.
	Get(ctx context.Context, id metadata.BlobID) ([]byte, error)

	// Exists reports whether the ID is present.
	Exists(ctx context.Context, id metadata.BlobID) (bool, error)

	// Delete removes the ID. Idempotent.
	Delete(ctx context.Context, id metadata.BlobID) error

	// List returns all blob IDs in this backend. Used by garbage
	// collection; may be expensive on remote backends.
	List(ctx context.Context) ([]metadata.BlobID, error)
}
