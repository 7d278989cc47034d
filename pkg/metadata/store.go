package metadata

import "context"

// ============================================================================
// Store Interface
// ============================================================================

// Store maps normalized paths to FileEntry records.
//
// This is the narrow seam between the filesystem core and whatever
// actually persists metadata (an in-memory table, BadgerDB, a remote
// key-value service). The core never assumes atomicity beyond "a single
// Get/Put is linearizable"; cross-call consistency is the implementation's
// responsibility.
//
// Path Keys:
// All paths passed to a Store must already be normalized with CleanPath.
// Stores index by the exact string and perform no normalization of their
// own.
//
// Symlinks:
// Get and Has are raw lookups and never follow symlinks. Implementations
// that can resolve link chains more efficiently than repeated Gets (e.g.
// server-side resolution against a remote table) may additionally
// implement SymlinkResolver; the core detects it and falls back to manual
// chain-walking otherwise.
//
// Inode Identity:
// Hard links are separate entries sharing one ID. FindByID returns every
// entry for an inode so the core can keep Nlink and shared attributes
// consistent across links.
//
// Thread Safety:
// Implementations must be safe for concurrent use by multiple goroutines.
type Store interface {
	// Get returns the entry stored at the given normalized path.
	//
	// The returned entry is a copy owned by the caller. Does NOT follow
	// symlinks.
	//
	// Returns:
	//   - *FileEntry: The entry at the path
	//   - error: ErrEntryNotFound if absent, or context errors
	Get(ctx context.Context, path string) (*FileEntry, error)

	// Has reports whether an entry exists at the given normalized path.
	//
	// Returns:
	//   - bool: True if an entry exists
	//   - error: Only context or storage access errors, never
	//     ErrEntryNotFound
	Has(ctx context.Context, path string) (bool, error)

	// Put inserts or replaces the entry at entry.Path.
	//
	// The store copies the entry; callers may reuse it afterwards.
	//
	// Returns:
	//   - error: ErrInvalidEntry if the entry fails validation, or
	//     context/storage errors
	Put(ctx context.Context, entry *FileEntry) error

	// Delete removes the entry at the given normalized path.
	//
	// Only the record itself is removed; callers are responsible for any
	// children (the core never deletes non-empty directories) and for
	// coordinating blob reclamation.
	//
	// Returns:
	//   - error: ErrEntryNotFound if absent, or context/storage errors
	Delete(ctx context.Context, path string) error

	// Children returns the direct children of the directory at the given
	// path, in lexicographic name order.
	//
	// Returns an empty slice for a childless directory. It is not an
	// error to call Children on a non-directory; the result is simply
	// empty. The entries are copies owned by the caller.
	//
	// Returns:
	//   - []*FileEntry: Direct children sorted by name
	//   - error: Only context or storage access errors
	Children(ctx context.Context, path string) ([]*FileEntry, error)

	// FindByID returns every entry sharing the given inode ID (the entry
	// itself plus any hard links), in no particular order.
	//
	// Returns an empty slice when no entry has the ID.
	//
	// Returns:
	//   - []*FileEntry: All entries with the ID
	//   - error: Only context or storage access errors
	FindByID(ctx context.Context, id string) ([]*FileEntry, error)
}

// SymlinkResolver is an optional acceleration interface for stores that
// can resolve symlink chains server-side.
//
// ResolveSymlink follows the chain starting at path until a non-symlink
// entry is reached, resolving relative targets against each link's parent
// directory. It returns ErrEntryNotFound if any link in the chain is
// dangling or if maxDepth is exhausted before reaching a terminal entry,
// the same signal as a missing path.
//
// The core type-asserts stores against this interface and falls back to
// manual chain-walking with repeated Get calls when it is absent.
type SymlinkResolver interface {
	ResolveSymlink(ctx context.Context, path string, maxDepth int) (*FileEntry, error)
}
