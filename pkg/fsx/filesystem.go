// Package fsx implements a virtual POSIX-flavored filesystem over an
// abstract metadata store and tiered blob storage.
//
// The package reproduces POSIX metadata semantics (permission bits, inode
// identity, hard-link counts, symlink chains, broken-link detection,
// buffered file handles) without a kernel underneath: metadata lives in a
// key-value table behind metadata.Store and file content in a blob store
// behind blob.Store.
//
// All operations hang off a Filesystem value, which owns its
// collaborators explicitly; there is no package-level state. Operations
// fail with typed *Error values carrying a POSIX code, the operation
// name, and the path exactly as the caller supplied it.
//
// Concurrency:
// Each operation is logically single-threaded and round-trips to the
// metadata store; independent paths may be operated on concurrently with
// no coordination. Cross-call consistency on one path is the store's
// responsibility, not enforced here with locks. Open handles are
// single-owner: concurrent writers to one handle race, last write wins.
package fsx

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dot-do/fsx/internal/logger"
	"github.com/dot-do/fsx/pkg/blob"
	"github.com/dot-do/fsx/pkg/metadata"
	"github.com/dot-do/fsx/pkg/metrics"
)

// Filesystem is the operation surface of the virtual filesystem.
//
// Construct with New; the zero value is not usable. A Filesystem is safe
// for concurrent use.
type Filesystem struct {
	store    metadata.Store
	blobs    blob.Store
	identity Identity

	maxLinkDepth int
	metrics      metrics.FilesystemMetrics

	// nextFD and openHandles are shared across WithIdentity copies so fd
	// numbers stay unique and the handle gauge stays accurate per
	// filesystem instance.
	nextFD      *atomic.Uint64
	openHandles *atomic.Int64
}

// Options configures a Filesystem.
type Options struct {
	// Store is the metadata backend. Required.
	Store metadata.Store

	// Blobs is the content backend. Required.
	Blobs blob.Store

	// Identity is the default caller identity for access checks and
	// ownership of created entries. Zero value is uid 0 / gid 0.
	Identity Identity

	// MaxLinkDepth bounds symlink chain resolution. Defaults to
	// DefaultMaxLinkDepth when zero.
	MaxLinkDepth int

	// Metrics receives per-operation observations. Nil disables
	// instrumentation.
	Metrics metrics.FilesystemMetrics
}

// New creates a Filesystem and seeds the root directory if the store
// does not have one yet.
func New(ctx context.Context, opts Options) (*Filesystem, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("metadata store is required")
	}
	if opts.Blobs == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	maxDepth := opts.MaxLinkDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxLinkDepth
	}

	fs := &Filesystem{
		store:        opts.Store,
		blobs:        opts.Blobs,
		identity:     opts.Identity,
		maxLinkDepth: maxDepth,
		metrics:      opts.Metrics,
		nextFD:       &atomic.Uint64{},
		openHandles:  &atomic.Int64{},
	}

	if err := fs.seedRoot(ctx); err != nil {
		return nil, fmt.Errorf("failed to seed root directory: %w", err)
	}

	return fs, nil
}

// WithIdentity returns a view of the same filesystem that evaluates
// access checks and stamps ownership as the given identity. The
// underlying stores and fd counter are shared.
func (fs *Filesystem) WithIdentity(id Identity) *Filesystem {
	clone := *fs
	clone.identity = id
	return &clone
}

// Identity returns the identity operations currently run as.
func (fs *Filesystem) Identity() Identity {
	return fs.identity
}

// seedRoot ensures "/" exists as a directory entry.
func (fs *Filesystem) seedRoot(ctx context.Context) error {
	ok, err := fs.store.Has(ctx, "/")
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	now := metadata.NowMillis()
	root := &metadata.FileEntry{
		ID:        uuid.NewString(),
		Name:      "/",
		Path:      "/",
		Type:      metadata.FileTypeDirectory,
		Mode:      0o755,
		UID:       fs.identity.UID,
		GID:       fs.identity.GID,
		Nlink:     2,
		Atime:     now,
		Mtime:     now,
		Ctime:     now,
		Birthtime: now,
	}

	logger.Debug("seeding root directory (uid=%d gid=%d)", root.UID, root.GID)
	return fs.store.Put(ctx, root)
}

// observe reports one completed operation to the metrics sink, if any.
func (fs *Filesystem) observe(op string, start time.Time, err error) {
	if fs.metrics != nil {
		fs.metrics.RecordOperation(op, time.Since(start), err)
	}
}

// mapLookupError converts store-level lookup failures into the typed
// error for an operation. Not-found sentinels become ENOENT attributed to
// the caller's path; anything else (context cancellation, storage
// faults) passes through untyped.
func mapLookupError(op, path string, err error) error {
	if errors.Is(err, metadata.ErrEntryNotFound) {
		return newError(ENOENT, op, path)
	}
	return err
}
