// Package testing provides a reusable conformance suite for
// metadata.Store implementations.
//
// The suite tests the interface contract, not implementation details, so
// it can be run unchanged against the memory store, the Badger store, or
// any future backend.
package testing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dot-do/fsx/pkg/metadata"
)

// StoreTestSuite is a conformance test suite for metadata.Store
// implementations.
type StoreTestSuite struct {
	// NewStore is a factory that creates a fresh, empty Store for each
	// test. This ensures test isolation.
	NewStore func(t *testing.T) metadata.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("GetPut", suite.testGetPut)
	t.Run("Has", suite.testHas)
	t.Run("Delete", suite.testDelete)
	t.Run("Children", suite.testChildren)
	t.Run("FindByID", suite.testFindByID)
	t.Run("Validation", suite.testValidation)
	t.Run("SymlinkResolver", suite.testSymlinkResolver)
}

// newDirEntry builds a valid directory entry for test setup.
func newDirEntry(path string) *metadata.FileEntry {
	now := metadata.NowMillis()
	_, name := metadata.SplitPath(path)
	return &metadata.FileEntry{
		ID:        uuid.NewString(),
		Name:      name,
		Path:      path,
		Type:      metadata.FileTypeDirectory,
		Mode:      0o755,
		Nlink:     2,
		Atime:     now,
		Mtime:     now,
		Ctime:     now,
		Birthtime: now,
	}
}

// newFileEntry builds a valid regular-file entry for test setup.
func newFileEntry(path string, size uint64) *metadata.FileEntry {
	now := metadata.NowMillis()
	_, name := metadata.SplitPath(path)
	return &metadata.FileEntry{
		ID:        uuid.NewString(),
		Name:      name,
		Path:      path,
		Type:      metadata.FileTypeRegular,
		Mode:      0o644,
		Size:      size,
		BlobID:    metadata.BlobID(uuid.NewString()),
		Nlink:     1,
		Atime:     now,
		Mtime:     now,
		Ctime:     now,
		Birthtime: now,
	}
}

// newSymlinkEntry builds a valid symlink entry for test setup.
func newSymlinkEntry(path, target string) *metadata.FileEntry {
	now := metadata.NowMillis()
	_, name := metadata.SplitPath(path)
	return &metadata.FileEntry{
		ID:         uuid.NewString(),
		Name:       name,
		Path:       path,
		Type:       metadata.FileTypeSymlink,
		Mode:       0o777,
		Size:       uint64(len(target)),
		LinkTarget: target,
		Nlink:      1,
		Atime:      now,
		Mtime:      now,
		Ctime:      now,
		Birthtime:  now,
	}
}

func (suite *StoreTestSuite) testGetPut(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	// Missing path reports ErrEntryNotFound.
	_, err := store.Get(ctx, "/missing")
	require.ErrorIs(t, err, metadata.ErrEntryNotFound)

	entry := newFileEntry("/hello.txt", 13)
	require.NoError(t, store.Put(ctx, entry))

	got, err := store.Get(ctx, "/hello.txt")
	require.NoError(t, err)
	require.Equal(t, entry.ID, got.ID)
	require.Equal(t, entry.BlobID, got.BlobID)
	require.Equal(t, uint64(13), got.Size)

	// Get returns a copy: mutating it must not affect the store.
	got.Size = 999
	again, err := store.Get(ctx, "/hello.txt")
	require.NoError(t, err)
	require.Equal(t, uint64(13), again.Size)

	// Put is an upsert.
	entry.Size = 42
	require.NoError(t, store.Put(ctx, entry))
	got, err = store.Get(ctx, "/hello.txt")
	require.NoError(t, err)
	require.Equal(t, uint64(42), got.Size)
}

func (suite *StoreTestSuite) testHas(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	ok, err := store.Has(ctx, "/nope")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Put(ctx, newDirEntry("/")))

	ok, err = store.Has(ctx, "/")
	require.NoError(t, err)
	require.True(t, ok)
}

func (suite *StoreTestSuite) testDelete(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	err := store.Delete(ctx, "/missing")
	require.ErrorIs(t, err, metadata.ErrEntryNotFound)

	require.NoError(t, store.Put(ctx, newDirEntry("/")))
	require.NoError(t, store.Put(ctx, newFileEntry("/a.txt", 1)))

	require.NoError(t, store.Delete(ctx, "/a.txt"))

	ok, err := store.Has(ctx, "/a.txt")
	require.NoError(t, err)
	require.False(t, ok)

	// The child index must be cleaned up too.
	children, err := store.Children(ctx, "/")
	require.NoError(t, err)
	require.Empty(t, children)
}

func (suite *StoreTestSuite) testChildren(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, newDirEntry("/")))
	require.NoError(t, store.Put(ctx, newDirEntry("/docs")))
	require.NoError(t, store.Put(ctx, newFileEntry("/docs/b.txt", 2)))
	require.NoError(t, store.Put(ctx, newFileEntry("/docs/a.txt", 1)))
	require.NoError(t, store.Put(ctx, newFileEntry("/docs/c.txt", 3)))

	// A sibling directory whose path shares a prefix must not leak into
	// the listing ("/docs" vs "/docs-old").
	require.NoError(t, store.Put(ctx, newDirEntry("/docs-old")))
	require.NoError(t, store.Put(ctx, newFileEntry("/docs-old/z.txt", 9)))

	children, err := store.Children(ctx, "/docs")
	require.NoError(t, err)
	require.Len(t, children, 3)
	require.Equal(t, "a.txt", children[0].Name)
	require.Equal(t, "b.txt", children[1].Name)
	require.Equal(t, "c.txt", children[2].Name)

	// Empty directory yields an empty slice, not an error.
	children, err = store.Children(ctx, "/docs-old")
	require.NoError(t, err)
	require.Len(t, children, 1)

	children, err = store.Children(ctx, "/docs/a.txt")
	require.NoError(t, err)
	require.Empty(t, children)
}

func (suite *StoreTestSuite) testFindByID(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, newDirEntry("/")))

	original := newFileEntry("/data.bin", 100)
	require.NoError(t, store.Put(ctx, original))

	// A hard link shares the inode ID and blob.
	link := original.Clone()
	link.Path = "/data-link.bin"
	link.Name = "data-link.bin"
	link.Nlink = 2
	require.NoError(t, store.Put(ctx, link))

	entries, err := store.FindByID(ctx, original.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	paths := map[string]bool{}
	for _, e := range entries {
		paths[e.Path] = true
		require.Equal(t, original.BlobID, e.BlobID)
	}
	require.True(t, paths["/data.bin"])
	require.True(t, paths["/data-link.bin"])

	require.NoError(t, store.Delete(ctx, "/data.bin"))

	entries, err = store.FindByID(ctx, original.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "/data-link.bin", entries[0].Path)

	entries, err = store.FindByID(ctx, "no-such-id")
	require.NoError(t, err)
	require.Empty(t, entries)
}

func (suite *StoreTestSuite) testValidation(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	// Directory with a blob reference is structurally invalid.
	bad := newDirEntry("/dir")
	bad.BlobID = "some-blob"
	err := store.Put(ctx, bad)
	require.ErrorIs(t, err, metadata.ErrInvalidEntry)

	// Regular file with zero nlink is invalid.
	bad2 := newFileEntry("/f", 0)
	bad2.Nlink = 0
	err = store.Put(ctx, bad2)
	require.ErrorIs(t, err, metadata.ErrInvalidEntry)
}

func (suite *StoreTestSuite) testSymlinkResolver(t *testing.T) {
	store := suite.NewStore(t)

	resolver, ok := store.(metadata.SymlinkResolver)
	if !ok {
		t.Skip("store does not implement SymlinkResolver")
	}

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, newDirEntry("/")))

	target := newFileEntry("/target.txt", 5)
	require.NoError(t, store.Put(ctx, target))
	require.NoError(t, store.Put(ctx, newSymlinkEntry("/link2", "target.txt")))
	require.NoError(t, store.Put(ctx, newSymlinkEntry("/link1", "/link2")))

	resolved, err := resolver.ResolveSymlink(ctx, "/link1", 40)
	require.NoError(t, err)
	require.Equal(t, target.ID, resolved.ID)

	// Dangling chain reports not-found.
	require.NoError(t, store.Put(ctx, newSymlinkEntry("/broken", "/nowhere")))
	_, err = resolver.ResolveSymlink(ctx, "/broken", 40)
	require.ErrorIs(t, err, metadata.ErrEntryNotFound)

	// A cycle exhausts the depth budget and reports not-found as well.
	require.NoError(t, store.Put(ctx, newSymlinkEntry("/loop-a", "/loop-b")))
	require.NoError(t, store.Put(ctx, newSymlinkEntry("/loop-b", "/loop-a")))
	_, err = resolver.ResolveSymlink(ctx, "/loop-a", 40)
	require.ErrorIs(t, err, metadata.ErrEntryNotFound)
}
