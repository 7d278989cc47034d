// Package memory provides an in-memory metadata store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dot-do/fsx/pkg/metadata"
)

// MemoryStore implements metadata.Store using in-memory maps.
//
// This implementation is suitable for:
//   - Testing and development environments
//   - Ephemeral filesystems where persistence is not required
//   - Caching layers in front of a persistent store
//
// Thread Safety:
// All operations are protected by a single read-write mutex. Coarse
// locking keeps the invariants simple: the three indexes below are always
// mutated together under the write lock.
//
// Storage Model:
//   - entries: path → FileEntry (primary storage)
//   - children: parent path → set of child names (directory listing index)
//   - byID: inode ID → set of paths (hard-link index for FindByID)
type MemoryStore struct {
	mu sync.RWMutex

	// entries maps normalized paths to file entries.
	entries map[string]*metadata.FileEntry

	// children maps a directory path to the names of its direct children.
	children map[string]map[string]struct{}

	// byID maps an inode ID to the set of paths sharing it.
	byID map[string]map[string]struct{}
}

// NewMemoryStore creates an empty in-memory metadata store.
//
// The store starts with no entries, not even a root directory; seeding the
// root is the filesystem layer's responsibility.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:  make(map[string]*metadata.FileEntry),
		children: make(map[string]map[string]struct{}),
		byID:     make(map[string]map[string]struct{}),
	}
}

// Get returns a copy of the entry at the given path.
func (s *MemoryStore) Get(ctx context.Context, path string) (*metadata.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[path]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", path, metadata.ErrEntryNotFound)
	}
	return entry.Clone(), nil
}

// Has reports whether an entry exists at the given path.
func (s *MemoryStore) Has(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[path]
	return ok, nil
}

// Put inserts or replaces the entry at entry.Path, maintaining the child
// and inode indexes.
func (s *MemoryStore) Put(ctx context.Context, entry *metadata.FileEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("put %s: %w: %w", entry.Path, metadata.ErrInvalidEntry, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Replacing an entry whose ID changed must drop the old inode index
	// reference first.
	if prev, ok := s.entries[entry.Path]; ok && prev.ID != entry.ID {
		s.unindexID(prev.ID, prev.Path)
	}

	s.entries[entry.Path] = entry.Clone()

	// Index under the parent directory, except for the root.
	if entry.Path != "/" {
		dir, name := metadata.SplitPath(entry.Path)
		siblings, ok := s.children[dir]
		if !ok {
			siblings = make(map[string]struct{})
			s.children[dir] = siblings
		}
		siblings[name] = struct{}{}
	}

	paths, ok := s.byID[entry.ID]
	if !ok {
		paths = make(map[string]struct{})
		s.byID[entry.ID] = paths
	}
	paths[entry.Path] = struct{}{}

	return nil
}

// Delete removes the entry at the given path and its index records.
func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[path]
	if !ok {
		return fmt.Errorf("delete %s: %w", path, metadata.ErrEntryNotFound)
	}

	delete(s.entries, path)
	delete(s.children, path)
	s.unindexID(entry.ID, path)

	if path != "/" {
		dir, name := metadata.SplitPath(path)
		if siblings, ok := s.children[dir]; ok {
			delete(siblings, name)
			if len(siblings) == 0 {
				delete(s.children, dir)
			}
		}
	}

	return nil
}

// Children returns copies of the direct children of the given directory,
// sorted by name.
func (s *MemoryStore) Children(ctx context.Context, path string) ([]*metadata.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.children[path]))
	for name := range s.children[path] {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]*metadata.FileEntry, 0, len(names))
	for _, name := range names {
		if entry, ok := s.entries[metadata.JoinPath(path, name)]; ok {
			result = append(result, entry.Clone())
		}
	}
	return result, nil
}

// FindByID returns copies of every entry sharing the given inode ID.
func (s *MemoryStore) FindByID(ctx context.Context, id string) ([]*metadata.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*metadata.FileEntry, 0, len(s.byID[id]))
	for path := range s.byID[id] {
		if entry, ok := s.entries[path]; ok {
			result = append(result, entry.Clone())
		}
	}
	return result, nil
}

// ResolveSymlink follows the symlink chain starting at path until a
// non-symlink entry is reached, up to maxDepth hops.
//
// This implements the metadata.SymlinkResolver acceleration interface:
// the whole walk happens under one read lock instead of a Get per hop.
// Dangling links and exhausted depth both return ErrEntryNotFound.
func (s *MemoryStore) ResolveSymlink(ctx context.Context, path string, maxDepth int) (*metadata.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current, ok := s.entries[path]
	if !ok {
		return nil, fmt.Errorf("resolve %s: %w", path, metadata.ErrEntryNotFound)
	}

	for depth := 0; current.Type == metadata.FileTypeSymlink; depth++ {
		if depth >= maxDepth {
			return nil, fmt.Errorf("resolve %s: depth limit: %w", path, metadata.ErrEntryNotFound)
		}

		dir, _ := metadata.SplitPath(current.Path)
		target := metadata.ResolveTarget(dir, current.LinkTarget)

		next, ok := s.entries[target]
		if !ok {
			return nil, fmt.Errorf("resolve %s: %w", path, metadata.ErrEntryNotFound)
		}
		current = next
	}

	return current.Clone(), nil
}

// unindexID removes one path from the inode index. Caller holds the write
// lock.
func (s *MemoryStore) unindexID(id, path string) {
	if paths, ok := s.byID[id]; ok {
		delete(paths, path)
		if len(paths) == 0 {
			delete(s.byID, id)
		}
	}
}
