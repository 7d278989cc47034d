// Package badger provides a BadgerDB-backed metadata store.
//
// Entries are serialized as JSON (debuggable, schema-flexible) under
// prefixed keys; see keys.go for the namespace design. All operations run
// inside Badger transactions, so a single Get/Put is linearizable as the
// Store contract requires.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/dot-do/fsx/pkg/metadata"
)

// BadgerStore implements metadata.Store on top of BadgerDB.
//
// Unlike the in-memory store it does not implement the SymlinkResolver
// acceleration interface; the filesystem core falls back to walking link
// chains with repeated Get calls, which keeps each hop inside its own
// short-lived read transaction.
type BadgerStore struct {
	db *badgerdb.DB
}

// Options configures a BadgerStore.
type Options struct {
	// Path is the directory for the Badger value log and LSM tree.
	// Required unless InMemory is set.
	Path string

	// InMemory runs Badger without touching disk. Useful for tests.
	InMemory bool

	// Logger silencing: Badger's own logger is noisy at INFO; the store
	// always disables it and relies on fsx logging instead.
}

// NewBadgerStore opens (creating if necessary) a Badger-backed store.
//
// The returned store must be closed with Close to release the directory
// lock and flush pending writes.
func NewBadgerStore(ctx context.Context, opts Options) (*BadgerStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Path == "" && !opts.InMemory {
		return nil, fmt.Errorf("badger store: path is required")
	}

	badgerOpts := badgerdb.DefaultOptions(opts.Path).
		WithInMemory(opts.InMemory).
		WithLogger(nil)

	db, err := badgerdb.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

// Close flushes and closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Get returns the entry stored at the given path.
func (s *BadgerStore) Get(ctx context.Context, path string) (*metadata.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry *metadata.FileEntry
	err := s.db.View(func(txn *badgerdb.Txn) error {
		var err error
		entry, err = getEntry(txn, path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Has reports whether an entry exists at the given path.
func (s *BadgerStore) Has(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	exists := false
	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(entryKey(path))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	return exists, err
}

// Put inserts or replaces the entry at entry.Path, maintaining the child
// and inode indexes inside one transaction.
func (s *BadgerStore) Put(ctx context.Context, entry *metadata.FileEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("put %s: %w: %w", entry.Path, metadata.ErrInvalidEntry, err)
	}

	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry %s: %w", entry.Path, err)
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		// An overwrite that changes the inode ID must drop the old
		// inode index key.
		prev, err := getEntry(txn, entry.Path)
		if err != nil && !errors.Is(err, metadata.ErrEntryNotFound) {
			return err
		}
		if prev != nil && prev.ID != entry.ID {
			if err := txn.Delete(inodeKey(prev.ID, prev.Path)); err != nil {
				return err
			}
		}

		if err := txn.Set(entryKey(entry.Path), value); err != nil {
			return err
		}
		if entry.Path != "/" {
			dir, name := metadata.SplitPath(entry.Path)
			if err := txn.Set(childKey(dir, name), []byte(entry.Path)); err != nil {
				return err
			}
		}
		return txn.Set(inodeKey(entry.ID, entry.Path), []byte(entry.Path))
	})
}

// Delete removes the entry at the given path and its index records.
func (s *BadgerStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		entry, err := getEntry(txn, path)
		if err != nil {
			return err
		}

		if err := txn.Delete(entryKey(path)); err != nil {
			return err
		}
		if path != "/" {
			dir, name := metadata.SplitPath(path)
			if err := txn.Delete(childKey(dir, name)); err != nil {
				return err
			}
		}
		return txn.Delete(inodeKey(entry.ID, path))
	})
}

// Children returns the direct children of the given directory, sorted by
// name. Badger iterates keys in lexicographic order, so the child index
// scan yields names already sorted.
func (s *BadgerStore) Children(ctx context.Context, path string) ([]*metadata.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result []*metadata.FileEntry
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = childScanPrefix(path)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			childPath, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			entry, err := getEntry(txn, string(childPath))
			if errors.Is(err, metadata.ErrEntryNotFound) {
				// Dangling index key; skip rather than fail the listing.
				continue
			}
			if err != nil {
				return err
			}
			result = append(result, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = []*metadata.FileEntry{}
	}
	return result, nil
}

// FindByID returns every entry sharing the given inode ID.
func (s *BadgerStore) FindByID(ctx context.Context, id string) ([]*metadata.FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result []*metadata.FileEntry
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = inodeScanPrefix(id)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			path, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			entry, err := getEntry(txn, string(path))
			if errors.Is(err, metadata.ErrEntryNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			result = append(result, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = []*metadata.FileEntry{}
	}
	return result, nil
}

// getEntry reads and decodes one entry inside an open transaction.
func getEntry(txn *badgerdb.Txn, path string) (*metadata.FileEntry, error) {
	item, err := txn.Get(entryKey(path))
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, fmt.Errorf("get %s: %w", path, metadata.ErrEntryNotFound)
	}
	if err != nil {
		return nil, err
	}

	value, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}

	var entry metadata.FileEntry
	if err := json.Unmarshal(value, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode entry %s: %w", path, err)
	}
	return &entry, nil
}
