package badger

import (
	"context"
	"testing"

	"github.com/dot-do/fsx/pkg/metadata"
	metadatatesting "github.com/dot-do/fsx/pkg/metadata/testing"
)

// TestBadgerStore runs the Store conformance suite against a Badger store
// backed by a temporary directory.
func TestBadgerStore(t *testing.T) {
	suite := &metadatatesting.StoreTestSuite{
		NewStore: func(t *testing.T) metadata.Store {
			store, err := NewBadgerStore(context.Background(), Options{Path: t.TempDir()})
			if err != nil {
				t.Fatalf("NewBadgerStore() error = %v", err)
			}
			t.Cleanup(func() {
				if err := store.Close(); err != nil {
					t.Errorf("Close() error = %v", err)
				}
			})
			return store
		},
	}

	suite.Run(t)
}

// TestBadgerStoreInMemory verifies the in-memory mode used by tests that
// cannot touch disk.
func TestBadgerStoreInMemory(t *testing.T) {
	ctx := context.Background()

	store, err := NewBadgerStore(ctx, Options{InMemory: true})
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}
	defer store.Close()

	ok, err := store.Has(ctx, "/")
	if err != nil {
		t.Fatalf("Has() error = %v", err)
	}
	if ok {
		t.Error("Has() = true on empty store")
	}
}

func TestBadgerStoreRequiresPath(t *testing.T) {
	_, err := NewBadgerStore(context.Background(), Options{})
	if err == nil {
		t.Fatal("NewBadgerStore() expected error for missing path")
	}
}
