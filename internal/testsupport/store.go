package testsupport

import (
	"context"
	"testing"

	"shoebox/internal/catalog"
	"shoebox/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewItem catalogs a media file for tests using the provided store.
func NewItem(t testing.TB, store *catalog.Store, sourcePath string, kind catalog.Kind) *catalog.Item {
	t.Helper()

	item, err := store.NewItem(context.Background(), sourcePath, kind)
	if err != nil {
		t.Fatalf("store.NewItem: %v", err)
	}
	return item
}
