package catalog

import (
	"context"
	"testing"

	"github.com/plantops/assetgraph/pkg/storage"
	"github.com/plantops/assetgraph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore wraps a Store and counts children queries.
type countingStore struct {
	storage.Store
	byParentCalls  int
	byParentsCalls int
}

func (c *countingStore) ListAssetsByParent(ctx context.Context, parentID *string) ([]*types.Asset, error) {
	c.byParentCalls++
	return c.Store.ListAssetsByParent(ctx, parentID)
}

func (c *countingStore) ListAssetsByParents(ctx context.Context, parentIDs []string) (map[string][]*types.Asset, error) {
	c.byParentsCalls++
	return c.Store.ListAssetsByParents(ctx, parentIDs)
}

func newCountingStore(t *testing.T) *countingStore {
	t.Helper()
	mem := storage.NewMemoryStore()
	require.NoError(t, mem.UpsertAssets(context.Background(), chainAssets()))
	return &countingStore{Store: mem}
}

// TestLoaderMemoizesChildren tests one store call per parent per request
func TestLoaderMemoizesChildren(t *testing.T) {
	store := newCountingStore(t)
	loader := NewLoader(NewResolver(store, 5))
	ctx := context.Background()

	first, err := loader.Children(ctx, "cont-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sig-1", "sig-2"}, ids(first))

	second, err := loader.Children(ctx, "cont-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, ids(first), ids(second))

	assert.Equal(t, 1, store.byParentCalls)
}

// TestLoaderPrime tests batch loading caches every requested parent
func TestLoaderPrime(t *testing.T) {
	store := newCountingStore(t)
	loader := NewLoader(NewResolver(store, 5))
	ctx := context.Background()

	require.NoError(t, loader.Prime(ctx, []string{"cont-1", "site-1", "sig-1"}))
	assert.Equal(t, 1, store.byParentsCalls)

	// Primed parents never touch the per-parent path, even when empty
	for _, parent := range []string{"cont-1", "site-1", "sig-1"} {
		_, err := loader.Children(ctx, parent)
		require.NoError(t, err)
	}
	assert.Zero(t, store.byParentCalls)

	leaves, err := loader.Children(ctx, "sig-1")
	require.NoError(t, err)
	assert.Empty(t, leaves)
}

// TestLoaderContext tests context attachment round trip
func TestLoaderContext(t *testing.T) {
	loader := NewLoader(NewResolver(storage.NewMemoryStore(), 5))

	ctx := WithLoader(context.Background(), loader)
	assert.Same(t, loader, LoaderFrom(ctx))
	assert.Nil(t, LoaderFrom(context.Background()))
}
