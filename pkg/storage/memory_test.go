package storage

import (
	"context"
	"testing"
	"time"

	"github.com/plantops/assetgraph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func fixtureAssets() []*types.Asset {
	return []*types.Asset{
		{ID: "site-1", Name: "Texas Refinery", Type: types.AssetTypeSite},
		{ID: "site-2", Name: "Louisiana Chemical", Type: types.AssetTypeSite},
		{ID: "plant-1", Name: "Plant Alpha", Type: types.AssetTypePlant, ParentID: strPtr("site-1")},
		{ID: "plant-2", Name: "Plant Beta", Type: types.AssetTypePlant, ParentID: strPtr("site-1")},
		{ID: "sig-1", Name: "TI-1001 Inlet Temp", Type: types.AssetTypeSignal, ParentID: strPtr("plant-1")},
	}
}

func seededMemoryStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	require.NoError(t, s.UpsertAssets(context.Background(), fixtureAssets()))
	return s
}

func assetIDs(assets []*types.Asset) []string {
	ids := make([]string, 0, len(assets))
	for _, a := range assets {
		ids = append(ids, a.ID)
	}
	return ids
}

// TestMemoryListAssetsByParent tests child and root filtering
func TestMemoryListAssetsByParent(t *testing.T) {
	s := seededMemoryStore(t)
	ctx := context.Background()

	roots, err := s.ListAssetsByParent(ctx, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"site-1", "site-2"}, assetIDs(roots))

	children, err := s.ListAssetsByParent(ctx, strPtr("site-1"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"plant-1", "plant-2"}, assetIDs(children))

	none, err := s.ListAssetsByParent(ctx, strPtr("sig-1"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

// TestMemoryListAssetsByParents tests batched child grouping
func TestMemoryListAssetsByParents(t *testing.T) {
	s := seededMemoryStore(t)

	grouped, err := s.ListAssetsByParents(context.Background(), []string{"site-1", "plant-1", "missing"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"plant-1", "plant-2"}, assetIDs(grouped["site-1"]))
	assert.ElementsMatch(t, []string{"sig-1"}, assetIDs(grouped["plant-1"]))
	assert.NotContains(t, grouped, "missing")
}

// TestMemoryGetAsset tests lookup and absence
func TestMemoryGetAsset(t *testing.T) {
	s := seededMemoryStore(t)
	ctx := context.Background()

	a, err := s.GetAsset(ctx, "plant-1")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "Plant Alpha", a.Name)

	missing, err := s.GetAsset(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// TestMemorySearchAssets tests case-insensitive substring matching
func TestMemorySearchAssets(t *testing.T) {
	s := seededMemoryStore(t)
	ctx := context.Background()

	lower, err := s.SearchAssets(ctx, "temp")
	require.NoError(t, err)
	upper, err := s.SearchAssets(ctx, "TEMP")
	require.NoError(t, err)
	assert.ElementsMatch(t, assetIDs(lower), assetIDs(upper))
	assert.ElementsMatch(t, []string{"sig-1"}, assetIDs(lower))

	plants, err := s.SearchAssets(ctx, "plant")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"plant-1", "plant-2"}, assetIDs(plants))
}

// TestMemoryListAssetsByIDs tests subset selection and duplicate collapsing
func TestMemoryListAssetsByIDs(t *testing.T) {
	s := seededMemoryStore(t)
	ctx := context.Background()

	assets, err := s.ListAssetsByIDs(ctx, []string{"site-1", "sig-1", "bogus", "site-1"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"site-1", "sig-1"}, assetIDs(assets))

	empty, err := s.ListAssetsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// TestMemorySnapshots tests create/list/delete ordering and idempotence
func TestMemorySnapshots(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	older := &types.Snapshot{ID: "snap-1", Name: "first", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &types.Snapshot{ID: "snap-2", Name: "second", CreatedAt: time.Now()}
	require.NoError(t, s.CreateSnapshot(ctx, older))
	require.NoError(t, s.CreateSnapshot(ctx, newer))

	list, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "snap-2", list[0].ID)
	assert.Equal(t, "snap-1", list[1].ID)

	removed, err := s.DeleteSnapshot(ctx, "snap-1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.DeleteSnapshot(ctx, "snap-1")
	require.NoError(t, err)
	assert.False(t, removed)

	list, err = s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "snap-2", list[0].ID)
}

// TestMemorySnapshotSameTimestampOrdering tests newest-insert-first on ties
func TestMemorySnapshotSameTimestampOrdering(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	ts := time.Now()

	require.NoError(t, s.CreateSnapshot(ctx, &types.Snapshot{ID: "snap-a", CreatedAt: ts}))
	require.NoError(t, s.CreateSnapshot(ctx, &types.Snapshot{ID: "snap-b", CreatedAt: ts}))

	list, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "snap-b", list[0].ID)
}

// TestMemoryCleanupMeasurements tests age-based deletion
func TestMemoryCleanupMeasurements(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()
	s.now = func() time.Time { return now }

	batch := []*types.Measurement{
		{SignalID: "sig-1", Timestamp: now.Add(-25 * time.Hour), Value: 45, Status: types.StatusNormal},
		{SignalID: "sig-1", Timestamp: now.Add(-23 * time.Hour), Value: 46, Status: types.StatusNormal},
		{SignalID: "sig-2", Timestamp: now, Value: 47, Status: types.StatusNormal},
	}
	require.NoError(t, s.InsertMeasurements(ctx, batch))

	removed, err := s.CleanupMeasurements(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Len(t, s.Measurements(), 2)
}

// TestMemorySnapshotIsolation tests that stored records are copies
func TestMemorySnapshotIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	snap := &types.Snapshot{ID: "snap-1", ActiveSignalIDs: []string{"sig-1"}, CreatedAt: time.Now()}
	require.NoError(t, s.CreateSnapshot(ctx, snap))
	snap.ActiveSignalIDs[0] = "mutated"

	list, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sig-1"}, list[0].ActiveSignalIDs)
}
