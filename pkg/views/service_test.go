package views

import (
	"context"
	"testing"
	"time"

	"github.com/plantops/assetgraph/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSaveThenList tests that a saved snapshot appears first in the listing
func TestSaveThenList(t *testing.T) {
	svc := NewService(storage.NewMemoryStore())
	ctx := context.Background()

	base := time.Now()
	svc.now = func() time.Time { return base }
	first, err := svc.Save(ctx, "morning view", []string{"sig-1", "sig-2"}, []string{"sig-3"}, "last-24h", "")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "morning view", first.Name)

	svc.now = func() time.Time { return base.Add(5 * time.Millisecond) }
	second, err := svc.Save(ctx, "evening view", []string{"sig-4"}, nil, "last-7d", `{"sig-4":"#ff0000"}`)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

// TestSaveIDsDistinctWithinMillisecond tests that back-to-back saves get
// unique ids even when the clock does not advance between them
func TestSaveIDsDistinctWithinMillisecond(t *testing.T) {
	svc := NewService(storage.NewMemoryStore())
	ctx := context.Background()

	frozen := time.Now()
	svc.now = func() time.Time { return frozen }

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		snap, err := svc.Save(ctx, "burst", []string{"sig-1"}, nil, "last-1h", "")
		require.NoError(t, err)
		assert.Contains(t, snap.ID, "snap-")
		assert.False(t, seen[snap.ID], "id %q issued twice", snap.ID)
		seen[snap.ID] = true
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 5)
}

// TestSaveNormalizesNilSlices tests that absent id lists persist as empty
func TestSaveNormalizesNilSlices(t *testing.T) {
	svc := NewService(storage.NewMemoryStore())

	snap, err := svc.Save(context.Background(), "bare", nil, nil, "last-1h", "")
	require.NoError(t, err)
	assert.NotNil(t, snap.ActiveSignalIDs)
	assert.Empty(t, snap.ActiveSignalIDs)
	assert.NotNil(t, snap.HiddenSignalIDs)
	assert.Empty(t, snap.HiddenSignalIDs)
}

// TestDeleteIdempotent tests delete semantics on existing and missing ids
func TestDeleteIdempotent(t *testing.T) {
	svc := NewService(storage.NewMemoryStore())
	ctx := context.Background()

	snap, err := svc.Save(ctx, "to delete", nil, nil, "last-1h", "")
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, snap.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	removed, err = svc.Delete(ctx, snap.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}
