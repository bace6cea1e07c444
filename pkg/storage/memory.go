package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/plantops/assetgraph/pkg/types"
)

// MemoryStore implements Store entirely in process memory. It is the
// deployment mode the original service ran snapshots in, and the reference
// implementation the other backends are tested against.
type MemoryStore struct {
	mu           sync.RWMutex
	assets       map[string]*types.Asset
	assetOrder   []string
	snapshots    []*types.Snapshot
	measurements []*types.Measurement
	now          func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assets: make(map[string]*types.Asset),
		now:    time.Now,
	}
}

func cloneAsset(a *types.Asset) *types.Asset {
	c := *a
	return &c
}

func cloneSnapshot(s *types.Snapshot) *types.Snapshot {
	c := *s
	c.ActiveSignalIDs = append([]string(nil), s.ActiveSignalIDs...)
	c.HiddenSignalIDs = append([]string(nil), s.HiddenSignalIDs...)
	return &c
}

// GetAsset returns the asset with the given id, or nil when absent.
func (s *MemoryStore) GetAsset(_ context.Context, id string) (*types.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assets[id]
	if !ok {
		return nil, nil
	}
	return cloneAsset(a), nil
}

// ListAssetsByParent returns all assets whose parent matches. A nil parentID
// selects root assets.
func (s *MemoryStore) ListAssetsByParent(_ context.Context, parentID *string) ([]*types.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*types.Asset
	for _, id := range s.assetOrder {
		a := s.assets[id]
		if parentID == nil {
			if a.ParentID == nil {
				out = append(out, cloneAsset(a))
			}
		} else if a.ParentID != nil && *a.ParentID == *parentID {
			out = append(out, cloneAsset(a))
		}
	}
	return out, nil
}

// ListAssetsByParents groups children by parent id in a single pass.
func (s *MemoryStore) ListAssetsByParents(_ context.Context, parentIDs []string) (map[string][]*types.Asset, error) {
	wanted := make(map[string]bool, len(parentIDs))
	for _, id := range parentIDs {
		wanted[id] = true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]*types.Asset)
	for _, id := range s.assetOrder {
		a := s.assets[id]
		if a.ParentID != nil && wanted[*a.ParentID] {
			out[*a.ParentID] = append(out[*a.ParentID], cloneAsset(a))
		}
	}
	return out, nil
}

// ListAssetsByIDs returns the subset of assets whose id is in ids.
func (s *MemoryStore) ListAssetsByIDs(_ context.Context, ids []string) ([]*types.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*types.Asset
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if a, ok := s.assets[id]; ok {
			out = append(out, cloneAsset(a))
		}
	}
	return out, nil
}

// SearchAssets returns assets whose name contains the query,
// case-insensitively.
func (s *MemoryStore) SearchAssets(_ context.Context, query string) ([]*types.Asset, error) {
	q := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*types.Asset
	for _, id := range s.assetOrder {
		a := s.assets[id]
		if strings.Contains(strings.ToLower(a.Name), q) {
			out = append(out, cloneAsset(a))
		}
	}
	return out, nil
}

// UpsertAssets inserts or replaces the given assets.
func (s *MemoryStore) UpsertAssets(_ context.Context, assets []*types.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range assets {
		if _, ok := s.assets[a.ID]; !ok {
			s.assetOrder = append(s.assetOrder, a.ID)
		}
		s.assets[a.ID] = cloneAsset(a)
	}
	return nil
}

// ListSnapshots returns all snapshots, newest first.
func (s *MemoryStore) ListSnapshots(_ context.Context) ([]*types.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Snapshot, 0, len(s.snapshots))
	// Walk backwards so same-timestamp records come out newest-insert first,
	// then the stable sort orders distinct timestamps.
	for i := len(s.snapshots) - 1; i >= 0; i-- {
		out = append(out, cloneSnapshot(s.snapshots[i]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// CreateSnapshot appends a snapshot record.
func (s *MemoryStore) CreateSnapshot(_ context.Context, snapshot *types.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, cloneSnapshot(snapshot))
	return nil
}

// DeleteSnapshot removes a snapshot by id, reporting whether it existed.
func (s *MemoryStore) DeleteSnapshot(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, snap := range s.snapshots {
		if snap.ID == id {
			s.snapshots = append(s.snapshots[:i], s.snapshots[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// InsertMeasurements appends a batch of measurements.
func (s *MemoryStore) InsertMeasurements(_ context.Context, batch []*types.Measurement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range batch {
		c := *m
		s.measurements = append(s.measurements, &c)
	}
	return nil
}

// CleanupMeasurements deletes measurements older than the retention window
// and returns the number removed.
func (s *MemoryStore) CleanupMeasurements(_ context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().Add(-olderThan)
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.measurements[:0]
	var removed int64
	for _, m := range s.measurements {
		if m.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	s.measurements = kept
	return removed, nil
}

// Measurements returns a copy of all stored measurements. Test helper.
func (s *MemoryStore) Measurements() []*types.Measurement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Measurement, 0, len(s.measurements))
	for _, m := range s.measurements {
		c := *m
		out = append(out, &c)
	}
	return out
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
