package views

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/plantops/assetgraph/pkg/storage"
	"github.com/plantops/assetgraph/pkg/types"
)

// Service manages saved view snapshots.
type Service struct {
	store storage.Store
	now   func() time.Time

	mu         sync.Mutex
	lastMillis int64
}

// NewService creates a snapshot service backed by the store.
func NewService(store storage.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// List returns all snapshots, newest first.
func (s *Service) List(ctx context.Context) ([]*types.Snapshot, error) {
	return s.store.ListSnapshots(ctx)
}

// Save persists a new snapshot with a fresh id and the current timestamp
// and returns the persisted record. Ids are time-based (snap-<unix-millis>)
// for parity with existing records; when saves land inside the same
// millisecond the numeric part is bumped past the last issued id so ids
// stay distinct.
func (s *Service) Save(ctx context.Context, name string, activeSignalIDs, hiddenSignalIDs []string, dateRange, customColors string) (*types.Snapshot, error) {
	now := s.now()
	snap := &types.Snapshot{
		ID:              fmt.Sprintf("snap-%d", s.nextIDMillis(now)),
		Name:            name,
		CreatedAt:       now,
		ActiveSignalIDs: activeSignalIDs,
		HiddenSignalIDs: hiddenSignalIDs,
		DateRange:       dateRange,
		CustomColors:    customColors,
	}
	if snap.ActiveSignalIDs == nil {
		snap.ActiveSignalIDs = []string{}
	}
	if snap.HiddenSignalIDs == nil {
		snap.HiddenSignalIDs = []string{}
	}
	if err := s.store.CreateSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return snap, nil
}

// nextIDMillis returns a millisecond value that is strictly greater than any
// previously issued one, so ids never repeat even when the clock has not
// advanced between saves.
func (s *Service) nextIDMillis(now time.Time) int64 {
	millis := now.UnixMilli()
	s.mu.Lock()
	defer s.mu.Unlock()
	if millis <= s.lastMillis {
		millis = s.lastMillis + 1
	}
	s.lastMillis = millis
	return millis
}

// Delete removes a snapshot by id. It returns true iff the record existed
// and was removed; deleting an unknown id is not an error.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	return s.store.DeleteSnapshot(ctx, id)
}
