package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/plantops/assetgraph/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketAssets       = []byte("assets")
	bucketSnapshots    = []byte("snapshots")
	bucketMeasurements = []byte("measurements")
)

// BoltStore implements Store using BoltDB. It backs single-node deployments
// that want durability without a hosted database.
//
// Measurement keys are zero-padded unix nanoseconds followed by the signal
// id, so keys sort chronologically and the retention sweep is a bounded
// range delete from the front of the bucket.
type BoltStore struct {
	db  *bolt.DB
	now func() time.Time
}

// NewBoltStore creates a new BoltDB-backed store
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "assetgraph.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			bucketAssets,
			bucketSnapshots,
			bucketMeasurements,
		}

		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, now: time.Now}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database file is still usable.
func (s *BoltStore) Ping(context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketAssets) == nil {
			return fmt.Errorf("assets bucket missing")
		}
		return nil
	})
}

// Asset operations

func (s *BoltStore) GetAsset(_ context.Context, id string) (*types.Asset, error) {
	var asset *types.Asset
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAssets)
		data := b.Get([]byte(id))
		if data == nil {
			return nil
		}
		asset = &types.Asset{}
		return json.Unmarshal(data, asset)
	})
	return asset, err
}

func (s *BoltStore) forEachAsset(fn func(*types.Asset)) error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAssets)
		return b.ForEach(func(k, v []byte) error {
			var asset types.Asset
			if err := json.Unmarshal(v, &asset); err != nil {
				return err
			}
			fn(&asset)
			return nil
		})
	})
}

func (s *BoltStore) ListAssetsByParent(_ context.Context, parentID *string) ([]*types.Asset, error) {
	var assets []*types.Asset
	err := s.forEachAsset(func(a *types.Asset) {
		if parentID == nil {
			if a.ParentID == nil {
				assets = append(assets, a)
			}
		} else if a.ParentID != nil && *a.ParentID == *parentID {
			assets = append(assets, a)
		}
	})
	return assets, err
}

func (s *BoltStore) ListAssetsByParents(_ context.Context, parentIDs []string) (map[string][]*types.Asset, error) {
	wanted := make(map[string]bool, len(parentIDs))
	for _, id := range parentIDs {
		wanted[id] = true
	}
	out := make(map[string][]*types.Asset)
	err := s.forEachAsset(func(a *types.Asset) {
		if a.ParentID != nil && wanted[*a.ParentID] {
			out[*a.ParentID] = append(out[*a.ParentID], a)
		}
	})
	return out, err
}

func (s *BoltStore) ListAssetsByIDs(_ context.Context, ids []string) ([]*types.Asset, error) {
	var assets []*types.Asset
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAssets)
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			data := b.Get([]byte(id))
			if data == nil {
				continue
			}
			var asset types.Asset
			if err := json.Unmarshal(data, &asset); err != nil {
				return err
			}
			assets = append(assets, &asset)
		}
		return nil
	})
	return assets, err
}

func (s *BoltStore) SearchAssets(_ context.Context, query string) ([]*types.Asset, error) {
	q := strings.ToLower(query)
	var assets []*types.Asset
	err := s.forEachAsset(func(a *types.Asset) {
		if strings.Contains(strings.ToLower(a.Name), q) {
			assets = append(assets, a)
		}
	})
	return assets, err
}

func (s *BoltStore) UpsertAssets(_ context.Context, assets []*types.Asset) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAssets)
		for _, asset := range assets {
			data, err := json.Marshal(asset)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(asset.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Snapshot operations

func (s *BoltStore) ListSnapshots(_ context.Context) ([]*types.Snapshot, error) {
	var snapshots []*types.Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		return b.ForEach(func(k, v []byte) error {
			var snap types.Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				return err
			}
			snapshots = append(snapshots, &snap)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(snapshots, func(i, j int) bool {
		if snapshots[i].CreatedAt.Equal(snapshots[j].CreatedAt) {
			return snapshots[i].ID > snapshots[j].ID
		}
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})
	return snapshots, nil
}

func (s *BoltStore) CreateSnapshot(_ context.Context, snapshot *types.Snapshot) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		data, err := json.Marshal(snapshot)
		if err != nil {
			return err
		}
		return b.Put([]byte(snapshot.ID), data)
	})
}

func (s *BoltStore) DeleteSnapshot(_ context.Context, id string) (bool, error) {
	existed := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		if b.Get([]byte(id)) == nil {
			return nil
		}
		existed = true
		return b.Delete([]byte(id))
	})
	return existed, err
}

// Measurement operations

// measurementKey builds a chronologically sortable key for one reading.
func measurementKey(m *types.Measurement) []byte {
	return []byte(fmt.Sprintf("%020d/%s", m.Timestamp.UnixNano(), m.SignalID))
}

func (s *BoltStore) InsertMeasurements(_ context.Context, batch []*types.Measurement) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeasurements)
		for _, m := range batch {
			data, err := json.Marshal(m)
			if err != nil {
				return err
			}
			if err := b.Put(measurementKey(m), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) CleanupMeasurements(_ context.Context, olderThan time.Duration) (int64, error) {
	cutoff := []byte(fmt.Sprintf("%020d", s.now().Add(-olderThan).UnixNano()))
	var removed int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketMeasurements).Cursor()
		for k, _ := c.First(); k != nil && bytes.Compare(k, cutoff) < 0; k, _ = c.First() {
			if err := c.Delete(); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}
