package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/plantops/assetgraph/pkg/config"
	"github.com/plantops/assetgraph/pkg/types"
)

// Store defines the row-oriented persistence interface over the asset
// catalog, saved snapshots, and the measurement feed.
//
// Lookups that find nothing return empty results (or a nil asset), never an
// error; errors indicate the backing store itself failed.
type Store interface {
	// Assets
	GetAsset(ctx context.Context, id string) (*types.Asset, error)
	ListAssetsByParent(ctx context.Context, parentID *string) ([]*types.Asset, error)
	ListAssetsByParents(ctx context.Context, parentIDs []string) (map[string][]*types.Asset, error)
	ListAssetsByIDs(ctx context.Context, ids []string) ([]*types.Asset, error)
	SearchAssets(ctx context.Context, query string) ([]*types.Asset, error)
	UpsertAssets(ctx context.Context, assets []*types.Asset) error

	// Snapshots
	ListSnapshots(ctx context.Context) ([]*types.Snapshot, error)
	CreateSnapshot(ctx context.Context, snapshot *types.Snapshot) error
	DeleteSnapshot(ctx context.Context, id string) (bool, error)

	// Measurements
	InsertMeasurements(ctx context.Context, batch []*types.Measurement) error
	CleanupMeasurements(ctx context.Context, olderThan time.Duration) (int64, error)

	// Utility
	Ping(ctx context.Context) error
	Close() error
}

// Open constructs the store backend selected by the configuration.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendBolt:
		return NewBoltStore(cfg.DataDir)
	case config.BackendPostgres:
		return NewPostgresStore(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
