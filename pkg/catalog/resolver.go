package catalog

import (
	"context"
	"strings"

	"github.com/plantops/assetgraph/pkg/storage"
	"github.com/plantops/assetgraph/pkg/types"
)

// DefaultMaxPathDepth bounds the breadcrumb walk. It covers the full
// six-level hierarchy minus the root and protects against cyclic or
// malformed parent data.
const DefaultMaxPathDepth = 5

// Resolver answers hierarchy queries against the asset catalog.
type Resolver struct {
	store        storage.Store
	maxPathDepth int
}

// NewResolver creates a resolver over the given store. maxPathDepth bounds
// Path; values below 1 fall back to the default.
func NewResolver(store storage.Store, maxPathDepth int) *Resolver {
	if maxPathDepth < 1 {
		maxPathDepth = DefaultMaxPathDepth
	}
	return &Resolver{store: store, maxPathDepth: maxPathDepth}
}

// Children returns all assets whose parent matches parentID. A nil parentID
// selects the root (Site-level) assets.
func (r *Resolver) Children(ctx context.Context, parentID *string) ([]*types.Asset, error) {
	return r.store.ListAssetsByParent(ctx, parentID)
}

// Search returns assets whose name contains the query, case-insensitively.
// A blank query returns no assets rather than all of them.
func (r *Resolver) Search(ctx context.Context, query string) ([]*types.Asset, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	return r.store.SearchAssets(ctx, query)
}

// Get returns the asset with the given id, or nil when it does not exist.
func (r *Resolver) Get(ctx context.Context, id string) (*types.Asset, error) {
	return r.store.GetAsset(ctx, id)
}

// GetByIDs returns the subset of assets whose id is in ids.
func (r *Resolver) GetByIDs(ctx context.Context, ids []string) ([]*types.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.store.ListAssetsByIDs(ctx, ids)
}

// Path walks parent references from id up toward the root and returns the
// root-to-node chain. The walk is capped at the configured depth; truncated
// reports that the cap was hit with a parent reference still unresolved, so
// callers can surface incomplete breadcrumbs instead of silently dropping
// ancestors.
//
// An unknown id yields an empty path. A parent reference that cannot be
// resolved ends the walk without error.
func (r *Resolver) Path(ctx context.Context, id string) (path []*types.Asset, truncated bool, err error) {
	current, err := r.store.GetAsset(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if current == nil {
		return nil, false, nil
	}

	path = []*types.Asset{current}
	for current.ParentID != nil {
		if len(path) >= r.maxPathDepth {
			return path, true, nil
		}
		parent, err := r.store.GetAsset(ctx, *current.ParentID)
		if err != nil {
			return nil, false, err
		}
		if parent == nil {
			// Dangling reference; the chain ends here.
			break
		}
		path = append([]*types.Asset{parent}, path...)
		current = parent
	}
	return path, false, nil
}
