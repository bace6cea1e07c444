package catalog

import (
	"context"
	"sync"

	"github.com/plantops/assetgraph/pkg/types"
)

// Loader memoizes children lookups for the lifetime of one request.
// Resolving the children field across a tree otherwise issues one store
// query per asset; a loader scoped to the request collapses repeated
// lookups and is discarded when the request ends.
type Loader struct {
	resolver *Resolver
	mu       sync.Mutex
	children map[string][]*types.Asset
}

// NewLoader creates a loader bound to the resolver.
func NewLoader(resolver *Resolver) *Loader {
	return &Loader{
		resolver: resolver,
		children: make(map[string][]*types.Asset),
	}
}

// Children returns the children of parentID, hitting the store at most once
// per parent for this loader's lifetime.
func (l *Loader) Children(ctx context.Context, parentID string) ([]*types.Asset, error) {
	l.mu.Lock()
	if cached, ok := l.children[parentID]; ok {
		l.mu.Unlock()
		return cached, nil
	}
	l.mu.Unlock()

	assets, err := l.resolver.Children(ctx, &parentID)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.children[parentID] = assets
	l.mu.Unlock()
	return assets, nil
}

// Prime batch-loads children for the given parents in one store call and
// caches the groups, including empty ones.
func (l *Loader) Prime(ctx context.Context, parentIDs []string) error {
	if len(parentIDs) == 0 {
		return nil
	}
	grouped, err := l.resolver.store.ListAssetsByParents(ctx, parentIDs)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range parentIDs {
		l.children[id] = grouped[id]
	}
	return nil
}

type loaderKey struct{}

// WithLoader attaches a loader to the context.
func WithLoader(ctx context.Context, loader *Loader) context.Context {
	return context.WithValue(ctx, loaderKey{}, loader)
}

// LoaderFrom extracts the request loader, or nil when none is attached.
func LoaderFrom(ctx context.Context) *Loader {
	l, _ := ctx.Value(loaderKey{}).(*Loader)
	return l
}
