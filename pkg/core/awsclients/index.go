package awsclients

import (
	"context"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// groupIndex maps security group IDs to the service resources referencing them.
// Every client owning an index is scoped to a single region, so a new region
// means a new client and an empty index; within a client the index is built at
// most once, guarded by the mutex.
type groupIndex[T any] struct {
	mu    sync.Mutex
	built bool
	items cmap.ConcurrentMap[string, []T]
}

func newGroupIndex[T any]() *groupIndex[T] {
	return &groupIndex[T]{items: cmap.New[[]T]()}
}

// lookup returns the resources indexed under groupID, running load first if the
// index has not been built yet. A failed load leaves the index unbuilt so the
// next lookup retries. An absent group ID yields an empty slice, not an error.
func (idx *groupIndex[T]) lookup(ctx context.Context, groupID string,
	load func(ctx context.Context, add func(groupID string, item T)) error) ([]T, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if !idx.built {
		if err := load(ctx, idx.add); err != nil {
			return nil, err
		}
		idx.built = true
	}

	resources, _ := idx.items.Get(groupID)
	return resources, nil
}

// add appends the resource to the bucket for groupID. One resource may end up
// under several group IDs.
func (idx *groupIndex[T]) add(groupID string, item T) {
	existing, _ := idx.items.Get(groupID)
	idx.items.Set(groupID, append(existing, item))
}
