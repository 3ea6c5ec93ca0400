package cache

import "context"

// Store is a keyed value cache. Implementations must be safe for concurrent
// use. A Get on an expired key behaves like a miss.
type Store[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Set(ctx context.Context, key string, value V)
	Delete(ctx context.Context, key string)
	Clear()
	Size() int
}
