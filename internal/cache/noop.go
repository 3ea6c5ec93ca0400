package cache

import "context"

// NoOpStore never stores anything; every Get is a miss.
type NoOpStore[V any] struct{}

func NewNoOpStore[V any]() *NoOpStore[V] {
	return &NoOpStore[V]{}
}

func (n *NoOpStore[V]) Get(context.Context, string) (V, bool) {
	var zero V
	return zero, false
}

func (n *NoOpStore[V]) Set(context.Context, string, V) {}

func (n *NoOpStore[V]) Delete(context.Context, string) {}

func (n *NoOpStore[V]) Clear() {}

func (n *NoOpStore[V]) Size() int {
	return 0
}
