package alog

import (
	"sort"
	"sync"
)

// Named is a registry of lazily created values keyed by name.
// All methods are safe for concurrent use.
type Named[K comparable, V any] struct {
	mu     sync.Mutex
	items  map[K]V
	create func(K) V
}

// NewNamed returns an empty registry that builds missing values with create
func NewNamed[K comparable, V any](create func(K) V) *Named[K, V] {
	return &Named[K, V]{
		items:  make(map[K]V),
		create: create,
	}
}

// Get returns the value for key, creating it on first use
func (n *Named[K, V]) Get(key K) V {
	n.mu.Lock()
	defer n.mu.Unlock()

	v, ok := n.items[key]
	if !ok {
		v = n.create(key)
		n.items[key] = v
	}
	return v
}

// Lookup returns the value for key without creating it
func (n *Named[K, V]) Lookup(key K) (V, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	v, ok := n.items[key]
	return v, ok
}

// Delete removes key; a later Get creates a fresh value
func (n *Named[K, V]) Delete(key K) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.items, key)
}

func (n *Named[K, V]) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.items)
}

// Keys returns the registered keys, sorted when less is non-nil
func (n *Named[K, V]) Keys(less func(a, b K) bool) []K {
	n.mu.Lock()
	keys := make([]K, 0, len(n.items))
	for k := range n.items {
		keys = append(keys, k)
	}
	n.mu.Unlock()

	if less != nil {
		sort.Slice(keys, func(i, j int) bool { return less(keys[i], keys[j]) })
	}
	return keys
}
