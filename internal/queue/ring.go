package queue

import "math/bits"

// ring is a power-of-two sized array of ownership slots. A nil slot is empty
// or a hole; cursors are mapped to slots with cursor & mask.
type ring[T any] struct {
	slots []*T
	mask  uint64
}

// newRing allocates a ring with the given capacity, which must be a power of two
func newRing[T any](capacity int) ring[T] {
	return ring[T]{
		slots: make([]*T, capacity),
		mask:  uint64(capacity - 1),
	}
}

// wrap adopts an existing slot array whose length is a power of two
func wrap[T any](slots []*T) ring[T] {
	return ring[T]{slots: slots, mask: uint64(len(slots) - 1)}
}

func (r *ring[T]) capacity() int {
	return len(r.slots)
}

func (r *ring[T]) index(cursor uint64) uint64 {
	return cursor & r.mask
}

// put stores v at cursor, taking ownership
func (r *ring[T]) put(cursor uint64, v *T) {
	r.slots[r.index(cursor)] = v
}

// take removes and returns the value at cursor, leaving the slot empty
func (r *ring[T]) take(cursor uint64) *T {
	i := r.index(cursor)
	v := r.slots[i]
	r.slots[i] = nil
	return v
}

// peek returns the value at cursor without releasing it
func (r *ring[T]) peek(cursor uint64) *T {
	return r.slots[r.index(cursor)]
}

// roundCapacity rounds n up to the next power of two, minimum 2
func roundCapacity(n int) int {
	if n < 2 {
		return 2
	}
	return 1 << bits.Len(uint(n-1))
}

// alignUp rounds cursor up to a multiple of capacity. Zero is rounded to
// capacity so a relocated reader never moves backwards onto cursor zero.
func alignUp(cursor uint64, capacity uint64) uint64 {
	if cursor == 0 {
		cursor = 1
	}
	return ((cursor-1)/capacity + 1) * capacity
}
