// Package queue implements the bounded multi-producer, single-consumer
// hand-off queue used to move owned records from application goroutines to
// the delivery goroutine.
//
// Producers never block beyond the internal lock. When the queue is full, the
// element in the most recently written slot is evicted together with the
// incoming element, and the slot is left as a hole (nil) so the consumer
// observes every overflow exactly once.
package queue

import (
	"fmt"
	"sync"
)

// Option configures a Queue at construction
type Option[T any] func(*Queue[T])

// WithPinned marks elements that overflow must never evict. When the newest
// slot holds a pinned element and the queue is full, only the incoming
// element is rejected.
func WithPinned[T any](pinned func(*T) bool) Option[T] {
	return func(q *Queue[T]) {
		q.pinned = pinned
	}
}

// Queue is a bounded hand-off queue with a lazily applied capacity change.
// Only one goroutine may call Pop, TryPop or DrainAll.
type Queue[T any] struct {
	mu        sync.Mutex
	nonEmpty  *sync.Cond
	ring      ring[T]
	reader    uint64 // monotonic
	writer    uint64 // monotonic
	requested int
	pinned    func(*T) bool

	// spare is the slot array handed back by the previous DrainAll.
	// Owned by the consumer.
	spare []*T
}

// New creates a queue with capacity rounded up to a power of two (minimum 2)
func New[T any](capacity int, opts ...Option[T]) *Queue[T] {
	q := &Queue[T]{}
	for _, opt := range opts {
		opt(q)
	}
	q.Init(capacity)
	return q
}

// Init sets the capacity and resets both cursors. Any elements still held are
// released. Must be called before the first Push on a zero Queue.
func (q *Queue[T]) Init(capacity int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.nonEmpty == nil {
		q.nonEmpty = sync.NewCond(&q.mu)
	}
	capacity = roundCapacity(capacity)
	q.ring = newRing[T](capacity)
	q.requested = capacity
	q.reader = 0
	q.writer = 0
	q.spare = nil
}

// Push stores v as the newest element and reports whether ownership was
// transferred. On overflow the newest stored element is evicted and replaced
// by a hole, v is rejected, and Push returns false.
func (q *Queue[T]) Push(v *T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.ring.capacity() == 0 {
		panic("queue: push on uninitialized queue")
	}

	if q.requested != q.ring.capacity() && q.live() <= uint64(q.requested) {
		q.resize()
	}

	if q.live() == uint64(q.ring.capacity()) {
		last := q.writer - 1
		if prev := q.ring.peek(last); prev == nil || q.pinned == nil || !q.pinned(prev) {
			q.ring.take(last)
		}
		return false
	}

	q.ring.put(q.writer, v)
	wasEmpty := q.reader == q.writer
	q.writer++
	if wasEmpty {
		q.nonEmpty.Signal()
	}
	return true
}

// Pop blocks until an element is available and returns it. A nil result is a
// hole left by overflow, not an empty queue.
func (q *Queue[T]) Pop() *T {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.reader == q.writer {
		q.nonEmpty.Wait()
	}
	v := q.ring.take(q.reader)
	q.reader++
	return v
}

// TryPop is the non-blocking Pop. ok is false when the queue was empty; a
// true ok with a nil value is a hole.
func (q *Queue[T]) TryPop() (v *T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.reader == q.writer {
		return nil, false
	}
	v = q.ring.take(q.reader)
	q.reader++
	return v, true
}

// DrainAll blocks until the queue is non-empty, then takes the whole backing
// array in one swap and appends its live elements, holes included, to dst in
// order. The queue is left empty with its capacity unchanged.
func (q *Queue[T]) DrainAll(dst []*T) []*T {
	q.mu.Lock()
	for q.reader == q.writer {
		q.nonEmpty.Wait()
	}
	taken := q.ring
	from, to := q.reader, q.writer
	if len(q.spare) == taken.capacity() {
		q.ring = wrap(q.spare)
	} else {
		q.ring = newRing[T](taken.capacity())
	}
	q.spare = nil
	q.reader = q.writer
	q.mu.Unlock()

	for c := from; c < to; c++ {
		dst = append(dst, taken.take(c))
	}
	q.spare = taken.slots
	return dst
}

// RequestResize records a desired capacity. It is applied by a later Push once
// the live elements fit; until then the current capacity governs overflow.
func (q *Queue[T]) RequestResize(capacity int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.requested = roundCapacity(capacity)
}

// Empty reports whether no elements or holes are pending
func (q *Queue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.reader == q.writer
}

// Len returns the number of pending slots, holes included
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int(q.live())
}

// Cap returns the capacity currently in effect
func (q *Queue[T]) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ring.capacity()
}

// Requested returns the capacity the queue is converging to
func (q *Queue[T]) Requested() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.requested
}

// String is used by test failures and the stress tool
func (q *Queue[T]) String() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return fmt.Sprintf("queue{cap=%d requested=%d reader=%d writer=%d}",
		q.ring.capacity(), q.requested, q.reader, q.writer)
}

func (q *Queue[T]) live() uint64 {
	return q.writer - q.reader
}

// resize moves the live elements to a new array starting at offset zero and
// relocates the cursors so cursor & mask keeps their relative order.
// Caller holds mu and has checked that the live elements fit.
func (q *Queue[T]) resize() {
	next := newRing[T](q.requested)
	n := q.live()
	for i := uint64(0); i < n; i++ {
		next.slots[i] = q.ring.take(q.reader + i)
	}
	q.reader = alignUp(q.reader, uint64(q.requested))
	q.writer = q.reader + n
	q.ring = next
}
