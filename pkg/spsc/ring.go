// Package spsc provides a fixed-capacity, lock-free single-producer
// single-consumer ring buffer.
//
// Exactly one goroutine may push and exactly one goroutine may pop for
// the lifetime of a Ring. Under that discipline no operation blocks and
// no operation allocates, which makes the ring safe to use from
// real-time audio callbacks where a mutex could cause priority
// inversion.
package spsc

import "sync/atomic"

// Ring is a lock-free SPSC circular queue. Capacity is rounded up to
// the next power of two at construction and never changes.
//
// The zero value is not usable; use New.
type Ring[T any] struct {
	data []T
	mask uint64

	// Cursors are kept on separate cache lines so the producer and
	// consumer cores do not invalidate each other's caches on every
	// push/pop (false sharing).
	_     [7]uint64
	write atomic.Uint64 // next slot to write; owned by the producer
	_     [7]uint64
	read  atomic.Uint64 // next slot to read; owned by the consumer
	_     [7]uint64
}

// New creates a ring able to hold at least minCapacity elements.
// minCapacity must be positive.
func New[T any](minCapacity int) *Ring[T] {
	if minCapacity <= 0 {
		panic("spsc: capacity must be positive")
	}

	size := 1
	for size < minCapacity {
		size <<= 1
		if size <= 0 {
			panic("spsc: capacity overflow")
		}
	}

	return &Ring[T]{
		data: make([]T, size),
		mask: uint64(size - 1),
	}
}

// Cap returns the fixed capacity of the ring.
func (r *Ring[T]) Cap() int {
	return len(r.data)
}

// Len returns the number of buffered elements. It is exact only from
// the producer or consumer goroutine; from anywhere else it is an
// approximation.
func (r *Ring[T]) Len() int {
	return int(r.write.Load() - r.read.Load())
}

// Full reports whether a Push at this instant would be dropped.
func (r *Ring[T]) Full() bool {
	return r.Len() >= len(r.data)
}

// Push appends v and reports whether it was stored. When the ring is
// full the value is dropped and Push returns false; it never blocks.
// Must only be called from the producer goroutine.
func (r *Ring[T]) Push(v T) bool {
	w := r.write.Load()
	if w-r.read.Load() >= uint64(len(r.data)) {
		return false
	}

	r.data[w&r.mask] = v
	r.write.Store(w + 1)

	return true
}

// Pop removes and returns the oldest element. ok is false when the
// ring is empty. Must only be called from the consumer goroutine.
func (r *Ring[T]) Pop() (v T, ok bool) {
	rd := r.read.Load()
	if rd == r.write.Load() {
		return v, false
	}

	v = r.data[rd&r.mask]
	r.read.Store(rd + 1)

	return v, true
}
