// Package ring implements a bounded, fixed-capacity FIFO slot ring.
//
// It generalizes the index arithmetic of a classic ring buffer (head, count,
// wraparound via modulo) to hold arbitrary slot values instead of bytes, and
// changes the overflow policy: a full ring rejects new entries rather than
// overwriting the oldest one. Mailboxes and channels both need "reject when
// full, FIFO order, fixed backing array" semantics, so they share this type
// instead of each re-deriving the index math.
package ring

import "github.com/proos-dev/kernel/kerr"

// Ring is a bounded FIFO of capacity cap(Ring). The zero value is not usable;
// construct with New.
type Ring[T any] struct {
	buf   []T
	start int
	count int
}

// New returns an empty ring that can hold up to capacity elements.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Len returns the number of enqueued elements.
func (r *Ring[T]) Len() int { return r.count }

// Cap returns the ring's fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Full reports whether the ring is at capacity.
func (r *Ring[T]) Full() bool { return r.count == len(r.buf) }

// Empty reports whether the ring holds no elements.
func (r *Ring[T]) Empty() bool { return r.count == 0 }

// Push appends v at the tail. It returns kerr.Fullf if the ring is at
// capacity; no element is silently dropped or overwritten.
func (r *Ring[T]) Push(v T) error {
	if r.Full() {
		return kerr.Fullf("ring: at capacity (%d)", len(r.buf))
	}
	idx := (r.start + r.count) % len(r.buf)
	r.buf[idx] = v
	r.count++
	return nil
}

// Pop removes and returns the head element. ok is false if the ring was
// empty, in which case the returned value is the zero value of T.
func (r *Ring[T]) Pop() (v T, ok bool) {
	if r.Empty() {
		return v, false
	}
	v = r.buf[r.start]
	var zero T
	r.buf[r.start] = zero
	r.start = (r.start + 1) % len(r.buf)
	r.count--
	return v, true
}

// Peek returns the head element without removing it.
func (r *Ring[T]) Peek() (v T, ok bool) {
	if r.Empty() {
		return v, false
	}
	return r.buf[r.start], true
}

// RemoveFunc removes the first element for which match returns true,
// preserving the relative order of the rest. It reports whether an element
// was removed.
func (r *Ring[T]) RemoveFunc(match func(T) bool) (v T, ok bool) {
	for i := 0; i < r.count; i++ {
		idx := (r.start + i) % len(r.buf)
		if match(r.buf[idx]) {
			v = r.buf[idx]
			// shift everything after idx back by one slot.
			for j := i; j < r.count-1; j++ {
				cur := (r.start + j) % len(r.buf)
				next := (r.start + j + 1) % len(r.buf)
				r.buf[cur] = r.buf[next]
			}
			last := (r.start + r.count - 1) % len(r.buf)
			var zero T
			r.buf[last] = zero
			r.count--
			return v, true
		}
	}
	return v, false
}
