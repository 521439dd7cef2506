// Package ringbuf implements a fixed-capacity circular buffer that
// overwrites its oldest element once full. Total-added accounting lets
// consumers detect how many elements have been evicted from the
// addressable window.
package ringbuf

// Ring is a bounded buffer of T. The zero value is not usable; call New.
type Ring[T any] struct {
	items      []T
	head       int // index of the logically oldest element
	count      int
	totalAdded uint64
}

// New returns a ring holding at most capacity elements. A capacity
// below one is clamped to one.
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{items: make([]T, capacity)}
}

// Push appends item, overwriting the oldest element when the ring is
// full. Push never fails; overwrite at capacity is defined behavior,
// not an error.
func (r *Ring[T]) Push(item T) {
	if r.count < len(r.items) {
		r.items[(r.head+r.count)%len(r.items)] = item
		r.count++
	} else {
		r.items[r.head] = item
		r.head = (r.head + 1) % len(r.items)
	}
	r.totalAdded++
}

// At returns the i-th oldest retained element. ok is false when i is
// outside [0, Len()).
func (r *Ring[T]) At(i int) (T, bool) {
	var zero T
	if i < 0 || i >= r.count {
		return zero, false
	}
	return r.items[(r.head+i)%len(r.items)], true
}

// Len reports how many elements are currently retained.
func (r *Ring[T]) Len() int { return r.count }

// Cap reports the fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.items) }

// TotalAdded reports how many elements have ever been pushed. It is
// monotonic and only resets on Clear.
func (r *Ring[T]) TotalAdded() uint64 { return r.totalAdded }

// Dropped reports how many elements have been evicted from the window.
func (r *Ring[T]) Dropped() uint64 { return r.totalAdded - uint64(r.count) }

// Do calls fn on each retained element, oldest first, stopping early
// when fn returns false.
func (r *Ring[T]) Do(fn func(item T) bool) {
	for i := 0; i < r.count; i++ {
		if !fn(r.items[(r.head+i)%len(r.items)]) {
			return
		}
	}
}

// Slice copies the retained elements, oldest first.
func (r *Ring[T]) Slice() []T {
	out := make([]T, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.items[(r.head+i)%len(r.items)]
	}
	return out
}

// Clear empties the ring and resets total-added accounting. Slots are
// zeroed so evicted elements become unreachable.
func (r *Ring[T]) Clear() {
	var zero T
	for i := range r.items {
		r.items[i] = zero
	}
	r.head = 0
	r.count = 0
	r.totalAdded = 0
}
