package feeds

// ═══════════════════════════════════════════════════════════════════════════════
// RING - Fixed-capacity rolling window
// ═══════════════════════════════════════════════════════════════════════════════
//
// Backs the tick/digit histories. Once full, every Push evicts the oldest
// element. Storage never grows past the capacity given at construction.
//
// ═══════════════════════════════════════════════════════════════════════════════

// Ring is a circular buffer keeping the last N values
type Ring[T any] struct {
	values []T
	start  int // index of the oldest value
	size   int
}

// NewRing creates a ring with the given capacity (minimum 1)
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{
		values: make([]T, capacity),
	}
}

// Push appends a value, returning the evicted one if the ring was full
func (r *Ring[T]) Push(v T) (T, bool) {
	var evicted T
	if r.size < len(r.values) {
		r.values[(r.start+r.size)%len(r.values)] = v
		r.size++
		return evicted, false
	}

	evicted = r.values[r.start]
	r.values[r.start] = v
	r.start = (r.start + 1) % len(r.values)
	return evicted, true
}

// Len returns the number of stored values
func (r *Ring[T]) Len() int {
	return r.size
}

// Cap returns the ring capacity
func (r *Ring[T]) Cap() int {
	return len(r.values)
}

// Full returns true if the ring is at capacity
func (r *Ring[T]) Full() bool {
	return r.size == len(r.values)
}

// Values returns a copy of the stored values, oldest first
func (r *Ring[T]) Values() []T {
	return r.Last(r.size)
}

// Last returns a copy of the newest n values, oldest first
func (r *Ring[T]) Last(n int) []T {
	if n > r.size {
		n = r.size
	}
	if n <= 0 {
		return []T{}
	}

	out := make([]T, n)
	offset := r.start + r.size - n
	for i := 0; i < n; i++ {
		out[i] = r.values[(offset+i)%len(r.values)]
	}
	return out
}

// Newest returns the most recently pushed value
func (r *Ring[T]) Newest() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	return r.values[(r.start+r.size-1)%len(r.values)], true
}

// Clear empties the ring without releasing its storage
func (r *Ring[T]) Clear() {
	var zero T
	for i := range r.values {
		r.values[i] = zero
	}
	r.start = 0
	r.size = 0
}
