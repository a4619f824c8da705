package history

// ring is a fixed-capacity FIFO buffer. Push overwrites the oldest element
// once the buffer is full.
type ring[T any] struct {
	items []T
	start int
	size  int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{items: make([]T, capacity)}
}

func (r *ring[T]) push(v T) {
	if len(r.items) == 0 {
		return
	}

	if r.size < len(r.items) {
		r.items[(r.start+r.size)%len(r.items)] = v
		r.size++
		return
	}

	r.items[r.start] = v
	r.start = (r.start + 1) % len(r.items)
}

// at returns the i-th element counted from the oldest
func (r *ring[T]) at(i int) T {
	return r.items[(r.start+i)%len(r.items)]
}

func (r *ring[T]) len() int {
	return r.size
}

// slice copies the contents, oldest first
func (r *ring[T]) slice() []T {
	out := make([]T, r.size)
	for i := range out {
		out[i] = r.at(i)
	}

	return out
}
