package audio

import (
	"sync/atomic"
)

// queue is a lock-free spsc queue. push is only called from the producer
// side and pop/drain only from the consumer side. Neither ever waits.
type queue[T any] struct {
	items       []T
	mask        uint32
	read, write atomic.Uint32
}

func newQueue[T any](size int) *queue[T] {
	n := 1
	for n < size {
		n <<= 1
	}
	return &queue[T]{
		items: make([]T, n),
		mask:  uint32(n - 1),
	}
}

// push appends v and reports whether there was room for it.
func (q *queue[T]) push(v T) bool {
	write := q.write.Load()
	if write-q.read.Load() == uint32(len(q.items)) {
		return false
	}
	q.items[write&q.mask] = v
	q.write.Store(write + 1)
	return true
}

// pop removes the oldest item, if any.
func (q *queue[T]) pop() (T, bool) {
	var zero T
	read := q.read.Load()
	if read == q.write.Load() {
		return zero, false
	}
	v := q.items[read&q.mask]
	q.items[read&q.mask] = zero
	q.read.Store(read + 1)
	return v, true
}

// drain pops every item visible at the time of the call, oldest first.
func (q *queue[T]) drain(f func(T)) int {
	var zero T
	read := q.read.Load()
	write := q.write.Load()
	n := int(write - read)
	for read != write {
		f(q.items[read&q.mask])
		q.items[read&q.mask] = zero
		read++
	}
	q.read.Store(read)
	return n
}

func (q *queue[T]) len() int {
	return int(q.write.Load() - q.read.Load())
}
