package spatial

import "sync/atomic"

// CacheLineSize is the typical CPU cache line size (64 bytes on x86-64).
const CacheLineSize = 64

// Padding keeps hot counters on separate cache lines.
type Padding [CacheLineSize]byte

type cell[T any] struct {
	seq  atomic.Uint64
	item T
}

// Queue is a bounded multi-producer single-consumer ring buffer (Vyukov
// style). Each cell carries a sequence number, so a consumer never reads
// a cell whose producer has claimed but not yet written it.
//
// Memory layout: [pad][head][pad][tail][pad][cells...]
type Queue[T any] struct {
	_    Padding
	head atomic.Uint64 // next enqueue position (producers)
	_    Padding
	tail atomic.Uint64 // next dequeue position (consumer)
	_    Padding
	mask  uint64
	cells []cell[T]
}

// NewQueue creates a queue holding at least capacity items (rounded up to
// a power of two).
func NewQueue[T any](capacity int) *Queue[T] {
	size := 1
	for size < capacity {
		size <<= 1
	}
	q := &Queue[T]{
		mask:  uint64(size - 1),
		cells: make([]cell[T], size),
	}
	for i := range q.cells {
		q.cells[i].seq.Store(uint64(i))
	}
	return q
}

// TryPush enqueues item. It returns false when the queue is full.
// Safe for concurrent producers.
func (q *Queue[T]) TryPush(item T) bool {
	for {
		pos := q.head.Load()
		c := &q.cells[pos&q.mask]
		seq := c.seq.Load()
		switch {
		case seq == pos:
			if q.head.CompareAndSwap(pos, pos+1) {
				c.item = item
				c.seq.Store(pos + 1)
				return true
			}
		case seq < pos:
			return false
		}
		// Another producer advanced head; retry with the new position.
	}
}

// TryPop dequeues the oldest item. Single consumer only.
func (q *Queue[T]) TryPop() (T, bool) {
	var zero T
	pos := q.tail.Load()
	c := &q.cells[pos&q.mask]
	if c.seq.Load() != pos+1 {
		return zero, false
	}
	item := c.item
	c.item = zero
	c.seq.Store(pos + q.mask + 1)
	q.tail.Store(pos + 1)
	return item, true
}

// DrainTo pops up to len(buf) items into buf and returns the count.
func (q *Queue[T]) DrainTo(buf []T) int {
	n := 0
	for n < len(buf) {
		item, ok := q.TryPop()
		if !ok {
			break
		}
		buf[n] = item
		n++
	}
	return n
}

// Len returns an approximate item count.
func (q *Queue[T]) Len() int {
	h, t := q.head.Load(), q.tail.Load()
	if h < t {
		return 0
	}
	return int(h - t)
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int { return len(q.cells) }
