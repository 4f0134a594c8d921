package share

import (
	"fmt"
	"runtime"
)

// QueueOptions configures a Queue at construction.
type QueueOptions struct {
	// Protect wraps every access in the critical section.
	// Required when the queue is also written from interrupt context.
	Protect bool
	// Overwrite drops the oldest item when putting into a full queue.
	Overwrite bool
}

// Queue is a fixed-capacity FIFO ring buffer.
// Get never blocks: an empty queue yields ErrEmpty.
type Queue[T Scalar] struct {
	name      string
	overwrite bool
	guard     Guard

	buf     []T
	wr, rd  int
	count   int
	maxFull int
}

// NewQueue creates a Queue.
func NewQueue[T Scalar](name string, capacity int, opts QueueOptions) (*Queue[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("queue %s: %w: %d", name, ErrInvalidCapacity, capacity)
	}
	return &Queue[T]{
		name:      name,
		overwrite: opts.Overwrite,
		guard:     Guard{protect: opts.Protect},
		buf:       make([]T, capacity),
	}, nil
}

// MustNewQueue creates a Queue and panics on a configuration error.
func MustNewQueue[T Scalar](name string, capacity int, opts QueueOptions) *Queue[T] {
	q, err := NewQueue[T](name, capacity, opts)
	if err != nil {
		panic(err)
	}
	return q
}

// Name implements framework.Named.
func (q *Queue[T]) Name() string {
	return q.name
}

// Put appends an item. On a full queue, the oldest item is dropped
// when overwriting, otherwise Put spins until a consumer frees space.
// Cooperative tasks should check Full first or use TryPut.
func (q *Queue[T]) Put(v T) {
	for {
		q.guard.Lock()
		if q.count < len(q.buf) || q.overwrite {
			q.put(v)
			q.guard.Unlock()
			return
		}
		q.guard.Unlock()
		runtime.Gosched()
	}
}

// TryPut is Put without spinning: ErrFull is returned instead.
func (q *Queue[T]) TryPut(v T) error {
	q.guard.Lock()
	defer q.guard.Unlock()
	if q.count >= len(q.buf) && !q.overwrite {
		return ErrFull
	}
	q.put(v)
	return nil
}

// PutFromISR is used from interrupt context. It never spins: the item
// is dropped when the queue is full and not overwriting.
func (q *Queue[T]) PutFromISR(v T) bool {
	return q.TryPut(v) == nil
}

func (q *Queue[T]) put(v T) {
	if q.count >= len(q.buf) {
		q.rd = q.next(q.rd)
		q.count--
	}
	q.buf[q.wr] = v
	q.wr = q.next(q.wr)
	q.count++
	if q.count > q.maxFull {
		q.maxFull = q.count
	}
}

// Get removes and returns the oldest item.
func (q *Queue[T]) Get() (T, error) {
	q.guard.Lock()
	defer q.guard.Unlock()
	if q.count == 0 {
		var zero T
		return zero, ErrEmpty
	}
	v := q.buf[q.rd]
	q.rd = q.next(q.rd)
	q.count--
	return v, nil
}

// PeekNewest returns the most recently put item without removing it.
func (q *Queue[T]) PeekNewest() (T, error) {
	q.guard.Lock()
	defer q.guard.Unlock()
	if q.count == 0 {
		var zero T
		return zero, ErrEmpty
	}
	idx := q.wr - 1
	if idx < 0 {
		idx = len(q.buf) - 1
	}
	return q.buf[idx], nil
}

// PeekOr returns the newest item, or def when empty.
func (q *Queue[T]) PeekOr(def T) T {
	if v, err := q.PeekNewest(); err == nil {
		return v
	}
	return def
}

// Any tells whether there is at least one item.
func (q *Queue[T]) Any() bool {
	return q.Len() > 0
}

// HasMany tells whether there is more than one item, so a reader
// can take one and still leave the queue non-empty.
func (q *Queue[T]) HasMany() bool {
	return q.Len() > 1
}

// Empty tells whether the queue is empty.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

// Full tells whether the queue is full.
func (q *Queue[T]) Full() bool {
	return q.Len() >= len(q.buf)
}

// Len gets the number of items.
func (q *Queue[T]) Len() int {
	q.guard.Lock()
	defer q.guard.Unlock()
	return q.count
}

// Cap gets the capacity.
func (q *Queue[T]) Cap() int {
	return len(q.buf)
}

// MaxFull gets the highest count ever reached.
func (q *Queue[T]) MaxFull() int {
	q.guard.Lock()
	defer q.guard.Unlock()
	return q.maxFull
}

// Clear drops all items and resets the counters.
func (q *Queue[T]) Clear() {
	q.guard.Lock()
	q.wr, q.rd, q.count, q.maxFull = 0, 0, 0, 0
	q.guard.Unlock()
}

// String renders the diagnostics line.
func (q *Queue[T]) String() string {
	return fmt.Sprintf("%-12s Queue<%s> Max Full %d/%d", q.name, typeName[T](), q.MaxFull(), len(q.buf))
}

func (q *Queue[T]) next(idx int) int {
	if idx++; idx >= len(q.buf) {
		return 0
	}
	return idx
}
