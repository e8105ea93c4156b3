package queue

import (
	"context"
	"sync"
	"time"
)

// Queue is an unbounded FIFO safe for one or more producers and consumers.
// Producers never block; consumers wait with Pop.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	ready chan struct{}
}

// New creates and returns a new Queue instance.
func New[T any]() *Queue[T] {
	return &Queue[T]{ready: make(chan struct{}, 1)}
}

// Push adds an element to the end of the queue.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// TryPop removes and returns the front element without waiting.
// The boolean indicates whether an element was dequeued.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	item := q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return item, true
}

// Pop waits up to timeout for an element. It returns false on timeout or
// when ctx is done.
func (q *Queue[T]) Pop(ctx context.Context, timeout time.Duration) (T, bool) {
	if item, ok := q.TryPop(); ok {
		return item, true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			var zero T
			return zero, false
		case <-timer.C:
			return q.TryPop()
		case <-q.ready:
			if item, ok := q.TryPop(); ok {
				return item, true
			}
		}
	}
}

// Drain removes and returns every queued element in order.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Len returns the number of elements in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
