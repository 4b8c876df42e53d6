package mvi

import (
	"context"
	"sync"
)

// queue is an unbounded FIFO with a single consumer. push never blocks.
type queue[E any] struct {
	mu     sync.Mutex
	items  []E
	closed bool
	signal chan struct{}
}

func newQueue[E any]() *queue[E] {
	return &queue[E]{signal: make(chan struct{}, 1)}
}

// push appends e and reports false once the queue is closed.
func (q *queue[E]) push(e E) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, e)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// pop blocks until an item is available, the queue is closed or ctx is done.
func (q *queue[E]) pop(ctx context.Context) (E, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			e := q.items[0]
			var zero E
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()
			return e, true
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			var zero E
			return zero, false
		}

		select {
		case <-q.signal:
		case <-ctx.Done():
			var zero E
			return zero, false
		}
	}
}

func (q *queue[E]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// close rejects further pushes and drops anything still queued.
func (q *queue[E]) close() int {
	q.mu.Lock()
	dropped := len(q.items)
	q.items = nil
	q.closed = true
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return dropped
}
