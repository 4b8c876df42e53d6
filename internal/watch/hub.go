// Package watch fans out "something changed" notifications to any number of
// in-process listeners. Stores publish after every write so readers can
// re-query, which turns a plain table into a reactive stream.
package watch

import (
	"context"
	"sync"
)

// Hub broadcasts change signals. The zero value is not usable; call NewHub.
type Hub struct {
	mu        sync.Mutex
	listeners map[uint64]chan struct{}
	next      uint64
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{listeners: make(map[uint64]chan struct{})}
}

// Subscribe returns a channel that receives a signal after each Notify. Signals
// coalesce: a listener that falls behind sees one pending signal, not many.
// The channel is closed when ctx ends.
func (h *Hub) Subscribe(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	id := h.next
	h.next++
	h.listeners[id] = ch
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.listeners, id)
		close(ch)
		h.mu.Unlock()
	}()

	return ch
}

// Notify signals every listener without blocking.
func (h *Hub) Notify() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len returns the number of active listeners.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

// Watch calls load immediately and again after every change, sending each
// result on the returned channel until ctx ends. Load errors are passed to
// onErr. A failed first load sends the zero value so readers are never left
// waiting; a failed reload keeps the previous value current.
func Watch[T any](ctx context.Context, h *Hub, load func(context.Context) (T, error), onErr func(error)) <-chan T {
	out := make(chan T)
	changes := h.Subscribe(ctx)

	go func() {
		defer close(out)
		sent := false
		for {
			v, err := load(ctx)
			if err != nil && ctx.Err() != nil {
				return
			}
			if err != nil && onErr != nil {
				onErr(err)
			}
			if err == nil || !sent {
				if err != nil {
					var zero T
					v = zero
				}
				select {
				case out <- v:
					sent = true
				case <-ctx.Done():
					return
				}
			}

			if _, ok := <-changes; !ok {
				return
			}
		}
	}()

	return out
}
