// Package mvi implements the event, state and side-effect dispatcher shared by
// every storefront screen.
//
// A Store owns one state value. Events submitted to it are queued without
// bound and handled one at a time, in submission order, by a single consumer
// goroutine. Observers subscribe to state (the latest value is replayed on
// subscribe) and drain one-shot side effects such as navigation or toasts.
package mvi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// ErrClosed is returned by Submit once the store has stopped.
var ErrClosed = fmt.Errorf("mvi store: %w", apperrors.ErrClosed)

// Handler processes one event. It runs on the store's consumer goroutine and
// may call SetState, Update and Emit. A returned error is reported and the
// loop moves on to the next event.
type Handler[S, E, SE any] func(ctx context.Context, s *Store[S, E, SE], event E) error

// Store is a single-consumer state container. S is the state, E the event and
// SE the side-effect type.
type Store[S, E, SE any] struct {
	name    string
	logger  *slog.Logger
	handler Handler[S, E, SE]
	onError func(event any, err error)

	ctx    context.Context
	cancel context.CancelFunc
	queue  *queue[E]
	done   chan struct{}

	mu      sync.RWMutex
	state   S
	subs    map[uint64]*subscriber[S]
	nextSub uint64
	stopped bool

	effectsMu     sync.RWMutex
	effects       chan SE
	effectsClosed bool

	handled  prometheus.Counter
	failures prometheus.Counter
	depth    prometheus.Gauge
	dropped  prometheus.Counter
}

// New starts a store with the given initial state. The consumer loop runs
// until ctx is cancelled or Close is called.
func New[S, E, SE any](ctx context.Context, initial S, handler Handler[S, E, SE], opts ...Option) *Store[S, E, SE] {
	o := options{
		name:         "store",
		logger:       slog.Default(),
		effectBuffer: defaultEffectBuffer,
	}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Store[S, E, SE]{
		name:     o.name,
		logger:   o.logger.With(slog.String("store", o.name)),
		handler:  handler,
		onError:  o.onError,
		ctx:      ctx,
		cancel:   cancel,
		queue:    newQueue[E](),
		done:     make(chan struct{}),
		state:    initial,
		subs:     make(map[uint64]*subscriber[S]),
		effects:  make(chan SE, o.effectBuffer),
		handled:  eventsHandled.WithLabelValues(o.name),
		failures: handlerFailures.WithLabelValues(o.name),
		depth:    queueDepth.WithLabelValues(o.name),
		dropped:  effectsDropped.WithLabelValues(o.name),
	}

	go s.run()
	return s
}

// Name returns the store's label.
func (s *Store[S, E, SE]) Name() string { return s.name }

// State returns the current state.
func (s *Store[S, E, SE]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe returns a channel that receives the current state immediately and
// then every later state. Delivery is conflated: a slow reader only sees the
// newest value. The channel is closed when ctx ends or the store stops.
func (s *Store[S, E, SE]) Subscribe(ctx context.Context) <-chan S {
	sub := &subscriber[S]{ch: make(chan S, 1)}

	s.mu.Lock()
	sub.offer(s.state)
	if s.stopped {
		sub.close()
		s.mu.Unlock()
		return sub.ch
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-s.done:
		}
		s.mu.Lock()
		delete(s.subs, id)
		sub.close()
		s.mu.Unlock()
	}()

	return sub.ch
}

// SideEffects returns the shared side-effect channel. Each effect is received
// by exactly one reader and never replayed. The channel is closed when the
// store stops.
func (s *Store[S, E, SE]) SideEffects() <-chan SE {
	return s.effects
}

// Submit enqueues an event. It never blocks.
func (s *Store[S, E, SE]) Submit(event E) error {
	s.depth.Inc()
	if !s.queue.push(event) {
		s.depth.Dec()
		return ErrClosed
	}
	return nil
}

// Pending returns the number of events waiting to be handled.
func (s *Store[S, E, SE]) Pending() int {
	return s.queue.len()
}

// SetState replaces the state and notifies subscribers.
func (s *Store[S, E, SE]) SetState(state S) {
	s.Update(func(S) S { return state })
}

// Update applies fn to the current state atomically and notifies subscribers.
func (s *Store[S, E, SE]) Update(fn func(S) S) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
	for _, sub := range s.subs {
		sub.offer(s.state)
	}
}

// Emit publishes a one-shot side effect. When the buffer is full the oldest
// undelivered effect is discarded so the consumer loop never stalls on a
// missing reader.
func (s *Store[S, E, SE]) Emit(ctx context.Context, effect SE) {
	s.effectsMu.RLock()
	defer s.effectsMu.RUnlock()
	if s.effectsClosed {
		return
	}

	for {
		select {
		case s.effects <- effect:
			return
		default:
		}
		select {
		case <-s.effects:
			s.dropped.Inc()
			s.logger.WarnContext(ctx, "side effect buffer full, dropped oldest effect")
		default:
		}
	}
}

// Done is closed once the consumer loop has exited.
func (s *Store[S, E, SE]) Done() <-chan struct{} {
	return s.done
}

// Close stops the consumer loop, cancelling any in-flight handler, and waits
// for it to exit. Queued events are discarded. Close is idempotent.
func (s *Store[S, E, SE]) Close() {
	s.cancel()
	<-s.done
}

func (s *Store[S, E, SE]) run() {
	defer s.shutdown()

	for {
		event, ok := s.queue.pop(s.ctx)
		if !ok {
			return
		}
		s.depth.Dec()
		if s.ctx.Err() != nil {
			return
		}
		s.dispatch(event)
	}
}

func (s *Store[S, E, SE]) dispatch(event E) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("event handler panicked",
				slog.String("event", eventName(event)),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)
			s.fail(event, fmt.Errorf("handler panic: %v", rec))
		}
	}()

	s.handled.Inc()
	if err := s.handler(s.ctx, s, event); err != nil {
		if errors.Is(err, context.Canceled) && s.ctx.Err() != nil {
			return
		}
		s.logger.Error("event handler failed",
			slog.String("event", eventName(event)),
			slog.String("error", err.Error()),
		)
		s.fail(event, err)
	}
}

func (s *Store[S, E, SE]) fail(event E, err error) {
	s.failures.Inc()
	if s.onError != nil {
		s.onError(event, err)
	}
}

// shutdown runs once the loop exits: it rejects new events and closes every
// outbound channel.
func (s *Store[S, E, SE]) shutdown() {
	s.cancel()
	if n := s.queue.close(); n > 0 {
		s.depth.Sub(float64(n))
		s.logger.Debug("discarded queued events", slog.Int("count", n))
	}

	s.mu.Lock()
	s.stopped = true
	for id, sub := range s.subs {
		sub.close()
		delete(s.subs, id)
	}
	s.mu.Unlock()

	s.effectsMu.Lock()
	s.effectsClosed = true
	close(s.effects)
	s.effectsMu.Unlock()

	close(s.done)
}

func eventName(event any) string {
	return fmt.Sprintf("%T", event)
}

// subscriber is a conflated, replay-latest channel. All methods are called
// with the store mutex held.
type subscriber[S any] struct {
	ch     chan S
	closed bool
}

func (sub *subscriber[S]) offer(v S) {
	if sub.closed {
		return
	}
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- v
}

func (sub *subscriber[S]) close() {
	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.ch)
}
