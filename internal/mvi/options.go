package mvi

import "log/slog"

const defaultEffectBuffer = 64

type options struct {
	name         string
	logger       *slog.Logger
	onError      func(event any, err error)
	effectBuffer int
}

// Option configures a Store.
type Option func(*options)

// WithName labels the store's logs and metrics.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger used for handler failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithErrorHandler registers fn to be called, on the consumer goroutine, for
// every handler error or panic.
func WithErrorHandler(fn func(event any, err error)) Option {
	return func(o *options) { o.onError = fn }
}

// WithEffectBuffer sets the side-effect channel capacity.
func WithEffectBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.effectBuffer = n
		}
	}
}
