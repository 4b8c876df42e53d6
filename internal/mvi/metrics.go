package mvi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mvi_events_handled_total",
			Help: "Events taken off a store queue and passed to its handler",
		},
		[]string{"store"},
	)

	handlerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mvi_handler_failures_total",
			Help: "Handler invocations that returned an error or panicked",
		},
		[]string{"store"},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mvi_queue_depth",
			Help: "Events waiting in a store queue",
		},
		[]string{"store"},
	)

	effectsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mvi_effects_dropped_total",
			Help: "Side effects discarded because nobody drained the effect buffer",
		},
		[]string{"store"},
	)
)
