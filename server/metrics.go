package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchase_explorer_events_total",
		Help: "Interaction events applied to the view, by event type",
	}, []string{"type"})

	rendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchase_explorer_renders_total",
		Help: "Panel renders, by how much of the view was invalidated",
	}, []string{"kind"})

	rejectedEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "purchase_explorer_rejected_events_total",
		Help: "Event payloads that could not be decoded",
	})

	renderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "purchase_explorer_render_duration_seconds",
		Help:    "Time spent rendering a page or panel fragment",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
	}, []string{"target"})
)
