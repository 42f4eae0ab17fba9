package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_active_subscriptions",
		Help: "Open change feed subscriptions.",
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_active_sessions",
		Help: "Open realtime websocket connections.",
	})

	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_events_published_total",
		Help: "Change events published to the local hub.",
	}, []string{"table", "type"})

	eventsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_events_delivered_total",
		Help: "Change events handed to a subscriber.",
	}, []string{"table"})

	eventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_events_dropped_total",
		Help: "Change events dropped because a subscriber was too slow.",
	}, []string{"table"})
)
