package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FriendTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatbook_friend_transitions_total",
		Help: "Friend protocol transitions by outcome.",
	}, []string{"outcome"})

	NotificationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatbook_notifications_created_total",
		Help: "Notification records persisted.",
	})

	RealtimeDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatbook_realtime_deliveries_total",
		Help: "Realtime publish attempts by result.",
	}, []string{"result"})

	OpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatbook_ws_connections",
		Help: "Currently open websocket connections.",
	})
)
