package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_notifications_created_total",
			Help: "Total number of notifications created by route",
		},
		[]string{"kind"},
	)

	NotifierDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_notifier_deliveries_total",
			Help: "Total number of email deliveries by provider and result",
		},
		[]string{"provider", "result"},
	)

	NotifierDeliveryDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gym_notifier_delivery_duration_seconds",
			Help:    "Duration of email deliveries in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)

	LiveConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gym_live_connections_active",
			Help: "Number of open notification feed websocket connections",
		},
	)

	LiveMessagesPushed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_live_messages_pushed_total",
			Help: "Total number of notifications pushed to websocket clients",
		},
	)

	LiveMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_live_messages_dropped_total",
			Help: "Total number of notifications dropped for slow websocket clients",
		},
	)

	LiveDisconnections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_live_disconnections_total",
			Help: "Total number of websocket disconnections by reason",
		},
		[]string{"reason"},
	)
)
