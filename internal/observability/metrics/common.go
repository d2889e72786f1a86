package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gym_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_circuit_breaker_rejections_total",
			Help: "Total number of calls rejected by an open circuit breaker",
		},
		[]string{"name"},
	)

	StorePoolAcquiredConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gym_store_pool_acquired_connections",
			Help: "Number of acquired postgres connections",
		},
	)

	StorePoolIdleConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gym_store_pool_idle_connections",
			Help: "Number of idle postgres connections",
		},
	)

	StorePoolTotalConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gym_store_pool_total_connections",
			Help: "Total number of postgres connections",
		},
	)

	StoreOperationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gym_store_operation_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"driver", "operation", "collection"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_store_operation_errors_total",
			Help: "Total number of failed document store operations",
		},
		[]string{"driver", "operation", "collection", "error_type"},
	)
)
