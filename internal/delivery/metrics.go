package delivery

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DeliveryEvents tracks coordinator telemetry events by type.
	DeliveryEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_delivery_events_total",
			Help: "Total number of delivery events by type",
		},
		[]string{"event"},
	)

	// DeliveryAttempts tracks upload attempts.
	DeliveryAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courier_delivery_attempts_total",
			Help: "Total number of upload attempts",
		},
	)

	// DeliveriesCompleted tracks delivery sequences by terminal status.
	DeliveriesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_deliveries_total",
			Help: "Total number of completed delivery sequences by terminal status",
		},
		[]string{"status"},
	)

	// DeliveryDuration tracks end-to-end delivery sequence duration.
	DeliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "courier_delivery_duration_seconds",
			Help:    "End-to-end delivery sequence duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)
)

// PromSink forwards coordinator events to Prometheus counters.
type PromSink struct{}

func (PromSink) Add(ctx context.Context, event Event, key string) {
	DeliveryEvents.WithLabelValues(string(event)).Inc()
}
