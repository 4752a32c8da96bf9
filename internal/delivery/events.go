package delivery

import "context"

// Event is a fire-and-forget telemetry signal emitted by the coordinator.
type Event string

const (
	// EventRetryScheduled fires once per scheduled retry after a retryable failure.
	EventRetryScheduled Event = "retry_scheduled"
	// EventDiscardFailed fires when removing a staged backup fails.
	EventDiscardFailed Event = "discard_failed"
	// EventDelivered fires on confirmed delivery.
	EventDelivered Event = "delivered"
	// EventExhausted fires when the attempt budget is spent.
	EventExhausted Event = "exhausted"
	// EventRejected fires when a failure is excluded by the retry status filter.
	EventRejected Event = "rejected"
)

// EventSink receives telemetry events. Implementations must be cheap and
// must not fail the caller.
type EventSink interface {
	Add(ctx context.Context, event Event, key string)
}

// NoopSink discards all events.
type NoopSink struct{}

func (NoopSink) Add(ctx context.Context, event Event, key string) {}
