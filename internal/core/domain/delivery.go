package domain

import (
	"sync/atomic"
	"time"
)

// DeliveryStatus is the terminal outcome of one delivery sequence.
type DeliveryStatus string

const (
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusExhausted DeliveryStatus = "exhausted"
	DeliveryStatusRejected  DeliveryStatus = "rejected" // excluded by the retry status filter
	DeliveryStatusCancelled DeliveryStatus = "cancelled"
	DeliveryStatusFailed    DeliveryStatus = "failed" // backup store failure on the critical path
)

// DeliveryState tracks the remaining attempts for one staged payload. It is
// owned by a single delivery sequence, but a caller whose wait was cancelled
// may still observe it while the abandoned retry loop winds down, so the
// counter is atomic.
type DeliveryState struct {
	key          string
	budget       int
	attemptsLeft atomic.Int64
}

// NewDeliveryState creates a state with the full attempt budget.
func NewDeliveryState(key string, attempts int) *DeliveryState {
	s := &DeliveryState{key: key, budget: attempts}
	s.attemptsLeft.Store(int64(attempts))
	return s
}

// Key returns the staged payload key.
func (s *DeliveryState) Key() string {
	return s.key
}

// AttemptsLeft returns the number of attempts not yet committed.
func (s *DeliveryState) AttemptsLeft() int {
	return int(s.attemptsLeft.Load())
}

// AttemptsUsed returns the number of attempts already committed.
func (s *DeliveryState) AttemptsUsed() int {
	return s.budget - s.AttemptsLeft()
}

// Decrement commits one attempt. It returns false when the budget is already
// spent, in which case no attempt may be scheduled.
func (s *DeliveryState) Decrement() bool {
	for {
		n := s.attemptsLeft.Load()
		if n <= 0 {
			return false
		}
		if s.attemptsLeft.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

// DeliveryRecord is one journal entry: the terminal outcome of a delivery
// sequence for a staged payload.
type DeliveryRecord struct {
	ID              string         `db:"id"`
	PayloadKey      string         `db:"payload_key"`
	Status          DeliveryStatus `db:"status"`
	AttemptsUsed    int            `db:"attempts_used"`
	InternalStatus  int            `db:"internal_status"`
	TransportStatus int            `db:"transport_status"`
	Error           string         `db:"error_msg"`
	StartedAt       time.Time      `db:"started_at"`
	FinishedAt      time.Time      `db:"finished_at"`
}
