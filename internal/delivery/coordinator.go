package delivery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/vietddude/courier/internal/core/backoff"
	"github.com/vietddude/courier/internal/core/domain"
	"github.com/vietddude/courier/internal/infra/backup"
	"github.com/vietddude/courier/internal/infra/remote"
)

// Config holds retry policy settings for the coordinator.
type Config struct {
	// MaxAttempts is the attempt budget per staged payload.
	MaxAttempts int `yaml:"max_attempts"`

	// RetryableStatusCodes are retried in addition to the fixed rule that
	// any transport status >= 500 is retryable.
	RetryableStatusCodes []int `yaml:"retryable_status_codes"`

	Backoff backoff.Config `yaml:"backoff"`
}

// Coordinator owns the upload-with-retry protocol for staged payloads: it
// stages payloads into the backup store, drives bounded retries against a
// remote uploader with backoff, classifies failures, and removes the backup
// once delivery is confirmed.
type Coordinator struct {
	store       backup.Store
	calc        backoff.Calculator
	events      EventSink
	log         *slog.Logger
	maxAttempts int
	retryable   map[int]struct{}
}

// NewCoordinator creates a coordinator. A nil sink discards events, a nil
// logger falls back to slog.Default.
func NewCoordinator(store backup.Store, calc backoff.Calculator, cfg Config, sink EventSink, log *slog.Logger) *Coordinator {
	if sink == nil {
		sink = NoopSink{}
	}
	if log == nil {
		log = slog.Default()
	}
	retryable := make(map[int]struct{}, len(cfg.RetryableStatusCodes))
	for _, code := range cfg.RetryableStatusCodes {
		retryable[code] = struct{}{}
	}
	return &Coordinator{
		store:       store,
		calc:        calc,
		events:      sink,
		log:         log,
		maxAttempts: cfg.MaxAttempts,
		retryable:   retryable,
	}
}

// Stage durably persists the payload before returning and hands back a fresh
// state carrying the full attempt budget.
func (c *Coordinator) Stage(ctx context.Context, key string, r io.Reader) (*domain.DeliveryState, error) {
	c.log.Debug("staging payload", "key", key)
	if err := c.store.Write(ctx, key, r); err != nil {
		return nil, &BackupError{Op: "write", Key: key, Err: err}
	}
	c.log.Debug("payload staged", "key", key)
	return domain.NewDeliveryState(key, c.maxAttempts), nil
}

// FetchStaged reads the staged payload back from the backup store.
func (c *Coordinator) FetchStaged(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := c.store.Read(ctx, key)
	if err != nil {
		return nil, &BackupError{Op: "read", Key: key, Err: err}
	}
	return rc, nil
}

// Discard removes the staged payload best-effort. Failures are reported as a
// telemetry event and logged, never propagated: failing to garbage-collect a
// backup must not fail an otherwise-successful delivery.
func (c *Coordinator) Discard(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		c.events.Add(ctx, EventDiscardFailed, key)
		c.log.Error("failed to remove staged payload", "key", key, "error", err)
		return
	}
	c.log.Debug("staged payload removed", "key", key)
}

// IsRetryableStatus reports whether a transport status qualifies for a retry:
// any status >= 500, plus the configured set.
func (c *Coordinator) IsRetryableStatus(code int) bool {
	if code >= 500 {
		return true
	}
	_, ok := c.retryable[code]
	return ok
}

// Deliver drives the retry protocol to a terminal outcome. It blocks until
// the payload is confirmed delivered (nil), the failure classification is
// terminal (BackupError, ExhaustedError, NotRetriedError), or ctx is
// cancelled (CancelledError). On cancellation the chain is abandoned: no
// further attempt is scheduled, an attempt already in flight is not
// retracted, and its eventual result is discarded.
func (c *Coordinator) Deliver(ctx context.Context, up remote.Uploader, state *domain.DeliveryState) error {
	result := make(chan error, 1)
	go c.run(ctx, up, state, result)

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		c.log.Error("delivery wait cancelled", "key", state.Key(), "error", ctx.Err())
		return &CancelledError{Key: state.Key(), Err: ctx.Err()}
	}
}

// run is the retry loop. Each attempt consumes one unit of the budget before
// it executes, so a state with zero attempts left can never be rescheduled.
// Exactly one terminal outcome is sent on result; the channel is buffered so
// an abandoned chain never blocks.
func (c *Coordinator) run(ctx context.Context, up remote.Uploader, state *domain.DeliveryState, result chan<- error) {
	key := state.Key()

	// Cancellation abandons the chain but must not retract an attempt that
	// is already in flight, so the attempt body runs detached from ctx.
	attemptCtx := context.WithoutCancel(ctx)

	for {
		if ctx.Err() != nil {
			// Abandoned: the caller has already returned. Commit nothing
			// further against the state.
			return
		}
		if !state.Decrement() {
			// Called with nothing left: terminal, no attempt made, no cause.
			result <- &ExhaustedError{Key: key}
			return
		}
		attempt := state.AttemptsUsed()
		delay := c.calc.Delay(state.AttemptsLeft())

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		c.log.Info("attempting delivery", "key", key, "attempt", attempt, "max", c.maxAttempts)
		DeliveryAttempts.Inc()

		rc, err := c.FetchStaged(attemptCtx, key)
		if err != nil {
			// The source of truth is unavailable: terminal, never retried.
			c.log.Error("failed to read staged payload", "key", key, "error", err)
			result <- err
			return
		}

		err = up.Upload(attemptCtx, rc)
		_ = rc.Close()
		if err == nil {
			c.log.Debug("delivery attempt successful", "key", key, "attempt", attempt)
			c.events.Add(attemptCtx, EventDelivered, key)
			c.Discard(attemptCtx, key)
			result <- nil
			return
		}

		c.log.Error("delivery attempt failed", "key", key, "attempt", attempt, "error", err)

		var uerr *remote.UploadError
		if !errors.As(err, &uerr) {
			// Failures without a transport status are connectivity-class.
			uerr = &remote.UploadError{Err: err}
		}

		if !uerr.HasHTTPStatus() || c.IsRetryableStatus(uerr.HTTPStatus) {
			if state.AttemptsLeft() > 0 {
				c.events.Add(attemptCtx, EventRetryScheduled, key)
				continue
			}
			c.events.Add(attemptCtx, EventExhausted, key)
			result <- &ExhaustedError{
				Key:             key,
				InternalStatus:  uerr.Status,
				TransportStatus: uerr.HTTPStatus,
				Err:             uerr,
			}
			return
		}

		c.events.Add(attemptCtx, EventRejected, key)
		c.log.Debug("not retried due to status code", "key", key, "code", uerr.HTTPStatus)
		result <- &NotRetriedError{
			Key:             key,
			InternalStatus:  uerr.Status,
			TransportStatus: uerr.HTTPStatus,
			Err:             uerr,
		}
		return
	}
}
