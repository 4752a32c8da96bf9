package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/courier/internal/core/domain"
	"github.com/vietddude/courier/internal/delivery"
	"github.com/vietddude/courier/internal/infra/journal"
	"github.com/vietddude/courier/internal/infra/remote"
)

// Check probes a single dependency; nil means healthy.
type Check func(ctx context.Context) error

// Server exposes the payload intake endpoint plus health and metrics.
type Server struct {
	coord    *delivery.Coordinator
	uploader remote.Uploader
	journal  journal.Repository
	checks   map[string]Check
	log      *slog.Logger
	server   *http.Server
}

// NewServer wires the HTTP surface.
func NewServer(
	coord *delivery.Coordinator,
	uploader remote.Uploader,
	jrnl journal.Repository,
	checks map[string]Check,
	port int,
	log *slog.Logger,
) *Server {
	if log == nil {
		log = slog.Default()
	}

	mux := http.NewServeMux()
	s := &Server{
		coord:    coord,
		uploader: uploader,
		journal:  jrnl,
		checks:   checks,
		log:      log,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	// Trailing wildcard so hierarchical keys (study/series/instance) work.
	mux.HandleFunc("POST /payloads/{key...}", s.handleIngest)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleIngest stages the request body and drives delivery to a terminal
// outcome before responding. The response reflects exactly one terminal
// classification.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing payload key"})
		return
	}

	ctx := r.Context()
	started := time.Now()

	state, err := s.coord.Stage(ctx, key, r.Body)
	if err != nil {
		s.log.Error("failed to stage payload", "key", key, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": string(domain.DeliveryStatusFailed),
			"error":  err.Error(),
		})
		return
	}

	err = s.coord.Deliver(ctx, s.uploader, state)
	status, httpCode := classifyOutcome(err)
	s.record(key, state, status, err, started)

	delivery.DeliveriesCompleted.WithLabelValues(string(status)).Inc()
	delivery.DeliveryDuration.Observe(time.Since(started).Seconds())

	if err == nil {
		writeJSON(w, httpCode, map[string]string{"status": string(status)})
		return
	}
	writeJSON(w, httpCode, map[string]string{
		"status": string(status),
		"error":  err.Error(),
	})
}

// classifyOutcome maps a terminal delivery error onto a journal status and
// an HTTP response code.
func classifyOutcome(err error) (domain.DeliveryStatus, int) {
	if err == nil {
		return domain.DeliveryStatusDelivered, http.StatusOK
	}

	var (
		exh  *delivery.ExhaustedError
		nr   *delivery.NotRetriedError
		cerr *delivery.CancelledError
		berr *delivery.BackupError
	)
	switch {
	case errors.As(err, &exh):
		return domain.DeliveryStatusExhausted, http.StatusGatewayTimeout
	case errors.As(err, &nr):
		return domain.DeliveryStatusRejected, http.StatusBadGateway
	case errors.As(err, &cerr):
		return domain.DeliveryStatusCancelled, http.StatusServiceUnavailable
	case errors.As(err, &berr):
		return domain.DeliveryStatusFailed, http.StatusInternalServerError
	default:
		return domain.DeliveryStatusFailed, http.StatusInternalServerError
	}
}

// record writes the journal entry for a finished sequence. Journal failures
// are logged, never surfaced to the payload sender.
func (s *Server) record(key string, state *domain.DeliveryState, status domain.DeliveryStatus, derr error, started time.Time) {
	rec := &domain.DeliveryRecord{
		ID:           uuid.New().String(),
		PayloadKey:   key,
		Status:       status,
		AttemptsUsed: state.AttemptsUsed(),
		StartedAt:    started,
		FinishedAt:   time.Now(),
	}
	if derr != nil {
		rec.Error = derr.Error()

		var exh *delivery.ExhaustedError
		var nr *delivery.NotRetriedError
		switch {
		case errors.As(derr, &exh):
			rec.InternalStatus = exh.InternalStatus
			rec.TransportStatus = exh.TransportStatus
		case errors.As(derr, &nr):
			rec.InternalStatus = nr.InternalStatus
			rec.TransportStatus = nr.TransportStatus
		}
	}

	// Journal writes must not block or fail intake; use a detached context.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.journal.Record(ctx, rec); err != nil {
		s.log.Error("failed to journal delivery", "key", key, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
