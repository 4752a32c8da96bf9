package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vietddude/courier/internal/core/domain"
	"github.com/vietddude/courier/internal/delivery"
	"github.com/vietddude/courier/internal/infra/backup"
	"github.com/vietddude/courier/internal/infra/journal"
	"github.com/vietddude/courier/internal/infra/remote"
)

type scriptedUploader struct {
	mu     sync.Mutex
	script []error
	calls  int
}

func (u *scriptedUploader) Upload(ctx context.Context, r io.Reader) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, _ = io.Copy(io.Discard, r)
	i := u.calls
	u.calls++
	if i >= len(u.script) {
		i = len(u.script) - 1
	}
	if i < 0 {
		return nil
	}
	return u.script[i]
}

type zeroDelay struct{}

func (zeroDelay) Delay(attemptsLeft int) time.Duration { return 0 }

func newTestServer(up remote.Uploader, maxAttempts int) (*Server, *journal.MemoryRepo, *backup.MemoryStore) {
	store := backup.NewMemoryStore()
	jrnl := journal.NewMemoryRepo()
	coord := delivery.NewCoordinator(store, zeroDelay{}, delivery.Config{MaxAttempts: maxAttempts}, nil, nil)
	srv := NewServer(coord, up, jrnl, nil, 0, nil)
	return srv, jrnl, store
}

func doIngest(t *testing.T, srv *Server, key, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/payloads/"+key, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestIngest_Delivered(t *testing.T) {
	up := &scriptedUploader{}
	srv, jrnl, store := newTestServer(up, 3)

	rec := doIngest(t, srv, "instance-7", "payload bytes")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	counts, err := jrnl.CountByStatus(context.Background())
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if counts[domain.DeliveryStatusDelivered] != 1 {
		t.Errorf("expected 1 delivered record, got %d", counts[domain.DeliveryStatusDelivered])
	}
	if store.Len() != 0 {
		t.Errorf("expected backup to be removed, %d left", store.Len())
	}

	recs, _ := jrnl.Recent(context.Background(), 1)
	if len(recs) != 1 || recs[0].AttemptsUsed != 1 {
		t.Errorf("expected 1 attempt used, got %+v", recs)
	}
}

func TestIngest_HierarchicalKey(t *testing.T) {
	up := &scriptedUploader{}
	srv, jrnl, _ := newTestServer(up, 3)

	rec := doIngest(t, srv, "study-1/series-2/instance-3", "payload")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	recs, _ := jrnl.Recent(context.Background(), 1)
	if len(recs) != 1 || recs[0].PayloadKey != "study-1/series-2/instance-3" {
		t.Errorf("expected full key in journal, got %+v", recs)
	}
}

func TestIngest_RejectedByStatusFilter(t *testing.T) {
	up := &scriptedUploader{script: []error{
		&remote.UploadError{Status: 42, HTTPStatus: http.StatusConflict},
	}}
	srv, jrnl, _ := newTestServer(up, 5)

	rec := doIngest(t, srv, "instance-8", "payload")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	recs, _ := jrnl.Recent(context.Background(), 1)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].Status != domain.DeliveryStatusRejected {
		t.Errorf("expected rejected, got %s", recs[0].Status)
	}
	if recs[0].TransportStatus != http.StatusConflict || recs[0].InternalStatus != 42 {
		t.Errorf("status codes not carried: %+v", recs[0])
	}
	if recs[0].AttemptsUsed != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", recs[0].AttemptsUsed)
	}
}

func TestIngest_Exhausted(t *testing.T) {
	up := &scriptedUploader{script: []error{
		&remote.UploadError{HTTPStatus: http.StatusInternalServerError},
	}}
	srv, jrnl, _ := newTestServer(up, 2)

	rec := doIngest(t, srv, "instance-9", "payload")
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}

	recs, _ := jrnl.Recent(context.Background(), 1)
	if len(recs) != 1 || recs[0].Status != domain.DeliveryStatusExhausted {
		t.Fatalf("expected exhausted record, got %+v", recs)
	}
	if recs[0].AttemptsUsed != 2 {
		t.Errorf("expected 2 attempts used, got %d", recs[0].AttemptsUsed)
	}
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(&scriptedUploader{}, 1)
	srv.checks = map[string]Check{
		"backup": func(ctx context.Context) error { return nil },
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	srv.checks["journal"] = func(ctx context.Context) error { return errors.New("down") }
	rec = httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when a check fails, got %d", rec.Code)
	}
}
