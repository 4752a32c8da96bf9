package journal

import (
	"context"
	"sync"

	"github.com/vietddude/courier/internal/core/domain"
)

// MemoryRepo is an in-process journal for tests and database-less runs.
type MemoryRepo struct {
	records []*domain.DeliveryRecord
	mu      sync.RWMutex
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Record(ctx context.Context, rec *domain.DeliveryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.records = append(r.records, &cp)
	return nil
}

func (r *MemoryRepo) CountByStatus(ctx context.Context) (map[domain.DeliveryStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[domain.DeliveryStatus]int)
	for _, rec := range r.records {
		counts[rec.Status]++
	}
	return counts, nil
}

func (r *MemoryRepo) Recent(ctx context.Context, limit int) ([]*domain.DeliveryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := len(r.records)
	if limit > n {
		limit = n
	}
	out := make([]*domain.DeliveryRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}
