package journal

import (
	"context"

	"github.com/vietddude/courier/internal/core/domain"
)

// Repository is the delivery audit trail: one record per completed
// delivery sequence.
type Repository interface {
	// Record persists the terminal outcome of a delivery sequence.
	Record(ctx context.Context, rec *domain.DeliveryRecord) error

	// CountByStatus returns the number of records per terminal status.
	CountByStatus(ctx context.Context) (map[domain.DeliveryStatus]int, error)

	// Recent returns the most recent records, newest first.
	Recent(ctx context.Context, limit int) ([]*domain.DeliveryRecord, error)
}
