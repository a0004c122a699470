package port

import (
	"context"
	"filedrop/internal/core/domain"
)

// QuotaRepository is the per-user quota ledger
type QuotaRepository interface {
	// Get returns zero usage with no limits when the user has no row yet
	Get(ctx context.Context, userID string) (*domain.QuotaCounters, error)
	Increment(ctx context.Context, userID string, bytes, files int64) error
}
