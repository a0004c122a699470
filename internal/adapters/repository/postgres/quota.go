package postgres

import (
	"context"
	"database/sql"
	"errors"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"fmt"
)

type sqlQuotaRepository struct {
	db SQLQuerier
}

// NewSqlQuotaRepository creates the user_quota backed ledger
func NewSqlQuotaRepository(db SQLQuerier) port.QuotaRepository {
	return &sqlQuotaRepository{db: db}
}

// Get returns the user's counters, zero valued when no row exists
func (s *sqlQuotaRepository) Get(ctx context.Context, userID string) (*domain.QuotaCounters, error) {
	query := `SELECT used_quota, file_count, quota, file_count_quota FROM user_quota WHERE user_id = $1`

	counters := domain.QuotaCounters{UserID: userID}
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&counters.UsedQuotaBytes,
		&counters.FileCount,
		&counters.QuotaBytes,
		&counters.FileCountQuota,
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("error reading quota: %w", err)
	}
	return &counters, nil
}

// Increment adds to the usage counters, clamping at zero
func (s *sqlQuotaRepository) Increment(ctx context.Context, userID string, bytes, files int64) error {
	query := `
		INSERT INTO user_quota (user_id, used_quota, file_count)
		VALUES ($1, GREATEST(0, $2::BIGINT), GREATEST(0, $3::BIGINT))
		ON CONFLICT (user_id) DO UPDATE SET
			used_quota = GREATEST(0, user_quota.used_quota + $2::BIGINT),
			file_count = GREATEST(0, user_quota.file_count + $3::BIGINT),
			updated_at = now()`

	if _, err := s.db.ExecContext(ctx, query, userID, bytes, files); err != nil {
		return fmt.Errorf("error incrementing quota: %w", err)
	}
	return nil
}
