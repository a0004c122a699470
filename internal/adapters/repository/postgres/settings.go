package postgres

import (
	"context"
	"filedrop/internal/core/port"
	"fmt"
)

type sqlSettingsRepository struct {
	db SQLQuerier
}

// NewSqlSettingsRepository creates the app_settings backed repository
func NewSqlSettingsRepository(db SQLQuerier) port.SettingsRepository {
	return &sqlSettingsRepository{db: db}
}

// GetAll returns every stored setting
func (s *sqlSettingsRepository) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM app_settings`)
	if err != nil {
		return nil, fmt.Errorf("error reading settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// InsertMissing stores defaults for absent keys
func (s *sqlSettingsRepository) InsertMissing(ctx context.Context, defaults map[string]string) error {
	query := `INSERT INTO app_settings (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`
	for key, value := range defaults {
		if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
			return fmt.Errorf("error inserting setting %s: %w", key, err)
		}
	}
	return nil
}

// Set upserts a setting
func (s *sqlSettingsRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO app_settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("error saving setting %s: %w", key, err)
	}
	return nil
}
