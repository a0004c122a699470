package postgres

import (
	"context"
	"database/sql"
	"errors"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
)

type sqlUserRepository struct {
	db SQLQuerier
}

// NewSqlUserRepository creates the users repository
func NewSqlUserRepository(db SQLQuerier) port.UserRepository {
	return &sqlUserRepository{db: db}
}

// FindIDByAPIKey resolves the owner of an api key
func (s *sqlUserRepository) FindIDByAPIKey(ctx context.Context, apiKey string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE api_key = $1`, apiKey).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrInvalidAPIKey
		}
		return "", err
	}
	return id, nil
}
