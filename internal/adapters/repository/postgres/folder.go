package postgres

import (
	"context"
	"database/sql"
	"errors"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
)

type sqlFolderRepository struct {
	db SQLQuerier
}

// NewSqlFolderRepository creates sqlFolderRepository that implements port.FolderRepository
func NewSqlFolderRepository(db SQLQuerier) port.FolderRepository {
	return &sqlFolderRepository{
		db: db,
	}
}

// FindByID returns a folder by id. Inside a transaction the row stays share locked
// until commit, so the folder cannot be deleted under a file insert.
func (s *sqlFolderRepository) FindByID(ctx context.Context, id string) (*domain.Folder, error) {
	query := `SELECT id, user_id, name, created_at FROM folders WHERE id = $1 FOR SHARE`

	var folder domain.Folder
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&folder.ID,
		&folder.UserID,
		&folder.Name,
		&folder.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFolderNotFound
		}
		return nil, err
	}
	return &folder, nil
}
