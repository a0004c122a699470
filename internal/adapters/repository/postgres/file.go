package postgres

import (
	"context"
	"database/sql"
	"errors"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const foreignKeyViolation = "23503"

type sqlFileRepository struct {
	db SQLQuerier
}

// NewSqlFileRepository creates sqlFileRepository that implements port.FileRepository
func NewSqlFileRepository(db SQLQuerier) port.FileRepository {
	return &sqlFileRepository{
		db: db,
	}
}

// Create inserts a file record. A record with the same id already present
// yields domain.ErrAlreadyExists and leaves it untouched, a folder id that
// no longer exists yields domain.ErrFolderNotFound.
func (s *sqlFileRepository) Create(ctx context.Context, file domain.FileRecord) error {
	query := `INSERT INTO files (id, user_id, folder_id, filename, search_text, size, mime_type)
              VALUES ($1, $2, $3, $4, $5, $6, $7)
              ON CONFLICT (id) DO NOTHING`

	result, err := s.db.ExecContext(ctx, query,
		file.ID,
		file.OwnerUserID,
		file.FolderID,
		file.Filename,
		file.SearchText,
		file.Size,
		file.MimeType,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation && pqErr.Constraint == "files_folder_id_fkey" {
			return fmt.Errorf("error inserting file: %w", domain.ErrFolderNotFound)
		}
		return fmt.Errorf("error inserting file: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

// FindByID returns a file by id
func (s *sqlFileRepository) FindByID(ctx context.Context, id string) (*domain.FileRecord, error) {
	query := `SELECT id, user_id, folder_id, filename, search_text, size, mime_type, created_at, updated_at
              FROM files WHERE id = $1`

	var row dbFile
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&row.ID,
		&row.UserID,
		&row.FolderID,
		&row.Filename,
		&row.SearchText,
		&row.Size,
		&row.MimeType,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFileNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

type dbFile struct {
	ID         string         `db:"id"`
	UserID     string         `db:"user_id"`
	FolderID   sql.NullString `db:"folder_id"`
	Filename   string         `db:"filename"`
	SearchText string         `db:"search_text"`
	Size       int64          `db:"size"`
	MimeType   string         `db:"mime_type"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

// ToDomain converts db obj to domain
func (f *dbFile) ToDomain() *domain.FileRecord {
	return &domain.FileRecord{
		ID:          f.ID,
		OwnerUserID: f.UserID,
		FolderID:    nullStringPtr(f.FolderID),
		Filename:    f.Filename,
		Size:        f.Size,
		MimeType:    f.MimeType,
		SearchText:  f.SearchText,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}
