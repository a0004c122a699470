package postgres

import (
	"context"
	"database/sql"
	"errors"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"time"
)

type sqlUploadSessionRepository struct {
	db SQLQuerier
}

// NewSQLUploadSessionRepository Creates a new sqlUploadSessionRepository
func NewSQLUploadSessionRepository(db SQLQuerier) port.UploadSessionRepository {
	return &sqlUploadSessionRepository{db: db}
}

const uploadSessionColumns = `id, size, "offset", filename, mime_type, owner_user_id, folder_id, created_at, updated_at`

// Get returns a session by id
func (s *sqlUploadSessionRepository) Get(ctx context.Context, id string) (*domain.UploadSession, error) {
	query := `SELECT ` + uploadSessionColumns + ` FROM upload_sessions WHERE id = $1`

	row, err := scanUploadSession(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// Set upserts a session
func (s *sqlUploadSessionRepository) Set(ctx context.Context, session domain.UploadSession) error {
	query := `
		INSERT INTO upload_sessions (
			id, size, "offset", filename, mime_type, owner_user_id, folder_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			size = EXCLUDED.size,
			"offset" = EXCLUDED."offset",
			filename = EXCLUDED.filename,
			mime_type = EXCLUDED.mime_type,
			owner_user_id = EXCLUDED.owner_user_id,
			folder_id = EXCLUDED.folder_id,
			updated_at = now()`

	_, err := s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.Size,
		session.Offset,
		session.Metadata.Filename,
		session.Metadata.MimeType,
		session.Metadata.OwnerUserID,
		session.Metadata.FolderID,
	)
	return err
}

// Delete removes a session, missing sessions are not an error
func (s *sqlUploadSessionRepository) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM upload_sessions WHERE id = $1`, id)
	return err
}

// List returns every session id
func (s *sqlUploadSessionRepository) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM upload_sessions ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// AdvanceOffset moves the offset forward if nobody else did in between
func (s *sqlUploadSessionRepository) AdvanceOffset(ctx context.Context, id string, from, to int64) error {
	query := `UPDATE upload_sessions SET "offset" = $1, updated_at = now() WHERE id = $2 AND "offset" = $3`

	result, err := s.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM upload_sessions WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrSessionNotFound
		}
		return domain.ErrOffsetMismatch
	}

	return nil
}

// FindInactive returns sessions without activity since before
func (s *sqlUploadSessionRepository) FindInactive(ctx context.Context, before time.Time) ([]domain.UploadSession, error) {
	query := `SELECT ` + uploadSessionColumns + ` FROM upload_sessions WHERE updated_at < $1 ORDER BY updated_at`

	rows, err := s.db.QueryContext(ctx, query, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.UploadSession
	for rows.Next() {
		row, err := scanUploadSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUploadSession(sc rowScanner) (*dbUploadSession, error) {
	var row dbUploadSession
	err := sc.Scan(
		&row.ID,
		&row.Size,
		&row.Offset,
		&row.Filename,
		&row.MimeType,
		&row.OwnerUserID,
		&row.FolderID,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

type dbUploadSession struct {
	ID          string         `db:"id"`
	Size        int64          `db:"size"`
	Offset      int64          `db:"offset"`
	Filename    string         `db:"filename"`
	MimeType    string         `db:"mime_type"`
	OwnerUserID string         `db:"owner_user_id"`
	FolderID    sql.NullString `db:"folder_id"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// ToDomain converts db obj to domain
func (s *dbUploadSession) ToDomain() *domain.UploadSession {
	return &domain.UploadSession{
		ID:     s.ID,
		Size:   s.Size,
		Offset: s.Offset,
		Metadata: domain.UploadMetadata{
			Filename:    s.Filename,
			MimeType:    s.MimeType,
			OwnerUserID: s.OwnerUserID,
			FolderID:    nullStringPtr(s.FolderID),
		},
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
