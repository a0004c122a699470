package port

import (
	"context"
	"filedrop/internal/core/domain"
	"time"
)

// UploadSessionRepository is the upload metadata store
type UploadSessionRepository interface {
	Get(ctx context.Context, id string) (*domain.UploadSession, error)
	// Set inserts or replaces the session
	Set(ctx context.Context, session domain.UploadSession) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
	// AdvanceOffset moves the offset from `from` to `to` only if it still equals `from`
	AdvanceOffset(ctx context.Context, id string, from, to int64) error
	FindInactive(ctx context.Context, before time.Time) ([]domain.UploadSession, error)
}
