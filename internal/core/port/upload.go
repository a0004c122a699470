package port

import (
	"context"
	"filedrop/internal/core/domain"
	"io"
)

// CreateUploadRequest describes a new resumable upload
type CreateUploadRequest struct {
	Size     int64
	Filename string
	MimeType string
	FolderID *string
}

// UploadService is the resumable upload endpoint core
type UploadService interface {
	CreateUpload(ctx context.Context, identity domain.Identity, req CreateUploadRequest) (*domain.UploadSession, error)
	GetUpload(ctx context.Context, identity domain.Identity, id string) (*domain.UploadSession, error)
	AppendChunk(ctx context.Context, identity domain.Identity, id string, offset int64, body io.Reader) (*domain.UploadSession, error)
	MaxSize(ctx context.Context) (int64, error)
}

// FinalizeService commits a fully received session to the catalog
type FinalizeService interface {
	Finalize(ctx context.Context, session domain.UploadSession) error
}

// DirectUploadRequest is a single shot upload authenticated by api key
type DirectUploadRequest struct {
	APIKey   string
	Filename string
	MimeType string
	Size     int64
	Body     io.Reader
}

// DirectUploadService handles single request uploads
type DirectUploadService interface {
	Upload(ctx context.Context, req DirectUploadRequest) (string, error)
}
