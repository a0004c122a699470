package port

import (
	"context"
	"filedrop/internal/core/domain"
	"io"
)

// FileRepository is the file catalog
type FileRepository interface {
	// Create inserts the record, returning domain.ErrAlreadyExists when the id is taken
	Create(ctx context.Context, file domain.FileRecord) error
	FindByID(ctx context.Context, id string) (*domain.FileRecord, error)
}

// FileService serves finalized files
type FileService interface {
	// GetFile returns the record and its content, the caller closes the reader
	GetFile(ctx context.Context, id string) (*domain.FileRecord, io.ReadCloser, error)
}
