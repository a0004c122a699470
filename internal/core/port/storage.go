package port

import (
	"context"
	"io"
)

// BlobStorage stores upload bytes keyed by upload id
type BlobStorage interface {
	Create(ctx context.Context, id string) error
	// Append truncates the blob to offset, then copies r to its end and syncs.
	// The returned count is valid even when err is not nil.
	Append(ctx context.Context, id string, offset int64, r io.Reader) (int64, error)
	// Write stores a complete blob in one go
	Write(ctx context.Context, id string, r io.Reader) (int64, error)
	Open(ctx context.Context, id string) (io.ReadCloser, error)
	Size(ctx context.Context, id string) (int64, error)
	Delete(ctx context.Context, id string) error
}
