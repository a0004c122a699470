package file

import (
	"context"
	"errors"
	"filedrop/internal/core/domain"
	"io"
)

// GetFile looks up a finalized file and opens its blob.
// A record whose blob is gone is reported as domain.ErrFileNotFound.
func (f *fileService) GetFile(ctx context.Context, id string) (*domain.FileRecord, io.ReadCloser, error) {
	record, err := f.uow.FileRepo().FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	content, err := f.storage.Open(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			f.logger.Error("file record without blob", "id", id)
		}
		return nil, nil, err
	}
	return record, content, nil
}
