package direct

import (
	"context"
	"encoding/base64"
	"errors"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"fmt"
	"io"
	"strings"
)

// Upload stores the whole body and commits its file record in one go.
// Only the extension and the fixed size ceiling are checked; the quota counters
// are charged in the same transaction as the insert. It returns the download url.
func (d *directUploadService) Upload(ctx context.Context, req port.DirectUploadRequest) (string, error) {
	if req.APIKey == "" {
		return "", domain.ErrUnauthorized
	}
	userID, err := d.users.FindIDByAPIKey(ctx, req.APIKey)
	if err != nil {
		return "", err
	}

	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		return "", fmt.Errorf("%w: filename is required", domain.ErrInvalidUploadRequest)
	}

	settings, err := d.settings.Get(ctx)
	if err != nil {
		return "", err
	}
	if settings.IsBlacklisted(filename) {
		return "", domain.ErrFileTypeNotAllowed
	}
	if req.Size > d.maxSize {
		return "", domain.ErrFileSizeTooBig
	}

	id := d.newID()
	written, err := d.storage.Write(ctx, id, io.LimitReader(req.Body, d.maxSize+1))
	if err != nil {
		return "", err
	}
	if written > d.maxSize {
		d.removeBlob(ctx, id)
		return "", domain.ErrFileSizeTooBig
	}

	record := domain.NewFileRecord(domain.UploadSession{
		ID:     id,
		Size:   written,
		Offset: written,
		Metadata: domain.UploadMetadata{
			Filename:    filename,
			MimeType:    req.MimeType,
			OwnerUserID: userID,
		},
	})

	err = d.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		if err := uow.FileRepo().Create(ctx, record); err != nil {
			return err
		}
		return uow.QuotaRepo().Increment(ctx, userID, record.Size, 1)
	})
	if err != nil {
		d.removeBlob(ctx, id)
		if errors.Is(err, domain.ErrAlreadyExists) {
			return "", fmt.Errorf("file id collision: %w", err)
		}
		return "", err
	}
	d.logger.Info("direct upload stored", "id", id, "user", userID, "size", written)

	if d.publisher != nil {
		event := domain.UploadFinishedEvent{
			FileID:      record.ID,
			OwnerUserID: userID,
			Filename:    record.Filename,
			MimeType:    record.MimeType,
			Size:        record.Size,
			FinishedAt:  d.now(),
		}
		if err := d.publisher.PublishUploadFinished(ctx, event); err != nil {
			d.logger.Warn("failed to publish upload finished event", "id", id, "error", err)
		}
	}

	base := settings.CDNURL
	if base == "" {
		base = d.baseURL
	}
	return strings.TrimRight(base, "/") + "/api/f/" + base64.RawURLEncoding.EncodeToString([]byte(id)), nil
}

func (d *directUploadService) removeBlob(ctx context.Context, id string) {
	if err := d.storage.Delete(context.WithoutCancel(ctx), id); err != nil {
		d.logger.Warn("failed to remove blob", "id", id, "error", err)
	}
}
