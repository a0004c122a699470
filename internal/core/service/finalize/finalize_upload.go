package finalize

import (
	"context"
	"errors"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"fmt"
)

// Finalize inserts the file record, charges the owner's quota and drops the session
// in one transaction. Running it again for an already committed session only removes
// a leftover session row and does not charge the quota twice. A target folder deleted
// since admission files the upload into the root folder.
func (f *finalizeService) Finalize(ctx context.Context, session domain.UploadSession) error {
	if !session.Complete() {
		return fmt.Errorf("%w: %d of %d bytes", domain.ErrUploadIncomplete, session.Offset, session.Size)
	}

	record := domain.NewFileRecord(session)
	alreadyFinalized := false

	err := f.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		if err := f.resolveFolder(ctx, uow, &record); err != nil {
			return err
		}
		createErr := uow.FileRepo().Create(ctx, record)
		switch {
		case errors.Is(createErr, domain.ErrAlreadyExists):
			alreadyFinalized = true
		case createErr != nil:
			return createErr
		default:
			if err := uow.QuotaRepo().Increment(ctx, record.OwnerUserID, record.Size, 1); err != nil {
				return err
			}
		}
		return uow.UploadSessionRepo().Delete(ctx, session.ID)
	})
	if err != nil {
		f.logger.Error("failed to finalize upload", "id", session.ID, "error", err)
		return fmt.Errorf("failed to finalize upload %s: %w", session.ID, err)
	}

	if alreadyFinalized {
		f.logger.Warn("upload was already finalized", "id", session.ID)
		return nil
	}
	f.logger.Info("upload finalized", "id", session.ID, "owner", record.OwnerUserID, "size", record.Size)

	if f.publisher != nil {
		event := domain.UploadFinishedEvent{
			FileID:      record.ID,
			OwnerUserID: record.OwnerUserID,
			Filename:    record.Filename,
			MimeType:    record.MimeType,
			Size:        record.Size,
			FinishedAt:  f.now(),
		}
		if err := f.publisher.PublishUploadFinished(ctx, event); err != nil {
			f.logger.Warn("failed to publish upload finished event", "id", record.ID, "error", err)
		}
	}
	return nil
}

// resolveFolder moves record to the root folder when its folder is gone or foreign.
// The folder row stays locked until the transaction ends.
func (f *finalizeService) resolveFolder(ctx context.Context, uow port.UnitOfWork, record *domain.FileRecord) error {
	if record.FolderID == nil {
		return nil
	}
	folder, err := uow.FolderRepo().FindByID(ctx, *record.FolderID)
	switch {
	case errors.Is(err, domain.ErrFolderNotFound):
	case err != nil:
		return err
	case folder.UserID == record.OwnerUserID:
		return nil
	}
	f.logger.Warn("target folder unavailable, filing upload at root", "id", record.ID, "folder", *record.FolderID)
	record.FolderID = nil
	return nil
}
