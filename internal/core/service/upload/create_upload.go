package upload

import (
	"context"
	"errors"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"fmt"
	"strings"
)

// CreateUpload runs admission control and allocates a session with an empty blob.
// Nothing is allocated when admission fails, which includes a target folder
// the caller does not own. A zero length upload is finalized at once.
func (u *uploadService) CreateUpload(ctx context.Context, identity domain.Identity, req port.CreateUploadRequest) (*domain.UploadSession, error) {
	if identity.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if req.Size < 0 {
		return nil, fmt.Errorf("%w: negative upload length", domain.ErrInvalidUploadRequest)
	}
	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrInvalidUploadRequest)
	}

	settings, err := u.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	counters, err := u.uow.QuotaRepo().Get(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if err := counters.CheckAdmission(req.Size, settings.DefaultUserQuota, settings.DefaultUserFileCountQuota); err != nil {
		u.logger.Info("upload rejected", "user", identity.UserID, "reason", err)
		return nil, err
	}
	if settings.IsBlacklisted(filename) {
		u.logger.Info("upload rejected", "user", identity.UserID, "reason", domain.ErrFileTypeNotAllowed, "filename", filename)
		return nil, domain.ErrFileTypeNotAllowed
	}
	if settings.UploadMaxSize > 0 && req.Size > settings.UploadMaxSize {
		return nil, fmt.Errorf("%w: %d exceeds %d", domain.ErrFileSizeTooBig, req.Size, settings.UploadMaxSize)
	}

	folderID, err := u.ownedFolder(ctx, identity, req.FolderID)
	if err != nil {
		u.logger.Info("upload rejected", "user", identity.UserID, "reason", err)
		return nil, err
	}

	session := domain.UploadSession{
		ID:   u.newID(),
		Size: req.Size,
		Metadata: domain.UploadMetadata{
			Filename:    filename,
			MimeType:    req.MimeType,
			OwnerUserID: identity.UserID,
			FolderID:    folderID,
		},
	}

	if err := u.storage.Create(ctx, session.ID); err != nil {
		return nil, err
	}
	if err := u.uow.UploadSessionRepo().Set(ctx, session); err != nil {
		if delErr := u.storage.Delete(ctx, session.ID); delErr != nil {
			u.logger.Warn("failed to remove blob of unsaved session", "id", session.ID, "error", delErr)
		}
		return nil, err
	}
	u.logger.Info("upload created", "id", session.ID, "user", identity.UserID, "size", session.Size)

	if session.Complete() {
		if err := u.finalizer.Finalize(ctx, session); err != nil {
			return u.abandonEmpty(context.WithoutCancel(ctx), session, err)
		}
	}
	return &session, nil
}

// ownedFolder checks that the target folder exists and belongs to the caller.
// An empty id means the root folder.
func (u *uploadService) ownedFolder(ctx context.Context, identity domain.Identity, folderID *string) (*string, error) {
	if folderID == nil || *folderID == "" {
		return nil, nil
	}
	folder, err := u.uow.FolderRepo().FindByID(ctx, *folderID)
	if errors.Is(err, domain.ErrFolderNotFound) || (err == nil && folder.UserID != identity.UserID) {
		return nil, fmt.Errorf("%w: %s", domain.ErrFolderNotFound, *folderID)
	}
	if err != nil {
		return nil, err
	}
	return &folder.ID, nil
}

// abandonEmpty handles a zero length upload whose finalize failed. The client retries
// the creation, so the session and blob are dropped unless the file got committed anyway.
func (u *uploadService) abandonEmpty(ctx context.Context, session domain.UploadSession, finalizeErr error) (*domain.UploadSession, error) {
	_, err := u.uow.FileRepo().FindByID(ctx, session.ID)
	switch {
	case err == nil:
		u.logger.Warn("finalize reported an error after commit", "id", session.ID, "error", finalizeErr)
		return &session, nil
	case !errors.Is(err, domain.ErrFileNotFound):
		u.logger.Error("failed to check empty upload", "id", session.ID, "error", err)
		return nil, finalizeErr
	}

	if err := u.uow.UploadSessionRepo().Delete(ctx, session.ID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		u.logger.Error("failed to drop empty upload", "id", session.ID, "error", err)
		return nil, finalizeErr
	}
	if err := u.storage.Delete(ctx, session.ID); err != nil {
		u.logger.Warn("failed to remove blob of empty upload", "id", session.ID, "error", err)
	}
	return nil, finalizeErr
}
