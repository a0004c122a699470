package upload

import (
	"context"
	"filedrop/internal/core/domain"
)

// GetUpload returns the session so the client can resume from its offset.
// Sessions owned by someone else are reported as not found.
func (u *uploadService) GetUpload(ctx context.Context, identity domain.Identity, id string) (*domain.UploadSession, error) {
	if identity.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	session, err := u.uow.UploadSessionRepo().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Metadata.OwnerUserID != identity.UserID {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// MaxSize returns the configured upload ceiling
func (u *uploadService) MaxSize(ctx context.Context) (int64, error) {
	settings, err := u.settings.Get(ctx)
	if err != nil {
		return 0, err
	}
	return settings.UploadMaxSize, nil
}
