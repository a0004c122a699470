package port

import (
	"context"
	"filedrop/internal/core/domain"
)

// FolderRepository reads the folders uploads are filed into
type FolderRepository interface {
	// FindByID returns domain.ErrFolderNotFound when no folder has the id
	FindByID(ctx context.Context, id string) (*domain.Folder, error)
}
