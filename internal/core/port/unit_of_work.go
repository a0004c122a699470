package port

import "context"

// UnitOfWork groups the session, catalog and quota writes of one finalize.
// Repositories obtained inside Execute share its transaction; a nested Execute joins it.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(uow UnitOfWork) error) error
	UploadSessionRepo() UploadSessionRepository
	FileRepo() FileRepository
	QuotaRepo() QuotaRepository
	FolderRepo() FolderRepository
}
