package file

import (
	"filedrop/internal/core/port"
	"log/slog"
)

type fileService struct {
	uow     port.UnitOfWork
	storage port.BlobStorage
	logger  *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(uow port.UnitOfWork, storage port.BlobStorage, logger *slog.Logger) port.FileService {
	return &fileService{uow: uow, storage: storage, logger: logger}
}
