package cleanup

import (
	"filedrop/internal/core/port"
	"log/slog"
	"time"
)

type cleanupService struct {
	uow       port.UnitOfWork
	storage   port.BlobStorage
	locker    port.Locker
	finalizer port.FinalizeService
	ttl       time.Duration
	logger    *slog.Logger
}

// NewCleanupService creates a new cleanup service.
// Sessions without activity for longer than ttl are reclaimed.
func NewCleanupService(
	uow port.UnitOfWork,
	storage port.BlobStorage,
	locker port.Locker,
	finalizer port.FinalizeService,
	ttl time.Duration,
	logger *slog.Logger,
) port.CleanupService {
	return &cleanupService{
		uow:       uow,
		storage:   storage,
		locker:    locker,
		finalizer: finalizer,
		ttl:       ttl,
		logger:    logger,
	}
}
