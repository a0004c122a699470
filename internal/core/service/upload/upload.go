package upload

import (
	"filedrop/internal/core/port"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type uploadService struct {
	uow       port.UnitOfWork
	storage   port.BlobStorage
	locker    port.Locker
	settings  port.SettingsProvider
	finalizer port.FinalizeService
	logger    *slog.Logger
	lockWait  time.Duration
	newID     func() string
}

// NewUploadService creates the resumable upload service.
// lockWait bounds how long a chunk waits for another chunk of the same upload.
func NewUploadService(
	uow port.UnitOfWork,
	storage port.BlobStorage,
	locker port.Locker,
	settings port.SettingsProvider,
	finalizer port.FinalizeService,
	lockWait time.Duration,
	logger *slog.Logger,
) port.UploadService {
	return &uploadService{
		uow:       uow,
		storage:   storage,
		locker:    locker,
		settings:  settings,
		finalizer: finalizer,
		logger:    logger,
		lockWait:  lockWait,
		newID:     uuid.NewString,
	}
}
