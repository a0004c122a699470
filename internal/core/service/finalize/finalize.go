package finalize

import (
	"filedrop/internal/core/port"
	"log/slog"
	"time"
)

type finalizeService struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewFinalizeService creates the service committing finished uploads.
// publisher may be nil when no broker is configured.
func NewFinalizeService(uow port.UnitOfWork, publisher port.EventPublisher, logger *slog.Logger) port.FinalizeService {
	return &finalizeService{
		uow:       uow,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}
