package file

import (
	"filedrop/internal/core/port"
	"log/slog"

	"github.com/go-chi/chi/v5"
)

// HandlerV1 is the handler that serves finalized files
type HandlerV1 struct {
	fileService port.FileService
	logger      *slog.Logger
}

// NewFileHandlerV1 creates HandlerV1
func NewFileHandlerV1(fileService port.FileService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		fileService: fileService,
		logger:      logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/{slug}", h.GetFileV1)

	return router
}
