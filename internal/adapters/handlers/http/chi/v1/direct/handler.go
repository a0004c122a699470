package direct

import (
	"filedrop/internal/core/port"
	"log/slog"

	"github.com/go-chi/chi/v5"
)

// HeaderAPIKey carries the caller api key
const HeaderAPIKey = "x-api-key"

// multipart framing allowance on top of the file ceiling
const formOverhead = 1 << 20

// HandlerV1 is the handler for single request uploads
type HandlerV1 struct {
	directService port.DirectUploadService
	maxSize       int64
	logger        *slog.Logger
}

// NewDirectHandlerV1 creates HandlerV1
func NewDirectHandlerV1(service port.DirectUploadService, maxSize int64, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		directService: service,
		maxSize:       maxSize,
		logger:        logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", h.UploadFileV1)

	return router
}
