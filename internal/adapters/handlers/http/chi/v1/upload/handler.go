package upload

import (
	"errors"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const (
	TusVersion   = "1.0.0"
	TusExtension = "creation"

	HeaderTusResumable   = "Tus-Resumable"
	HeaderTusVersion     = "Tus-Version"
	HeaderTusExtension   = "Tus-Extension"
	HeaderTusMaxSize     = "Tus-Max-Size"
	HeaderUploadLength   = "Upload-Length"
	HeaderUploadOffset   = "Upload-Offset"
	HeaderUploadMetadata = "Upload-Metadata"

	OffsetContentType = "application/offset+octet-stream"
)

// HandlerV1 is the handler for the resumable upload routes
type HandlerV1 struct {
	uploadService port.UploadService
	identity      port.IdentityResolver
	logger        *slog.Logger
}

// NewUploadHandlerV1 creates HandlerV1
func NewUploadHandlerV1(service port.UploadService, identity port.IdentityResolver, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		uploadService: service,
		identity:      identity,
		logger:        logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(TusResumable)

	router.Options("/", h.OptionsV1)
	router.Post("/", h.CreateUploadV1)
	router.Head("/{uploadID}", h.HeadUploadV1)
	router.Patch("/{uploadID}", h.PatchUploadV1)

	return router
}

// TusResumable rejects requests speaking another protocol version.
// OPTIONS is exempt so clients can discover the server version.
func TusResumable(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderTusResumable, TusVersion)
		if r.Method != http.MethodOptions && r.Header.Get(HeaderTusResumable) != TusVersion {
			w.Header().Set(HeaderTusVersion, TusVersion)
			http.Error(w, "unsupported Tus-Resumable version", http.StatusPreconditionFailed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *HandlerV1) resolve(w http.ResponseWriter, r *http.Request) (*domain.Identity, bool) {
	identity, err := h.identity.Resolve(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	return identity, true
}

func (h *HandlerV1) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrQuotaExceeded),
		errors.Is(err, domain.ErrFileCountLimit),
		errors.Is(err, domain.ErrFileTypeNotAllowed):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrFileSizeTooBig):
		http.Error(w, "file size too big", http.StatusRequestEntityTooLarge)
	case errors.Is(err, domain.ErrOffsetMismatch):
		http.Error(w, "upload offset mismatch", http.StatusConflict)
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, "upload not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrFolderNotFound):
		http.Error(w, "folder not found", http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidUploadRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrLockUnavailable):
		http.Error(w, "upload is locked", http.StatusLocked)
	default:
		h.logger.Error("upload request failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
