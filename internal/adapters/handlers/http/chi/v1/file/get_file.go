package file

import (
	"encoding/base64"
	"errors"
	"filedrop/internal/core/domain"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// GetFileV1 streams a file addressed by the base64url encoding of its id.
// The content never changes once finalized, so responses are cacheable forever.
func (h *HandlerV1) GetFileV1(w http.ResponseWriter, r *http.Request) {
	decoded, err := base64.RawURLEncoding.DecodeString(chi.URLParam(r, "slug"))
	if err != nil {
		http.Error(w, "invalid file link", http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(string(decoded))
	if err != nil {
		http.Error(w, "invalid file link", http.StatusBadRequest)
		return
	}

	record, content, err := h.fileService.GetFile(r.Context(), id.String())
	switch {
	case errors.Is(err, domain.ErrFileNotFound):
		http.Error(w, "file not found", http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("error getting file", "id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer content.Close()

	mimeType := record.MimeType
	if mimeType == "" {
		mimeType = domain.DefaultMimeType
	}
	disposition := mime.FormatMediaType("inline", map[string]string{"filename": record.Filename})
	if disposition == "" {
		disposition = "inline"
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(record.Size, 10))
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'none'")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, content); err != nil {
		h.logger.Warn("file transfer interrupted", "id", id, "error", err)
	}
}
