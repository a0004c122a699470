package upload

import (
	"errors"
	"filedrop/internal/core/domain"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// PatchUploadV1 appends a chunk at Upload-Offset
func (h *HandlerV1) PatchUploadV1(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.resolve(w, r)
	if !ok {
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != OffsetContentType {
		http.Error(w, "content type must be "+OffsetContentType, http.StatusUnsupportedMediaType)
		return
	}

	offset, err := strconv.ParseInt(r.Header.Get(HeaderUploadOffset), 10, 64)
	if err != nil || offset < 0 {
		http.Error(w, "missing or invalid Upload-Offset", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "uploadID")
	session, err := h.uploadService.AppendChunk(r.Context(), *identity, id, offset, r.Body)
	if err != nil {
		if session != nil && errors.Is(err, domain.ErrOffsetMismatch) {
			w.Header().Set(HeaderUploadOffset, strconv.FormatInt(session.Offset, 10))
		}
		h.writeError(w, err)
		return
	}

	w.Header().Set(HeaderUploadOffset, strconv.FormatInt(session.Offset, 10))
	w.WriteHeader(http.StatusNoContent)
}
