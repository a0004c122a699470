package upload

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// HeadUploadV1 reports how many bytes of an upload were received
func (h *HandlerV1) HeadUploadV1(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.resolve(w, r)
	if !ok {
		return
	}

	session, err := h.uploadService.GetUpload(r.Context(), *identity, chi.URLParam(r, "uploadID"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set(HeaderUploadOffset, strconv.FormatInt(session.Offset, 10))
	w.Header().Set(HeaderUploadLength, strconv.FormatInt(session.Size, 10))
	w.Header().Set(HeaderUploadMetadata, EncodeMetadata(sessionMetadata(*session)))
	w.WriteHeader(http.StatusOK)
}
