package upload

import (
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// CreateUploadV1 opens a new upload session
func (h *HandlerV1) CreateUploadV1(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.resolve(w, r)
	if !ok {
		return
	}

	size, err := strconv.ParseInt(r.Header.Get(HeaderUploadLength), 10, 64)
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: missing or invalid Upload-Length", domain.ErrInvalidUploadRequest))
		return
	}

	meta, err := ParseMetadata(r.Header.Get(HeaderUploadMetadata))
	if err != nil {
		h.writeError(w, err)
		return
	}

	req := port.CreateUploadRequest{
		Size:     size,
		Filename: meta["filename"],
		MimeType: meta["filetype"],
	}
	if folderID := meta["folderId"]; folderID != "" {
		req.FolderID = &folderID
	}

	session, err := h.uploadService.CreateUpload(r.Context(), *identity, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Location", strings.TrimRight(r.URL.Path, "/")+"/"+session.ID)
	w.Header().Set(HeaderUploadOffset, strconv.FormatInt(session.Offset, 10))
	w.WriteHeader(http.StatusCreated)
}
