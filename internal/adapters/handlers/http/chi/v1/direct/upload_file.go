package direct

import (
	"encoding/json"
	"errors"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"io"
	"mime/multipart"
	"net/http"
)

// V1UploadFileResponse is the response to a direct upload
type V1UploadFileResponse struct {
	URL string `json:"url"`
}

// UploadFileV1 stores the multipart "file" field in a single request
func (h *HandlerV1) UploadFileV1(w http.ResponseWriter, r *http.Request) {
	apiKey := r.Header.Get(HeaderAPIKey)
	if apiKey == "" {
		http.Error(w, "API Key is required", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+formOverhead)
	part, err := filePart(r)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "File is required", http.StatusBadRequest)
		return
	}
	defer part.Close()

	url, err := h.directService.Upload(r.Context(), port.DirectUploadRequest{
		APIKey:   apiKey,
		Filename: part.FileName(),
		MimeType: part.Header.Get("Content-Type"),
		Size:     -1,
		Body:     part,
	})

	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		http.Error(w, "API Key is required", http.StatusUnauthorized)
		return
	case errors.Is(err, domain.ErrInvalidAPIKey):
		http.Error(w, "Invalid API Key", http.StatusUnauthorized)
		return
	case errors.Is(err, domain.ErrInvalidUploadRequest):
		http.Error(w, "File is required", http.StatusBadRequest)
		return
	case errors.Is(err, domain.ErrFileTypeNotAllowed):
		http.Error(w, "File type not allowed", http.StatusForbidden)
		return
	case errors.Is(err, domain.ErrFileSizeTooBig), errors.As(err, &maxBytesErr):
		http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	case err != nil:
		h.logger.Error("direct upload failed", "error", err)
		http.Error(w, "Failed to upload file", http.StatusInternalServerError)
		return
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(V1UploadFileResponse{URL: url}); err != nil {
			h.logger.Error("error encoding response", "error", err)
		}
	}
}

// filePart streams the form until the "file" field without buffering it
func filePart(r *http.Request) (*multipart.Part, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return nil, errors.New("no file field")
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() == "file" && part.FileName() != "" {
			return part, nil
		}
		part.Close()
	}
}
