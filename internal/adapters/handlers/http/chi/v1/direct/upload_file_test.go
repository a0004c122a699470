package direct_test

import (
	"bytes"
	"encoding/json"
	"filedrop/internal/adapters/handlers/http/chi"
	directv1 "filedrop/internal/adapters/handlers/http/chi/v1/direct"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"filedrop/internal/core/service/direct"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("note", "ignored"))
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func newRouter(service *direct.MockDirectUploadService, maxSize int64) http.Handler {
	discardLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := directv1.NewDirectHandlerV1(service, maxSize, discardLogger)
	return chi.NewRouter(discardLogger, nil, handler, nil, chi.RouterConfig{Env: "prod"})
}

func TestUploadFileV1(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		// Arrange
		mockService := direct.NewMockDirectUploadService()
		var received []byte
		mockService.On("Upload", mock.Anything, mock.MatchedBy(func(req port.DirectUploadRequest) bool {
			return req.APIKey == "key-1" && req.Filename == "photo.png"
		})).Run(func(args mock.Arguments) {
			received, _ = io.ReadAll(args.Get(1).(port.DirectUploadRequest).Body)
		}).Return("https://cdn.example.com/api/f/abc", nil)

		h := newRouter(mockService, 1024)
		body, contentType := multipartBody(t, "file", "photo.png", []byte("png-bytes"))
		req := httptest.NewRequest(http.MethodPost, "/api/upload-file", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("x-api-key", "key-1")
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		var resp directv1.V1UploadFileResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "https://cdn.example.com/api/f/abc", resp.URL)
		assert.Equal(t, []byte("png-bytes"), received)
		mockService.AssertExpectations(t)
	})

	t.Run("missing api key", func(t *testing.T) {
		// Arrange
		mockService := direct.NewMockDirectUploadService()
		h := newRouter(mockService, 1024)
		body, contentType := multipartBody(t, "file", "a.txt", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/api/upload-file", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "API Key is required")
		mockService.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	})

	t.Run("missing file field", func(t *testing.T) {
		// Arrange
		mockService := direct.NewMockDirectUploadService()
		h := newRouter(mockService, 1024)
		body, contentType := multipartBody(t, "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/upload-file", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("x-api-key", "key-1")
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "File is required")
	})

	t.Run("body over ceiling", func(t *testing.T) {
		// Arrange
		mockService := direct.NewMockDirectUploadService()
		h := newRouter(mockService, 0)
		body, contentType := multipartBody(t, "file", "big.bin", bytes.Repeat([]byte("a"), 2<<20))
		req := httptest.NewRequest(http.MethodPost, "/api/upload-file", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("x-api-key", "key-1")
		w := httptest.NewRecorder()
		mockService.On("Upload", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				_, _ = io.ReadAll(args.Get(1).(port.DirectUploadRequest).Body)
			}).
			Return("", domain.ErrFileSizeTooBig)

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	errorCases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"invalid api key", domain.ErrInvalidAPIKey, http.StatusUnauthorized, "Invalid API Key"},
		{"blacklisted extension", domain.ErrFileTypeNotAllowed, http.StatusForbidden, "File type not allowed"},
		{"storage failure", assert.AnError, http.StatusInternalServerError, "Failed to upload file"},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mockService := direct.NewMockDirectUploadService()
			mockService.On("Upload", mock.Anything, mock.Anything).Return("", tt.err)
			h := newRouter(mockService, 1024)
			body, contentType := multipartBody(t, "file", "a.exe", []byte("x"))
			req := httptest.NewRequest(http.MethodPost, "/api/upload-file", body)
			req.Header.Set("Content-Type", contentType)
			req.Header.Set("x-api-key", "key-1")
			w := httptest.NewRecorder()

			// Act
			h.ServeHTTP(w, req)

			// Assert
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
