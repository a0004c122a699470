package upload_test

import (
	"filedrop/internal/adapters/auth/jwt"
	"filedrop/internal/adapters/handlers/http/chi"
	uploadv1 "filedrop/internal/adapters/handlers/http/chi/v1/upload"
	uploadservice "filedrop/internal/core/service/upload"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	basePath = "/api/upload"
	userID   = "user-1"
)

var secret = []byte("test-secret")

type fixture struct {
	service *uploadservice.MockUploadService
	router  http.Handler
	token   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	discardLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := uploadservice.NewMockUploadService()
	handler := uploadv1.NewUploadHandlerV1(service, jwt.NewResolver(secret, "session"), discardLogger)
	router := chi.NewRouter(discardLogger, handler, nil, nil, chi.RouterConfig{UploadBasePath: basePath, Env: "prod"})

	token, err := jwt.GenerateToken(userID, secret, time.Hour)
	require.NoError(t, err)

	return &fixture{service: service, router: router, token: token}
}

func (f *fixture) request(method, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+f.token)
	req.Header.Set(uploadv1.HeaderTusResumable, uploadv1.TusVersion)
	for k, v := range headers {
		if v == "" {
			req.Header.Del(k)
			continue
		}
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}
