package chi_test

import (
	"encoding/json"
	"filedrop/internal/adapters/handlers/http/chi"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	// Arrange
	discardLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := chi.NewRouter(discardLogger, nil, nil, nil, chi.RouterConfig{Env: "prod"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	// Act
	h.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	var resp chi.HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
}
