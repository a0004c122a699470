package chi

import (
	"encoding/json"
	"filedrop/internal/adapters/handlers/http/chi/v1/direct"
	"filedrop/internal/adapters/handlers/http/chi/v1/file"
	"filedrop/internal/adapters/handlers/http/chi/v1/upload"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig holds the transport level knobs of the router
type RouterConfig struct {
	UploadBasePath string
	RequestTimeout time.Duration
	Env            string
}

// NewRouter builds http.Handler with chi
func NewRouter(logger *slog.Logger, uploadHandler *upload.HandlerV1, directHandler *direct.HandlerV1, fileHandler *file.HandlerV1, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	//handle requestID to facilitate debug (X-Request-ID)
	//It fetches from request if exists, or creates it
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	if cfg.Env != "prod" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
			AllowedMethods: []string{"GET", "POST", "HEAD", "PATCH", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Api-Key",
				"Tus-Resumable", "Upload-Length", "Upload-Offset", "Upload-Metadata",
			},
			ExposedHeaders: []string{
				"Location", "Tus-Resumable", "Tus-Version", "Tus-Extension", "Tus-Max-Size",
				"Upload-Length", "Upload-Offset", "Upload-Metadata",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	basePath := cfg.UploadBasePath
	if basePath == "" {
		basePath = "/api/upload"
	}
	if uploadHandler != nil {
		r.Mount(basePath, uploadHandler.Routes())
	}
	if directHandler != nil {
		r.Mount("/api/upload-file", directHandler.Routes())
	}
	if fileHandler != nil {
		r.Mount("/api/f", fileHandler.Routes())
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	})

	return r
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
