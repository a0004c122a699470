package direct

import (
	"filedrop/internal/core/port"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type directUploadService struct {
	users     port.UserRepository
	uow       port.UnitOfWork
	storage   port.BlobStorage
	settings  port.SettingsProvider
	publisher port.EventPublisher
	maxSize   int64
	baseURL   string
	logger    *slog.Logger
	newID     func() string
	now       func() time.Time
}

// NewDirectUploadService creates the api key authenticated single request upload service.
// baseURL is used for download links when no CDN url is configured.
func NewDirectUploadService(
	users port.UserRepository,
	uow port.UnitOfWork,
	storage port.BlobStorage,
	settings port.SettingsProvider,
	publisher port.EventPublisher,
	maxSize int64,
	baseURL string,
	logger *slog.Logger,
) port.DirectUploadService {
	return &directUploadService{
		users:     users,
		uow:       uow,
		storage:   storage,
		settings:  settings,
		publisher: publisher,
		maxSize:   maxSize,
		baseURL:   baseURL,
		logger:    logger,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}
