package settings

import (
	"filedrop/internal/config"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

type settingsService struct {
	repo     port.SettingsRepository
	defaults config.SettingsDefaults
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	cached   *domain.Settings
	loadedAt time.Time
}

// NewSettingsService creates a cached SettingsProvider backed by repo
func NewSettingsService(repo port.SettingsRepository, defaults config.SettingsDefaults, logger *slog.Logger) port.SettingsProvider {
	return &settingsService{
		repo:     repo,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *settingsService) defaultValues() map[string]string {
	return map[string]string{
		domain.SettingBlacklistedExtensions:     s.defaults.BlacklistedExtensions,
		domain.SettingUploadFileMaxSize:         strconv.FormatInt(s.defaults.UploadMaxSize, 10),
		domain.SettingUploadFileChunkSize:       strconv.FormatInt(s.defaults.ChunkSize, 10),
		domain.SettingDefaultUserQuota:          strconv.FormatInt(s.defaults.DefaultUserQuota, 10),
		domain.SettingDefaultUserFileCountQuota: strconv.FormatInt(s.defaults.DefaultUserFileCountQuota, 10),
		domain.SettingCDNURL:                    s.defaults.CDNURL,
	}
}
