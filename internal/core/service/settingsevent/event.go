package settingsevent

import (
	"filedrop/internal/core/port"
	"log/slog"
)

type settingsEventService struct {
	provider port.SettingsProvider
	logger   *slog.Logger
}

// NewSettingsEventService creates a handler that drops cached settings on change notifications
func NewSettingsEventService(provider port.SettingsProvider, logger *slog.Logger) port.MessageService {
	return &settingsEventService{
		provider: provider,
		logger:   logger,
	}
}
