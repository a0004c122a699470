package port

import (
	"context"
	"filedrop/internal/core/domain"
)

// SettingsRepository reads and writes raw setting values
type SettingsRepository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	// InsertMissing stores the given defaults for keys that have no row
	InsertMissing(ctx context.Context, defaults map[string]string) error
	Set(ctx context.Context, key, value string) error
}

// SettingsProvider serves cached settings
type SettingsProvider interface {
	Get(ctx context.Context) (domain.Settings, error)
	Invalidate()
}
