package settings

import (
	"context"
	"filedrop/internal/core/domain"
	"fmt"
	"strconv"
)

// Get returns cached settings, reloading once the cache is older than the configured TTL.
// Missing rows are seeded with the configured defaults on load.
func (s *settingsService) Get(ctx context.Context) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && (s.defaults.CacheTTL <= 0 || s.now().Sub(s.loadedAt) < s.defaults.CacheTTL) {
		return *s.cached, nil
	}

	defaults := s.defaultValues()
	if err := s.repo.InsertMissing(ctx, defaults); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to seed settings: %w", err)
	}
	values, err := s.repo.GetAll(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := domain.Settings{
		BlacklistedExtensions:     domain.ParseExtensionList(s.value(values, defaults, domain.SettingBlacklistedExtensions)),
		UploadMaxSize:             s.intValue(values, domain.SettingUploadFileMaxSize, s.defaults.UploadMaxSize),
		ChunkSize:                 s.intValue(values, domain.SettingUploadFileChunkSize, s.defaults.ChunkSize),
		DefaultUserQuota:          s.intValue(values, domain.SettingDefaultUserQuota, s.defaults.DefaultUserQuota),
		DefaultUserFileCountQuota: s.intValue(values, domain.SettingDefaultUserFileCountQuota, s.defaults.DefaultUserFileCountQuota),
		CDNURL:                    s.value(values, defaults, domain.SettingCDNURL),
	}
	s.cached = &loaded
	s.loadedAt = s.now()
	return loaded, nil
}

// Invalidate drops the cache so the next Get reloads
func (s *settingsService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
	s.logger.Info("settings cache invalidated")
}

func (s *settingsService) value(values, defaults map[string]string, key string) string {
	if v, ok := values[key]; ok {
		return v
	}
	return defaults[key]
}

func (s *settingsService) intValue(values map[string]string, key string, def int64) int64 {
	raw, ok := values[key]
	if !ok {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.Warn("invalid integer setting, using default", "key", key, "value", raw, "default", def)
		return def
	}
	return v
}
