package settingsevent

import (
	"context"
	"encoding/json"
	"filedrop/internal/core/domain"
	"fmt"
)

func (s *settingsEventService) HandleMessage(ctx context.Context, data []byte) error {
	var event domain.SettingsChangedEvent

	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("could not unmarshal settings event: %v", err)
	}

	s.logger.Info("settings changed, invalidating cache", "keys", event.Keys)
	s.provider.Invalidate()
	return nil
}
