package domain

import "time"

// UploadFinishedEvent is published once a file has been committed to the catalog
type UploadFinishedEvent struct {
	FileID      string    `json:"file_id"`
	OwnerUserID string    `json:"owner_user_id"`
	Filename    string    `json:"filename"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	FinishedAt  time.Time `json:"finished_at"`
}

// SettingsChangedEvent asks every replica to drop its cached settings
type SettingsChangedEvent struct {
	Keys []string `json:"keys"`
}
