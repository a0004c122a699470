package domain

import "time"

// UploadMetadata is the client supplied description of an upload plus the resolved owner
type UploadMetadata struct {
	Filename    string
	MimeType    string
	OwnerUserID string
	FolderID    *string
}

// UploadSession represents a resumable upload in progress
type UploadSession struct {
	ID        string
	Size      int64
	Offset    int64
	Metadata  UploadMetadata
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Complete reports whether every declared byte has been received
func (s *UploadSession) Complete() bool {
	return s.Offset == s.Size
}

// Remaining returns the number of bytes still expected
func (s *UploadSession) Remaining() int64 {
	return s.Size - s.Offset
}

// DefaultMimeType is used when the client does not declare one
const DefaultMimeType = "application/octet-stream"

// MimeTypeOrDefault returns the declared mime type or DefaultMimeType
func (m UploadMetadata) MimeTypeOrDefault() string {
	if m.MimeType == "" {
		return DefaultMimeType
	}
	return m.MimeType
}
