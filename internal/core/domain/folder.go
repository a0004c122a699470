package domain

import "time"

// Folder groups a user's files, FileRecord.FolderID points here and nil is the root
type Folder struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}
