package domain

import (
	"regexp"
	"strings"
	"time"
)

// FileRecord is a finalized file in the catalog
type FileRecord struct {
	ID          string
	OwnerUserID string
	FolderID    *string
	Filename    string
	Size        int64
	MimeType    string
	SearchText  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewFileRecord builds the catalog record for a fully received session
func NewFileRecord(session UploadSession) FileRecord {
	mimeType := session.Metadata.MimeTypeOrDefault()
	return FileRecord{
		ID:          session.ID,
		OwnerUserID: session.Metadata.OwnerUserID,
		FolderID:    session.Metadata.FolderID,
		Filename:    session.Metadata.Filename,
		Size:        session.Size,
		MimeType:    mimeType,
		SearchText:  NormalizeSearchText(session.Metadata.Filename + " " + mimeType),
	}
}

var (
	nonSearchable = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// NormalizeSearchText lowercases the input, replaces anything that is not a letter,
// digit or whitespace with a space, collapses whitespace runs and trims.
func NormalizeSearchText(s string) string {
	s = strings.ToLower(s)
	s = nonSearchable.ReplaceAllString(s, " ")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// FileExtension returns the lowercased text after the last dot of the filename,
// or an empty string when there is none.
func FileExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}
