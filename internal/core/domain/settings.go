package domain

import "strings"

// Setting keys stored in app_settings
const (
	SettingBlacklistedExtensions     = "blacklisted_extensions"
	SettingUploadFileMaxSize         = "upload_file_max_size"
	SettingUploadFileChunkSize       = "upload_file_chunk_size"
	SettingDefaultUserQuota          = "default_user_quota"
	SettingDefaultUserFileCountQuota = "default_user_file_count_quota"
	SettingCDNURL                    = "cdn_url"
)

// Settings is the runtime configuration consulted by upload admission
type Settings struct {
	BlacklistedExtensions     []string
	UploadMaxSize             int64
	ChunkSize                 int64
	DefaultUserQuota          int64
	DefaultUserFileCountQuota int64
	CDNURL                    string
}

// ParseExtensionList splits a comma separated list, lowercasing entries and stripping a leading dot
func ParseExtensionList(raw string) []string {
	var exts []string
	for _, part := range strings.Split(raw, ",") {
		ext := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(part)), ".")
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}

// IsBlacklisted reports whether the filename's extension is rejected.
// Files without an extension are allowed.
func (s Settings) IsBlacklisted(filename string) bool {
	ext := FileExtension(filename)
	if ext == "" {
		return false
	}
	for _, b := range s.BlacklistedExtensions {
		if b == ext {
			return true
		}
	}
	return false
}
