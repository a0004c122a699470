package upload

import (
	"encoding/base64"
	"filedrop/internal/core/domain"
	"fmt"
	"sort"
	"strings"
)

// ParseMetadata decodes an Upload-Metadata header: comma separated "key base64value" pairs.
// A key may come without a value.
func ParseMetadata(header string) (map[string]string, error) {
	meta := make(map[string]string)
	if strings.TrimSpace(header) == "" {
		return meta, nil
	}
	for _, pair := range strings.Split(header, ",") {
		fields := strings.Fields(pair)
		switch len(fields) {
		case 0:
			continue
		case 1:
			meta[fields[0]] = ""
		case 2:
			value, err := base64.StdEncoding.DecodeString(fields[1])
			if err != nil {
				return nil, fmt.Errorf("%w: metadata %q is not base64", domain.ErrInvalidUploadRequest, fields[0])
			}
			meta[fields[0]] = string(value)
		default:
			return nil, fmt.Errorf("%w: malformed metadata pair %q", domain.ErrInvalidUploadRequest, pair)
		}
	}
	return meta, nil
}

// EncodeMetadata is the inverse of ParseMetadata, keys sorted
func EncodeMetadata(meta map[string]string) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		if meta[k] == "" {
			pairs = append(pairs, k)
			continue
		}
		pairs = append(pairs, k+" "+base64.StdEncoding.EncodeToString([]byte(meta[k])))
	}
	return strings.Join(pairs, ",")
}

func sessionMetadata(session domain.UploadSession) map[string]string {
	meta := map[string]string{
		"filename": session.Metadata.Filename,
		"filetype": session.Metadata.MimeType,
	}
	if session.Metadata.FolderID != nil {
		meta["folderId"] = *session.Metadata.FolderID
	}
	return meta
}
