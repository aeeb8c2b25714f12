package upload

import (
	"path/filepath"
	"strings"
)

// DefaultContentType is used when neither the request nor the extension
// table yields a type.
const DefaultContentType = "application/octet-stream"

// contentTypes maps lower-case file extensions to the MIME type sent to storage.
var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".avif": "image/avif",
	".heic": "image/heic",
	".svg":  "image/svg+xml",
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".ogv":  "video/ogg",
}

// ResolveContentType returns the MIME type for filename's extension, or
// DefaultContentType when the extension is unknown.
func ResolveContentType(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return DefaultContentType
}

// IsVideo reports whether contentType names a video container.
func IsVideo(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "video/")
}
