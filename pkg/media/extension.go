package media

import (
	"mime"
	"sort"
	"strings"
)

// PhotoExtension is used for every compressed photo
const PhotoExtension = ".jpg"

// fixed mappings so results do not depend on the host mime database
var knownExtensions = map[string]string{
	"video/mp4":        ".mp4",
	"video/quicktime":  ".mov",
	"video/x-matroska": ".mkv",
	"video/webm":       ".webm",
	"video/mpeg":       ".mpeg",
	"video/3gpp":       ".3gp",
	"video/x-msvideo":  ".avi",
	"image/jpeg":       ".jpg",
	"image/png":        ".png",
	"image/gif":        ".gif",
	"image/webp":       ".webp",
}

// Extension returns the file extension for an attachment, falling back to
// defaultExt when the type is unknown
func Extension(att Attachment, defaultExt string) string {
	switch a := att.(type) {
	case *Photo:
		return PhotoExtension
	case *Document:
		if ext := extensionForMIME(a.MimeType); ext != "" {
			return ext
		}
	}
	return defaultExt
}

func extensionForMIME(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "" {
		return ""
	}
	if ext, ok := knownExtensions[mimeType]; ok {
		return ext
	}
	exts, err := mime.ExtensionsByType(mimeType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	sort.Strings(exts)
	return exts[0]
}
