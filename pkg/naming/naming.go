// Package naming derives folder and file names for downloaded media.
package naming

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"tgmedia/pkg/media"
	"tgmedia/pkg/models"
)

// MaxNameLength caps sanitized folder names, in runes
const MaxNameLength = 80

// MaxDeclaredBytes caps a declared file name so that, with the msg_<id>_
// prefix, it stays under the 255 byte limit of common filesystems
const MaxDeclaredBytes = 200

// maxKeptExtension is the longest extension kept when a name is shortened
const maxKeptExtension = 16

// DefaultFolder replaces names that sanitize to nothing
const DefaultFolder = "chat"

var (
	reservedChars = regexp.MustCompile(`[\\/:*?"<>|\n\r\t]`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// Sanitize turns an arbitrary label into a single safe path segment
func Sanitize(name string) string {
	name = reservedChars.ReplaceAllString(name, "_")
	name = strings.TrimSpace(whitespace.ReplaceAllString(name, " "))

	runes := []rune(name)
	if len(runes) > MaxNameLength {
		name = strings.TrimSpace(string(runes[:MaxNameLength]))
	}
	if name == "" {
		return DefaultFolder
	}
	return name
}

// ChatLabel picks the human label for a chat folder: @username, then the
// title, then id_<entity id>
func ChatLabel(chat models.Chat) string {
	switch {
	case chat.Username != "":
		return "@" + chat.Username
	case chat.Title != "":
		return chat.Title
	default:
		return "id_" + strconv.FormatInt(chat.EntityID(), 10)
	}
}

// ChatDir returns the folder under base that holds a chat's media
func ChatDir(base string, chat models.Chat) string {
	return filepath.Join(base, Sanitize(ChatLabel(chat)))
}

// GroupDirName returns the subfolder name for an album
func GroupDirName(groupID int64) string {
	return "group_" + strconv.FormatInt(groupID, 10)
}

// FileName builds the unique file name for a message. A declared file name
// is kept after the msg_<id>_ prefix; otherwise the name is file plus an
// extension derived from the attachment type.
func FileName(msg media.Message, defaultExt string) string {
	prefix := "msg_" + strconv.Itoa(msg.ID) + "_"

	if doc, ok := msg.Attachment.(*media.Document); ok {
		if declared := cleanDeclared(doc.FileName); declared != "" {
			return prefix + declared
		}
	}
	return prefix + "file" + media.Extension(msg.Attachment, defaultExt)
}

// cleanDeclared strips anything that could escape the target directory
func cleanDeclared(name string) string {
	name = strings.TrimSpace(reservedChars.ReplaceAllString(name, "_"))
	if name == "." || name == ".." {
		return ""
	}
	return capDeclared(name)
}

// capDeclared shortens name to MaxDeclaredBytes on a rune boundary,
// keeping its extension
func capDeclared(name string) string {
	if len(name) <= MaxDeclaredBytes {
		return name
	}
	ext := filepath.Ext(name)
	if len(ext) > maxKeptExtension {
		ext = ""
	}
	stem := name[:len(name)-len(ext)]
	cut := MaxDeclaredBytes - len(ext)
	for cut > 0 && !utf8.RuneStart(stem[cut]) {
		cut--
	}
	return strings.TrimSpace(stem[:cut]) + ext
}
