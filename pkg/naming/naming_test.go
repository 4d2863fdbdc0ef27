package naming

import (
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"tgmedia/pkg/media"
	"tgmedia/pkg/models"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Holiday Pics", "Holiday Pics"},
		{"reserved characters", `a/b\c:d*e?f"g<h>i|j`, "a_b_c_d_e_f_g_h_i_j"},
		{"control whitespace", "line\none\ttab", "line_one_tab"},
		{"collapses spaces", "  many    spaces  ", "many spaces"},
		{"empty", "", "chat"},
		{"only spaces", "   ", "chat"},
		{"unicode kept", "Фото 📷", "Фото 📷"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeTruncatesRunes(t *testing.T) {
	long := strings.Repeat("é", 100)
	got := Sanitize(long)
	assert.Equal(t, 80, len([]rune(got)))
}

func TestChatLabel(t *testing.T) {
	tests := []struct {
		name string
		chat models.Chat
		want string
	}{
		{"username preferred", models.Chat{ID: 1, Username: "pics", Title: "Pics"}, "@pics"},
		{"title", models.Chat{ID: 1, Title: "Family: 2024"}, "Family: 2024"},
		{"group id fallback", models.Chat{ID: -100123}, "id_100123"},
		{"channel id fallback", models.Chat{ID: -1001234567890}, "id_1234567890"},
		{"user id fallback", models.Chat{ID: 777000}, "id_777000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChatLabel(tt.chat))
		})
	}
}

func TestChatDir(t *testing.T) {
	dir := ChatDir("downloads", models.Chat{Title: "Family: 2024"})
	assert.Equal(t, filepath.Join("downloads", "Family_ 2024"), dir)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		msg  media.Message
		want string
	}{
		{"photo", media.Message{ID: 12, Attachment: &media.Photo{}}, "msg_12_file.jpg"},
		{"declared name", media.Message{ID: 7, Attachment: &media.Document{FileName: "clip.mov", MimeType: "video/mp4"}}, "msg_7_clip.mov"},
		{"mime extension", media.Message{ID: 8, Attachment: &media.Document{MimeType: "video/mp4"}}, "msg_8_file.mp4"},
		{"default extension", media.Message{ID: 9, Attachment: &media.Document{}}, "msg_9_file.bin"},
		{"declared path stripped", media.Message{ID: 3, Attachment: &media.Document{FileName: "../../etc/passwd"}}, "msg_3_.._.._etc_passwd"},
		{"dot name ignored", media.Message{ID: 4, Attachment: &media.Document{FileName: ".."}}, "msg_4_file.bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.msg, ".bin"))
		})
	}
}

func TestFileNameCapsLongDeclaredNames(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		wantExt  string
	}{
		{"ascii", strings.Repeat("a", 300) + ".mp4", ".mp4"},
		{"multibyte", strings.Repeat("видео", 60) + ".mov", ".mov"},
		{"overlong extension dropped", "clip." + strings.Repeat("x", 250), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := media.Message{ID: 123456789, Attachment: &media.Document{FileName: tt.declared}}
			got := FileName(msg, ".bin")

			assert.True(t, strings.HasPrefix(got, "msg_123456789_"))
			assert.LessOrEqual(t, len(got), 255)
			assert.LessOrEqual(t, len(strings.TrimPrefix(got, "msg_123456789_")), MaxDeclaredBytes)
			assert.True(t, utf8.ValidString(got))
			if tt.wantExt != "" {
				assert.Equal(t, tt.wantExt, filepath.Ext(got))
			}
		})
	}

	t.Run("short names untouched", func(t *testing.T) {
		msg := media.Message{ID: 1, Attachment: &media.Document{FileName: "clip.mov"}}
		assert.Equal(t, "msg_1_clip.mov", FileName(msg, ".bin"))
	})
}

func TestGroupDirName(t *testing.T) {
	assert.Equal(t, "group_13500", GroupDirName(13500))
}
