package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		att  Attachment
		want Kind
	}{
		{"photo", &Photo{ID: 1}, KindPhoto},
		{"video document", &Document{MimeType: "video/mp4", Video: &VideoAttributes{Duration: 3}}, KindVideo},
		{"round video", &Document{Video: &VideoAttributes{RoundMessage: true}}, KindVideo},
		{"video mime without attributes", &Document{MimeType: "video/mp4"}, KindNone},
		{"plain document", &Document{MimeType: "application/pdf"}, KindNone},
		{"poll", &Unsupported{Type: "poll"}, KindNone},
		{"no media", nil, KindNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.att))
		})
	}
}

func TestFilterMatches(t *testing.T) {
	tests := []struct {
		filter Filter
		kind   Kind
		want   bool
	}{
		{FilterPhotos, KindPhoto, true},
		{FilterPhotos, KindVideo, false},
		{FilterVideos, KindVideo, true},
		{FilterVideos, KindPhoto, false},
		{FilterBoth, KindPhoto, true},
		{FilterBoth, KindVideo, true},
		{FilterBoth, KindNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.filter.String()+"/"+tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.kind))
		})
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("Videos")
	require.NoError(t, err)
	assert.Equal(t, FilterVideos, f)

	f, err = ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterBoth, f)

	_, err = ParseFilter("audio")
	assert.Error(t, err)
}

func TestMessageHelpers(t *testing.T) {
	msg := Message{ID: 4, GroupID: 99, Attachment: &Document{Size: 2048}}
	assert.True(t, msg.HasMedia())
	assert.True(t, msg.InAlbum())
	assert.Equal(t, int64(2048), msg.Size())

	bare := Message{ID: 5}
	assert.False(t, bare.HasMedia())
	assert.False(t, bare.InAlbum())
	assert.Zero(t, bare.Size())
}

func TestExtension(t *testing.T) {
	tests := []struct {
		name string
		att  Attachment
		want string
	}{
		{"photo", &Photo{}, ".jpg"},
		{"mp4", &Document{MimeType: "video/mp4"}, ".mp4"},
		{"quicktime upper case", &Document{MimeType: "Video/QuickTime"}, ".mov"},
		{"no mime", &Document{}, ".bin"},
		{"unknown mime", &Document{MimeType: "application/x-tgmedia-unknown"}, ".bin"},
		{"unsupported", &Unsupported{}, ".bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.att, ".bin"))
		})
	}
}
