package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "tgmedia/pkg/errors"
	"tgmedia/pkg/media"
	"tgmedia/pkg/models"
)

// fakeSource replays a fixed newest-first history
type fakeSource struct {
	history []media.Message
	err     error
	limits  []int
}

func (f *fakeSource) IterateMessages(ctx context.Context, chat models.Chat, limit int, fn func(media.Message) error) error {
	f.limits = append(f.limits, limit)
	for i, msg := range f.history {
		if i >= limit {
			break
		}
		if err := fn(msg); err != nil {
			return err
		}
	}
	return f.err
}

func photo(id int) media.Message {
	return media.Message{ID: id, Attachment: &media.Photo{ID: int64(id)}}
}

func video(id int) media.Message {
	return media.Message{ID: id, Attachment: &media.Document{MimeType: "video/mp4", Video: &media.VideoAttributes{}}}
}

func ids(msgs []media.Message) []int {
	out := make([]int, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func newestFirst() []media.Message {
	return []media.Message{
		video(10),
		{ID: 9},
		photo(8),
		{ID: 7, Attachment: &media.Document{MimeType: "application/pdf"}},
		video(6),
		{ID: 5, Attachment: &media.Unsupported{Type: "poll"}},
		photo(4),
	}
}

func TestCollect(t *testing.T) {
	tests := []struct {
		name   string
		filter media.Filter
		limit  int
		order  Order
		want   []int
	}{
		{"both newest", media.FilterBoth, 100, OrderNewest, []int{10, 8, 6, 4}},
		{"both oldest", media.FilterBoth, 100, OrderOldest, []int{4, 6, 8, 10}},
		{"photos only", media.FilterPhotos, 100, OrderNewest, []int{8, 4}},
		{"videos oldest", media.FilterVideos, 100, OrderOldest, []int{6, 10}},
		{"limit counts every message", media.FilterBoth, 3, OrderNewest, []int{10, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{history: newestFirst()}
			c := New(src, nil)

			got, err := c.Collect(context.Background(), models.Chat{ID: 1}, tt.filter, tt.limit, tt.order)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, []int{tt.limit}, src.limits)
		})
	}
}

func TestCollectEmptyIsNotAnError(t *testing.T) {
	src := &fakeSource{history: []media.Message{{ID: 1}, {ID: 2}}}
	got, err := New(src, nil).Collect(context.Background(), models.Chat{ID: 1}, media.FilterBoth, 10, OrderOldest)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCollectRejectsNonPositiveLimit(t *testing.T) {
	src := &fakeSource{history: newestFirst()}
	_, err := New(src, nil).Collect(context.Background(), models.Chat{ID: 1}, media.FilterBoth, 0, OrderOldest)
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeInvalidInput, errs.TypeOf(err))
	assert.Empty(t, src.limits, "source must not be called")
}

func TestCollectPropagatesSourceError(t *testing.T) {
	boom := errors.New("connection lost")
	src := &fakeSource{history: newestFirst(), err: boom}
	_, err := New(src, nil).Collect(context.Background(), models.Chat{Title: "News"}, media.FilterBoth, 10, OrderOldest)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "News")
}

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("Newest")
	require.NoError(t, err)
	assert.Equal(t, OrderNewest, o)

	o, err = ParseOrder("oldest")
	require.NoError(t, err)
	assert.Equal(t, OrderOldest, o)

	_, err = ParseOrder("random")
	assert.Error(t, err)
}
