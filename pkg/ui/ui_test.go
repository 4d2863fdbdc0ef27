package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgmedia/pkg/config"
	"tgmedia/pkg/downloader"
	"tgmedia/pkg/media"
)

type fakeSender struct {
	titles []string
}

func (f *fakeSender) Send(title, message string) error {
	f.titles = append(f.titles, title)
	return nil
}

func TestProgressDisplay(t *testing.T) {
	var buf bytes.Buffer
	display := NewProgressDisplay(&buf, "Saved Pics", false)

	photo := media.Message{ID: 5, Attachment: &media.Photo{ID: 1, Size: 2048}}
	broken := media.Message{ID: 7, Attachment: &media.Photo{ID: 2}}

	display.Begin(3)
	display.Advance(photo, downloader.Downloaded, nil)
	display.Waiting(broken, 3*time.Second)
	display.Advance(broken, downloader.Failed, errors.New("boom"))
	display.Advance(media.Message{ID: 9}, downloader.Skipped, nil)
	display.Finish(downloader.Summary{Completed: 1, Skipped: 1, Failed: 1, Bytes: 2048})

	out := buf.String()
	assert.Contains(t, out, "message 7: boom")
	assert.Contains(t, out, "Downloaded:")
	assert.Contains(t, out, "Skipped (already had):")
	assert.Contains(t, out, "Failed:")
	assert.NotContains(t, out, "message 5", "successes are quiet unless verbose")
}

func TestProgressDisplayWithoutBegin(t *testing.T) {
	var buf bytes.Buffer
	display := NewProgressDisplay(&buf, "chat", true)

	display.Waiting(media.Message{ID: 3}, 2*time.Second)
	display.Finish(downloader.Summary{})

	assert.Contains(t, buf.String(), "waiting 2s")
	assert.Contains(t, buf.String(), "Downloaded:")
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, downloader.Summary{Completed: 4, Skipped: 2, Bytes: 1500000, RateLimitWaits: 1})

	out := buf.String()
	assert.Contains(t, out, "1.5 MB")
	assert.Contains(t, out, "Rate limit waits:")
}

func TestFormatWait(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "1s"},
		{400 * time.Millisecond, "1s"},
		{1500 * time.Millisecond, "2s"},
		{90 * time.Second, "1m30s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatWait(tt.in))
		})
	}
}

func TestSummaryLine(t *testing.T) {
	line := SummaryLine(downloader.Summary{Completed: 3, Skipped: 1, Failed: 0, Bytes: 1000})
	assert.Equal(t, "3 downloaded (1.0 kB), 1 skipped, 0 failed", line)
}

func TestNotifier(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.NotificationConfig
		summary downloader.Summary
		sent    int
	}{
		{"success notifies", config.NotificationConfig{Enabled: true, OnComplete: true}, downloader.Summary{Completed: 1}, 1},
		{"success muted", config.NotificationConfig{Enabled: true, OnError: true}, downloader.Summary{Completed: 1}, 0},
		{"failure notifies", config.NotificationConfig{Enabled: true, OnError: true}, downloader.Summary{Failed: 1}, 1},
		{"disabled", config.NotificationConfig{OnComplete: true, OnError: true}, downloader.Summary{Failed: 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			sender := &fakeSender{}
			notifier := NewNotifierWithSender(sender, &buf, tt.cfg)

			notifier.SendSummary("Saved Pics", tt.summary)

			require.Len(t, sender.titles, tt.sent)
			assert.Contains(t, buf.String(), "Saved Pics")
		})
	}
}

func TestNotifierNilSender(t *testing.T) {
	notifier := NewNotifierWithSender(nil, nil, config.NotificationConfig{Enabled: true, OnComplete: true})
	assert.NotPanics(t, func() { notifier.SendSuccess("done", "ok") })
}

func TestXMLEscape(t *testing.T) {
	assert.Equal(t, "a &amp; &lt;b&gt; &quot;c&quot;", xmlEscape(`a & <b> "c"`))
}
