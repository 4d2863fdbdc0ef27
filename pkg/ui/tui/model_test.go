package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgmedia/pkg/downloader"
	"tgmedia/pkg/media"
)

func photo(id int, size int64) media.Message {
	return media.Message{ID: id, Attachment: &media.Photo{ID: int64(id), Size: size}}
}

func TestModelPass(t *testing.T) {
	model := NewModel("Saved Pics")
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	model.Update(TickMsg(start))

	model.Update(BeginMsg{Total: 4})
	assert.Equal(t, 0.0, model.Percent())

	model.Update(AdvanceMsg{Message: photo(10, 1000), Outcome: downloader.Downloaded})
	model.Update(AdvanceMsg{Message: photo(11, 500), Outcome: downloader.Skipped})
	model.Update(WaitingMsg{Message: photo(12, 0), Wait: 30 * time.Second, At: start})

	model.Update(TickMsg(start.Add(10 * time.Second)))
	assert.Equal(t, 20*time.Second, model.WaitRemaining())
	assert.Equal(t, 12, model.waitingFor)

	model.Update(AdvanceMsg{Message: photo(12, 0), Outcome: downloader.Failed, Err: errors.New("boom")})
	assert.Zero(t, model.WaitRemaining(), "advancing the waiting message clears the countdown")
	assert.Equal(t, 0.75, model.Percent())

	assert.Equal(t, 1, model.counts[downloader.Downloaded])
	assert.Equal(t, 1, model.counts[downloader.Skipped])
	assert.Equal(t, 1, model.counts[downloader.Failed])
	assert.Equal(t, int64(1000), model.bytes)
	assert.Equal(t, 1, model.waits)
	require.Len(t, model.recent, 3)
	assert.Equal(t, media.KindPhoto, model.recent[0].Kind)

	assert.False(t, model.Finished())
	model.Update(FinishMsg{Summary: downloader.Summary{Completed: 1, Skipped: 1, Failed: 1}})
	assert.True(t, model.Finished())
}

func TestModelRecentIsBounded(t *testing.T) {
	model := NewModel("chat")
	model.Update(BeginMsg{Total: 20})
	for i := 1; i <= 20; i++ {
		model.Update(AdvanceMsg{Message: photo(i, 1), Outcome: downloader.Downloaded})
	}
	require.Len(t, model.recent, maxRecent)
	assert.Equal(t, 20, model.recent[maxRecent-1].MessageID)
	assert.Equal(t, 1.0, model.Percent())
}

func TestModelLogs(t *testing.T) {
	model := NewModel("chat")
	for i := 0; i < maxLogMessages+5; i++ {
		model.Update(LogMsg{Level: "INFO", Message: "hello"})
	}
	assert.Len(t, model.logMessages, maxLogMessages)

	model.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, model.logMessages)
}

func TestModelQuitCancelsRunningPass(t *testing.T) {
	tests := []struct {
		name      string
		finished  bool
		cancelled bool
	}{
		{"running", false, true},
		{"finished", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cancelled := false
			model := NewModel("chat")
			model.onQuit = func() { cancelled = true }
			if tt.finished {
				model.Update(FinishMsg{})
			}

			_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
			require.NotNil(t, cmd)
			assert.Equal(t, tt.cancelled, cancelled)
		})
	}
}

func TestView(t *testing.T) {
	model := NewModel("Saved Pics")
	assert.Equal(t, "Initializing...", model.View())

	start := time.Now()
	model.Update(tea.WindowSizeMsg{Width: 160, Height: 50})
	model.Update(TickMsg(start))
	model.Update(BeginMsg{Total: 2})
	model.Update(WaitingMsg{Message: photo(3, 0), Wait: time.Minute, At: start})

	view := model.View()
	assert.Contains(t, view, "Saved Pics")
	assert.Contains(t, view, "Resumes in:")

	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.Contains(t, model.View(), "Toggle this help")
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "1.0 kB", FormatBytes(1000))
	assert.Equal(t, "0 B", FormatBytes(-5))
	assert.Equal(t, "2.0 MB/s", FormatSpeed(2_000_000))
	assert.Equal(t, "01:05", formatDuration(65*time.Second))
	assert.Equal(t, "01:00:00", formatDuration(time.Hour))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "short", truncate("short", 7))
}
