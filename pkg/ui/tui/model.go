package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"tgmedia/pkg/downloader"
	"tgmedia/pkg/media"
)

// Item is one finished message in the recent list
type Item struct {
	MessageID int
	Kind      media.Kind
	Size      int64
	Outcome   downloader.Outcome
	Err       error
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// Model is the bubbletea model of a download pass
type Model struct {
	spinner spinner.Model
	bar     progress.Model

	chat    string
	total   int
	done    int
	counts  map[downloader.Outcome]int
	bytes   int64
	recent  []Item
	summary *downloader.Summary

	waitingFor int
	waitUntil  time.Time
	waits      int

	startTime time.Time
	now       time.Time

	width       int
	height      int
	showHelp    bool
	logMessages []LogMessage
	onQuit      func()
}

const (
	maxRecent      = 8
	maxLogMessages = 50
)

// NewModel creates a model for the named chat
func NewModel(chat string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	now := time.Now()
	return Model{
		spinner:   s,
		bar:       bar,
		chat:      chat,
		counts:    make(map[downloader.Outcome]int),
		startTime: now,
		now:       now,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// begin resets the pass counters
func (m *Model) begin(total int) {
	m.total = total
	m.done = 0
	m.bytes = 0
	m.counts = make(map[downloader.Outcome]int)
	m.recent = nil
	m.summary = nil
	m.startTime = m.now
}

// advance records one finished message
func (m *Model) advance(msg media.Message, outcome downloader.Outcome, err error) {
	m.done++
	m.counts[outcome]++
	if outcome == downloader.Downloaded {
		m.bytes += msg.Size()
	}
	if m.waitingFor == msg.ID {
		m.waitingFor = 0
		m.waitUntil = time.Time{}
	}

	m.recent = append(m.recent, Item{
		MessageID: msg.ID,
		Kind:      media.Classify(msg.Attachment),
		Size:      msg.Size(),
		Outcome:   outcome,
		Err:       err,
	})
	if len(m.recent) > maxRecent {
		m.recent = m.recent[len(m.recent)-maxRecent:]
	}

	if outcome == downloader.Failed {
		m.addLogMessage("ERROR", fmt.Sprintf("message %d: %v", msg.ID, err))
	}
}

// waiting records a flood wait that started at `at`
func (m *Model) waiting(msg media.Message, wait time.Duration, at time.Time) {
	m.waits++
	m.waitingFor = msg.ID
	m.waitUntil = at.Add(wait)
	m.addLogMessage("WARN", fmt.Sprintf("rate limited on message %d, waiting %s", msg.ID, wait.Round(time.Second)))
}

// finish stores the final summary
func (m *Model) finish(summary downloader.Summary) {
	m.summary = &summary
	m.waitingFor = 0
	m.waitUntil = time.Time{}
	m.addLogMessage("SUCCESS", fmt.Sprintf("pass finished: %d downloaded, %d skipped, %d failed",
		summary.Completed, summary.Skipped, summary.Failed))
}

// addLogMessage adds a log message
func (m *Model) addLogMessage(level, message string) {
	color := dimWhite
	switch level {
	case "ERROR":
		color = neonRed
	case "WARN":
		color = neonOrange
	case "SUCCESS":
		color = neonGreen
	case "INFO":
		color = neonCyan
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    m.now,
		Level:   level,
		Message: message,
		Color:   color,
	})

	if len(m.logMessages) > maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-maxLogMessages:]
	}
}

// Percent returns the share of messages that left the pending state
func (m Model) Percent() float64 {
	if m.total <= 0 {
		if m.summary != nil {
			return 1
		}
		return 0
	}
	return min(float64(m.done)/float64(m.total), 1)
}

// WaitRemaining returns how long the current flood wait still lasts
func (m Model) WaitRemaining() time.Duration {
	if m.waitUntil.IsZero() {
		return 0
	}
	return max(m.waitUntil.Sub(m.now), 0)
}

// Finished reports whether the pass has ended
func (m Model) Finished() bool {
	return m.summary != nil
}

// FormatBytes formats a byte count for display
func FormatBytes(n int64) string {
	return humanize.Bytes(uint64(max(n, 0)))
}

// FormatSpeed formats a byte rate for display
func FormatSpeed(bytesPerSecond float64) string {
	return FormatBytes(int64(bytesPerSecond)) + "/s"
}
