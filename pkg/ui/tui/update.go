package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"tgmedia/pkg/downloader"
	"tgmedia/pkg/media"
)

// BeginMsg is sent when the pass knows how many messages it will process
type BeginMsg struct {
	Total int
}

// AdvanceMsg is sent when a message reaches a terminal outcome
type AdvanceMsg struct {
	Message media.Message
	Outcome downloader.Outcome
	Err     error
}

// WaitingMsg is sent when the server asks the pass to pause
type WaitingMsg struct {
	Message media.Message
	Wait    time.Duration
	At      time.Time
}

// FinishMsg carries the pass summary
type FinishMsg struct {
	Summary downloader.Summary
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// TickMsg is sent periodically to update the UI
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		m.now = time.Time(msg)
		return m, tickCmd()

	case BeginMsg:
		m.begin(msg.Total)
		m.addLogMessage("INFO", "pass started")
		return m, nil

	case AdvanceMsg:
		m.advance(msg.Message, msg.Outcome, msg.Err)
		return m, nil

	case WaitingMsg:
		m.waiting(msg.Message, msg.Wait, msg.At)
		return m, nil

	case FinishMsg:
		m.finish(msg.Summary)
		return m, nil

	case LogMsg:
		m.addLogMessage(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		if !m.Finished() && m.onQuit != nil {
			m.onQuit()
		}
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		m.logMessages = nil
		return m, nil
	}

	return m, nil
}

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
