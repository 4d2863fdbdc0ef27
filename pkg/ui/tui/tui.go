package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tgmedia/pkg/downloader"
	"tgmedia/pkg/media"
)

// TUI is a full-screen progress sink for a download pass. It satisfies
// downloader.Progress by forwarding every event to the bubbletea program.
type TUI struct {
	program *tea.Program
	model   *Model
}

// NewTUI creates a TUI for the named chat. onQuit runs when the user quits
// before the pass ends and is typically a context cancel func.
func NewTUI(chat string, onQuit func()) *TUI {
	model := NewModel(chat)
	model.onQuit = onQuit
	program := tea.NewProgram(&model, tea.WithAltScreen())

	return &TUI{
		program: program,
		model:   &model,
	}
}

// Start runs the program and blocks until the user quits
func (t *TUI) Start() error {
	go func() {
		time.Sleep(100 * time.Millisecond)
		t.program.Send(TickMsg(time.Now()))
	}()

	_, err := t.program.Run()
	return err
}

// Stop stops the TUI gracefully
func (t *TUI) Stop() {
	t.program.Quit()
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// Begin implements downloader.Progress
func (t *TUI) Begin(total int) {
	t.Send(BeginMsg{Total: total})
}

// Advance implements downloader.Progress
func (t *TUI) Advance(msg media.Message, outcome downloader.Outcome, err error) {
	t.Send(AdvanceMsg{Message: msg, Outcome: outcome, Err: err})
}

// Waiting implements downloader.Progress
func (t *TUI) Waiting(msg media.Message, wait time.Duration) {
	t.Send(WaitingMsg{Message: msg, Wait: wait, At: time.Now()})
}

// Finish implements downloader.Progress
func (t *TUI) Finish(summary downloader.Summary) {
	t.Send(FinishMsg{Summary: summary})
}

// Log sends a log message to the TUI
func (t *TUI) Log(level, format string, args ...interface{}) {
	t.Send(LogMsg{Level: level, Message: fmt.Sprintf(format, args...)})
}

// LogInfo logs an info message
func (t *TUI) LogInfo(format string, args ...interface{}) {
	t.Log("INFO", format, args...)
}

// LogWarning logs a warning message
func (t *TUI) LogWarning(format string, args ...interface{}) {
	t.Log("WARN", format, args...)
}

// LogError logs an error message
func (t *TUI) LogError(format string, args ...interface{}) {
	t.Log("ERROR", format, args...)
}
