package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"tgmedia/pkg/downloader"
)

// View renders the entire TUI
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, m.renderLogo())

	mainContent := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderLeftColumn(),
		"  ",
		m.renderRightColumn(),
	)
	sections = append(sections, mainContent)

	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else if m.Finished() {
		sections = append(sections, helpStyle.Render("Pass finished. Press q to exit"))
	} else {
		sections = append(sections, helpStyle.Render("Press ? for help, q to stop"))
	}

	return baseStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

func (m Model) renderLogo() string {
	logo := `
╔══════════════════════════════════════════╗
║  T G M E D I A   ::   chat media export  ║
╚══════════════════════════════════════════╝`

	return logoStyle.Width(m.width).Render(logo)
}

func (m Model) renderLeftColumn() string {
	width := (m.width - 4) / 2
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderStatsPanel(width),
		m.renderProgressPanel(width),
		m.renderRecentPanel(width),
	)
}

func (m Model) renderRightColumn() string {
	width := (m.width - 4) / 2
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderRateLimitPanel(width),
		m.renderLogsPanel(width),
	)
}

func (m Model) renderStatsPanel(width int) string {
	title := titleStyle.Render(" PASS ")

	elapsed := m.now.Sub(m.startTime)
	if m.summary != nil {
		elapsed = m.summary.Elapsed
	}
	var speed float64
	if secs := elapsed.Seconds(); secs > 0 {
		speed = float64(m.bytes) / secs
	}

	stats := []string{
		statLine("Chat:", m.chat),
		statLine("Elapsed:", formatDuration(elapsed)),
		statLine("Downloaded:", fmt.Sprintf("%d (%s)", m.counts[downloader.Downloaded], FormatBytes(m.bytes))),
		statLine("Skipped (already had):", fmt.Sprintf("%d", m.counts[downloader.Skipped])),
		statLine("Failed:", fmt.Sprintf("%d", m.counts[downloader.Failed])),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Average Speed:"), speedStyle.Render(FormatSpeed(speed))),
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, stats...)),
	)
}

func statLine(label, value string) string {
	return fmt.Sprintf("%s %s", statsLabelStyle.Render(label), statsValueStyle.Render(value))
}

func (m Model) renderProgressPanel(width int) string {
	title := titleStyle.Render(" PROGRESS ")

	bar := m.bar
	bar.Width = max(width-12, 10)

	status := fmt.Sprintf("%d/%d messages", m.done, m.total)
	if !m.Finished() {
		status = m.spinner.View() + " " + status
	} else {
		status = successStyle.Render("✓ ") + status
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, bar.ViewAs(m.Percent()), status),
	)
}

func (m Model) renderRecentPanel(width int) string {
	title := titleStyle.Render(" RECENT ")

	if len(m.recent) == 0 {
		content := lipgloss.NewStyle().Foreground(dimWhite).Render("Nothing processed yet")
		return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
	}

	var items []string
	for i := len(m.recent) - 1; i >= 0; i-- {
		items = append(items, renderItem(m.recent[i], width-6))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, items...)),
	)
}

func renderItem(item Item, width int) string {
	switch item.Outcome {
	case downloader.Downloaded:
		return itemDownloadedStyle.Render(truncate(fmt.Sprintf("✓ #%d %s %s", item.MessageID, item.Kind, FormatBytes(item.Size)), width))
	case downloader.Skipped:
		return itemSkippedStyle.Render(truncate(fmt.Sprintf("↷ #%d %s already had", item.MessageID, item.Kind), width))
	default:
		return errorStyle.Render(truncate(fmt.Sprintf("✗ #%d %v", item.MessageID, item.Err), width))
	}
}

func (m Model) renderRateLimitPanel(width int) string {
	title := titleStyle.Render(" RATE LIMIT ")

	var content []string
	if remaining := m.WaitRemaining(); remaining > 0 {
		content = append(content,
			warningStyle.Render(fmt.Sprintf("Waiting on message #%d", m.waitingFor)),
			fmt.Sprintf("%s %s", statsLabelStyle.Render("Resumes in:"), warningStyle.Render(formatDuration(remaining))),
		)
	} else {
		content = append(content, successStyle.Render("Clear"))
	}
	content = append(content, statLine("Waits this pass:", fmt.Sprintf("%d", m.waits)))

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(content, "\n")),
	)
}

func (m Model) renderLogsPanel(width int) string {
	title := titleStyle.Render(" LOG ")

	start := max(len(m.logMessages)-10, 0)

	var logs []string
	for _, log := range m.logMessages[start:] {
		timestamp := logTimestampStyle.Render(log.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", log.Level))
		message := logMessageStyle.Render(truncate(log.Message, width-25))
		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, message))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = lipgloss.NewStyle().Foreground(dimWhite).Render("No logs yet...")
	}

	logsHeight := max(m.height-30, 5)

	return panelStyle.Width(width).Height(logsHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

func (m Model) renderHelp() string {
	help := `
  Keys:
    q/Q      - Stop the pass and exit
    ?        - Toggle this help
    ctrl+l   - Clear the log

  Recent:
    ` + successStyle.Render("✓") + `        - Downloaded
    ` + itemSkippedStyle.Render("↷") + `        - Skipped, already in the ledger
    ` + errorStyle.Render("✗") + `        - Failed, retried on the next run
`

	return panelStyle.Width(m.width).Render(help)
}

// truncate shortens s to width runes
func truncate(s string, width int) string {
	if width <= 3 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// formatDuration formats a duration as mm:ss or hh:mm:ss
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
