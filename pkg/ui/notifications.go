package ui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"

	"tgmedia/pkg/config"
	"tgmedia/pkg/downloader"
)

// NotificationSender interface for platform-specific notification implementations
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	cmd := exec.Command("notify-send", "--app-name=tgmedia", title, message)
	return cmd.Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	cmd := exec.Command("osascript", "-e", script)
	return cmd.Run()
}

// WindowsNotificationSender sends notifications on Windows using PowerShell
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`
		[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
		[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
		$xml = @"
<toast>
	<visual>
		<binding template="ToastText02">
			<text id="1">%s</text>
			<text id="2">%s</text>
		</binding>
	</visual>
</toast>
"@
		$doc = [Windows.Data.Xml.Dom.XmlDocument]::new()
		$doc.LoadXml($xml)
		$toast = [Windows.UI.Notifications.ToastNotification]::new($doc)
		[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("tgmedia").Show($toast)
	`, xmlEscape(title), xmlEscape(message))

	cmd := exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	return cmd.Run()
}

func xmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

// Notifier echoes pass results to the console and, when enabled, to the
// desktop
type Notifier struct {
	sender NotificationSender
	out    io.Writer
	cfg    config.NotificationConfig
}

// NewNotifier creates a Notifier for the current platform
func NewNotifier(cfg config.NotificationConfig) *Notifier {
	var sender NotificationSender

	switch runtime.GOOS {
	case "linux":
		sender = &LinuxNotificationSender{}
	case "darwin":
		sender = &MacOSNotificationSender{}
	case "windows":
		sender = &WindowsNotificationSender{}
	}

	return NewNotifierWithSender(sender, os.Stdout, cfg)
}

// NewNotifierWithSender creates a Notifier with an explicit sender and
// console writer. A nil sender disables desktop notifications.
func NewNotifierWithSender(sender NotificationSender, out io.Writer, cfg config.NotificationConfig) *Notifier {
	if out == nil {
		out = io.Discard
	}
	return &Notifier{sender: sender, out: out, cfg: cfg}
}

// SendNotification prints to the console and sends a desktop notification
func (n *Notifier) SendNotification(title, message string) {
	fmt.Fprintf(n.out, "\n%s: %s\n", Cyan(title), Yellow(message))
	n.desktop(true, title, message)
}

// SendError prints and notifies an error
func (n *Notifier) SendError(title, message string) {
	fmt.Fprintf(n.out, "\n%s: %s\n", Red(title), Red(message))
	n.desktop(n.cfg.OnError, title, message)
}

// SendSuccess prints and notifies a success
func (n *Notifier) SendSuccess(title, message string) {
	fmt.Fprintf(n.out, "\n%s: %s\n", Green(title), Green(message))
	n.desktop(n.cfg.OnComplete, title, message)
}

// SendSummary reports a finished pass for the named chat
func (n *Notifier) SendSummary(chat string, summary downloader.Summary) {
	message := SummaryLine(summary)
	if summary.Failed > 0 {
		n.SendError("Download finished with errors: "+chat, message)
		return
	}
	n.SendSuccess("Download complete: "+chat, message)
}

// SummaryLine condenses a pass summary into one line
func SummaryLine(summary downloader.Summary) string {
	return fmt.Sprintf("%d downloaded (%s), %d skipped, %d failed",
		summary.Completed, humanize.Bytes(uint64(max(summary.Bytes, 0))), summary.Skipped, summary.Failed)
}

func (n *Notifier) desktop(wanted bool, title, message string) {
	if n.sender == nil || !n.cfg.Enabled || !wanted {
		return
	}
	// Desktop notifications are best effort
	_ = n.sender.Send(title, message)
}
