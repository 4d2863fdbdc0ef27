package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"tgmedia/pkg/downloader"
	"tgmedia/pkg/media"
)

// ProgressDisplay renders a download pass as a single terminal progress bar.
// Failures are printed inline above the bar; the summary is printed at the end.
type ProgressDisplay struct {
	mu      sync.Mutex
	out     io.Writer
	label   string
	verbose bool
	bar     *progressbar.ProgressBar
	bytes   int64
}

// NewProgressDisplay creates a display for the named chat writing to out
func NewProgressDisplay(out io.Writer, label string, verbose bool) *ProgressDisplay {
	return &ProgressDisplay{out: out, label: label, verbose: verbose}
}

// Begin sizes the bar to the number of messages in the pass
func (p *ProgressDisplay) Begin(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(p.label),
		progressbar.OptionSetItsString("file"),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// Advance moves the bar by one message
func (p *ProgressDisplay) Advance(msg media.Message, outcome downloader.Outcome, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch outcome {
	case downloader.Downloaded:
		p.bytes += msg.Size()
		if p.verbose {
			p.printLine(fmt.Sprintf("%s message %d %s", Green("✓"), msg.ID, Dim(humanize.Bytes(uint64(max(msg.Size(), 0))))))
		}
	case downloader.Failed:
		p.printLine(fmt.Sprintf("%s message %d: %v", Red("✗"), msg.ID, err))
	}

	if p.bar != nil {
		p.bar.Describe(fmt.Sprintf("%s %s", p.label, Dim(humanize.Bytes(uint64(p.bytes)))))
		_ = p.bar.Add(1)
	}
}

// Waiting shows a flood wait on the bar description
func (p *ProgressDisplay) Waiting(msg media.Message, wait time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	text := fmt.Sprintf("rate limited on message %d, waiting %s", msg.ID, FormatWait(wait))
	if p.bar == nil {
		p.printLine(Yellow(text))
		return
	}
	p.bar.Describe(Yellow(text))
}

// Finish completes the bar and prints the summary
func (p *ProgressDisplay) Finish(summary downloader.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		_ = p.bar.Finish()
		fmt.Fprintln(p.out)
	}
	WriteSummary(p.out, summary)
}

// printLine writes a line above the bar without breaking its rendering
func (p *ProgressDisplay) printLine(line string) {
	if p.bar != nil {
		_ = p.bar.Clear()
	}
	fmt.Fprintln(p.out, line)
}

// WriteSummary prints the end-of-pass counts
func WriteSummary(w io.Writer, summary downloader.Summary) {
	fmt.Fprintf(w, "%s %d (%s)\n", Green("Downloaded:"), summary.Completed, humanize.Bytes(uint64(max(summary.Bytes, 0))))
	fmt.Fprintf(w, "%s %d\n", Cyan("Skipped (already had):"), summary.Skipped)
	if summary.Failed > 0 {
		fmt.Fprintf(w, "%s %d\n", Red("Failed:"), summary.Failed)
	} else {
		fmt.Fprintf(w, "%s %d\n", Dim("Failed:"), summary.Failed)
	}
	if summary.RateLimitWaits > 0 {
		fmt.Fprintf(w, "%s %d\n", Yellow("Rate limit waits:"), summary.RateLimitWaits)
	}
	fmt.Fprintf(w, "%s %s\n", Dim("Elapsed:"), summary.Elapsed.Round(time.Second))
}

// FormatWait renders a wait duration with second precision
func FormatWait(d time.Duration) string {
	if d < time.Second {
		return "1s"
	}
	return d.Round(time.Second).String()
}
