package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tgmedia/pkg/auth"
	"tgmedia/pkg/collector"
	"tgmedia/pkg/config"
	"tgmedia/pkg/downloader"
	"tgmedia/pkg/logger"
	"tgmedia/pkg/media"
	"tgmedia/pkg/models"
	"tgmedia/pkg/naming"
	"tgmedia/pkg/ratelimit"
	"tgmedia/pkg/retry"
	"tgmedia/pkg/telegram"
	"tgmedia/pkg/ui"
	"tgmedia/pkg/ui/tui"
)

var (
	// Download command flags
	mediaType  string
	scanLimit  int
	order      string
	outputDir  string
	flushEvery int
	useTUI     bool
	assumeYes  bool
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download [chat]",
	Short: "Download photos and videos from a chat",
	Long: `Scan the most recent messages of a chat and download their photos and
videos into <output>/<chat name>/. Albums are stored in group_<id> folders.

The chat can be given as @username, a t.me link, an invite link
(t.me/+hash or t.me/joinchat/hash) or a numeric id such as -1001234567890.
Options that are not given as flags are asked interactively.`,
	Example: `  # Interactive
  tgmedia download

  # Everything from the last 2000 messages, oldest first, no questions
  tgmedia download @channelname --type both --limit 2000 --order oldest --yes

  # Only videos into a custom folder with the terminal UI
  tgmedia download https://t.me/+AbCdEf --type videos --output ~/tg --tui`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	addDownloadFlags(downloadCmd)
}

func addDownloadFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&mediaType, "type", "t", "both", "media type: photos, videos or both")
	cmd.Flags().IntVarP(&scanLimit, "limit", "n", 500, "how many recent messages to scan")
	cmd.Flags().StringVar(&order, "order", "oldest", "download order: newest or oldest")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "base directory for chat folders (default: ./downloads)")
	cmd.Flags().IntVar(&flushEvery, "flush-every", downloader.DefaultFlushEvery, "persist the ledger after this many downloads (0: only at the end)")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "use the full-screen terminal UI")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask questions; use flags and configured defaults")
}

// commandLineFlags collects the flags the user actually set
func commandLineFlags(flags *pflag.FlagSet) map[string]interface{} {
	values := make(map[string]interface{})
	if flags.Changed("type") {
		values["type"] = mediaType
	}
	if flags.Changed("limit") {
		values["limit"] = scanLimit
	}
	if flags.Changed("order") {
		values["order"] = order
	}
	if flags.Changed("output") {
		values["output"] = outputDir
	}
	if flags.Changed("flush-every") {
		values["flush-every"] = flushEvery
	}
	if flags.Changed("notifications") {
		values["notifications"] = notifications
	}
	if flags.Changed("log-level") {
		values["log-level"] = logLevel
	}
	return values
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, commandLineFlags(cmd.Flags()))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Console logs would tear the progress display; keep only errors unless asked
	if !verbose && !cmd.Flags().Changed("log-level") && cfg.Logging.File == "" {
		cfg.Logging.Level = "error"
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger().WithField("component", "cli")
	log.WithField("version", version).Info("tgmedia starting")

	p := newPrompter()
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}
	if err := loadCredentials(cfg, manager, profileName, p.out); err != nil {
		return err
	}
	if err := setupCredentials(cfg, manager, p, assumeYes); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := newTelegramClient(cfg)
	if err != nil {
		return err
	}
	authenticator := &telegram.Authenticator{PhoneNumber: cfg.Telegram.Phone, Prompt: p.telegramPrompt()}

	err = client.Run(ctx, authenticator, func(ctx context.Context) error {
		return downloadPass(ctx, cancel, cmd.Flags(), cfg, client, p, args)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newTelegramClient(cfg *config.Config) (*telegram.Client, error) {
	sessionPath, err := cfg.SessionPath()
	if err != nil {
		return nil, fmt.Errorf("failed to locate session file: %w", err)
	}
	log := logger.GetLogger()
	return telegram.NewClient(telegram.Config{
		APIID:       cfg.Telegram.APIID,
		APIHash:     cfg.Telegram.APIHash,
		SessionPath: sessionPath,
		Limiter:     ratelimit.FromConfig(cfg.RateLimit),
		Retry:       retry.FromConfig(cfg.Retry, log),
		Logger:      log.WithField("component", "telegram"),
	})
}

// passOptions are the choices of one download pass
type passOptions struct {
	filter media.Filter
	limit  int
	order  collector.Order
}

// askOptions fills the options that were not given on the command line
func askOptions(p *prompter, flags *pflag.FlagSet, cfg *config.Config, interactive bool) (passOptions, error) {
	if interactive && !(flags.Changed("type") && flags.Changed("limit") && flags.Changed("order")) {
		fmt.Fprintln(p.out, optionsTable())
	}

	kind := cfg.Download.MediaType
	limit := cfg.Download.Limit
	ord := cfg.Download.Order
	var err error

	if interactive && !flags.Changed("type") {
		if kind, err = p.AskChoice("Media type?", []string{"photos", "videos", "both"}, kind); err != nil {
			return passOptions{}, err
		}
	}
	if interactive && !flags.Changed("limit") {
		if limit, err = p.AskInt("How many recent messages to check?", limit); err != nil {
			return passOptions{}, err
		}
	}
	if interactive && !flags.Changed("order") {
		if ord, err = p.AskChoice("Download order?", []string{"newest", "oldest"}, ord); err != nil {
			return passOptions{}, err
		}
	}

	filter, err := media.ParseFilter(kind)
	if err != nil {
		return passOptions{}, err
	}
	parsedOrder, err := collector.ParseOrder(ord)
	if err != nil {
		return passOptions{}, err
	}
	return passOptions{filter: filter, limit: limit, order: parsedOrder}, nil
}

func optionsTable() string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("5"))).
		Headers("Option", "Choices / Example").
		Row("Media type", "photos / videos / both").
		Row("Quantity", "how many recent messages to scan (e.g., 1000)").
		Row("Order", "newest / oldest").
		String()
}

func downloadPass(ctx context.Context, cancel context.CancelFunc, flags *pflag.FlagSet, cfg *config.Config, client *telegram.Client, p *prompter, args []string) error {
	log := logger.GetLogger().WithField("component", "cli")
	interactive := !assumeYes

	var query string
	if len(args) > 0 {
		query = args[0]
	}
	for query == "" {
		if !interactive {
			return errors.New("a chat is required when running with --yes")
		}
		var err error
		if query, err = p.Ask("Enter chat username or ID (e.g., @channelname or -1001234567890)", ""); err != nil {
			return err
		}
	}

	chat, err := client.Resolve(ctx, query)
	if err != nil {
		ui.PrintError("Could not resolve chat.")
		return err
	}
	label := naming.ChatLabel(chat)

	opts, err := askOptions(p, flags, cfg, interactive)
	if err != nil {
		return err
	}

	chatDir := naming.ChatDir(cfg.Download.BaseDirectory, chat)
	if abs, err := filepath.Abs(chatDir); err == nil {
		chatDir = abs
	}
	fmt.Fprintf(p.out, "%s %s\n", ui.Green("Destination:"), chatDir)

	msgs, err := collector.New(client, log.WithField("component", "collector")).Collect(ctx, chat, opts.filter, opts.limit, opts.order)
	if err != nil {
		return err
	}
	fmt.Fprintln(p.out, ui.Cyan(fmt.Sprintf("Found %d matching media messages.", len(msgs))))
	if len(msgs) == 0 {
		ui.PrintWarning("Nothing to download with current filters.")
		return nil
	}

	if interactive {
		start, err := p.Confirm("Start downloading now?", true)
		if err != nil || !start {
			return err
		}
	}

	summary, err := runPass(ctx, cancel, cfg, client, chat, label, msgs, chatDir)
	if errors.Is(err, context.Canceled) {
		ui.PrintWarning("Interrupted, progress saved")
		err = nil
	}
	if err != nil {
		return err
	}

	if !useTUI {
		ui.PrintSuccess("Done!")
	}
	ui.NewNotifier(cfg.Notifications).SendSummary(label, summary)
	return nil
}

// runPass downloads msgs with either the progress bar or the terminal UI
func runPass(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, client *telegram.Client, chat models.Chat, label string, msgs []media.Message, chatDir string) (downloader.Summary, error) {
	opts := downloader.Options{
		FlushEvery:       cfg.Download.FlushEvery,
		DefaultExtension: cfg.Download.DefaultExtension,
		Logger:           logger.GetLogger().WithField("component", "downloader"),
	}

	if !useTUI {
		opts.Progress = ui.NewProgressDisplay(os.Stdout, label, verbose)
		return downloader.New(client, opts).Run(ctx, chat, msgs, chatDir)
	}

	terminal := tui.NewTUI(label, cancel)
	opts.Progress = terminal

	tuiDone := make(chan error, 1)
	go func() {
		tuiDone <- terminal.Start()
	}()

	terminal.LogInfo("Saving to %s", chatDir)
	summary, err := downloader.New(client, opts).Run(ctx, chat, msgs, chatDir)
	reportPassEnd(terminal, summary, err)

	// A signal ends the pass without a key press, so close the UI too
	if ctx.Err() != nil {
		terminal.Stop()
	}

	// The summary stays on screen until the user quits
	if tuiErr := <-tuiDone; tuiErr != nil && err == nil {
		err = tuiErr
	}
	ui.WriteSummary(os.Stdout, summary)
	return summary, err
}

// passLog is the part of the terminal UI that shows log lines
type passLog interface {
	LogWarning(format string, args ...interface{})
	LogError(format string, args ...interface{})
}

// reportPassEnd logs how a pass ended into the terminal UI
func reportPassEnd(log passLog, summary downloader.Summary, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		log.LogWarning("Interrupted, progress saved")
	case err != nil:
		log.LogError("%v", err)
	}
	if summary.Failed > 0 {
		log.LogWarning("%d failed, they are retried on the next run", summary.Failed)
	}
}
