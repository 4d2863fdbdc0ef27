package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"tgmedia/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	notifications bool
	quiet         bool
	verbose       bool
	profileName   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tgmedia [chat]",
	Short: "Download photos and videos from Telegram chats",
	Long: `tgmedia downloads the photos and videos of a Telegram chat into a folder
named after the chat. Albums get their own sub-folder and a ledger file
remembers what was already fetched, so re-running only picks up new media.

Features:
  - Sign in with your own account (phone code or QR code)
  - Filter by media type, scan depth and download order
  - Waits out Telegram flood limits instead of failing
  - Secure credential profiles in the system keychain
  - Progress bar or full-screen terminal UI`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:    cobra.MaximumNArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet || useTUI {
			return
		}
		if cmd.Name() != "version" && cmd.Name() != "help" && cmd.Name() != "completion" {
			ui.PrintLogo()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDownload(cmd, args)
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Red(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.tgmedia.yaml or ~/.config/tgmedia/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", true, "enable desktop notifications")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress the logo and informational output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show logs and every downloaded file")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "P", "", "stored credential profile to use")

	addDownloadFlags(rootCmd)

	rootCmd.SetVersionTemplate(`tgmedia {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
