package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tgmedia/pkg/auth"
	"tgmedia/pkg/config"
	"tgmedia/pkg/logger"
	"tgmedia/pkg/telegram"
	"tgmedia/pkg/ui"
)

var (
	loginPhone   string
	forgetLogout bool
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage API credentials and the Telegram session",
	Long: `Manage stored Telegram API credentials and the signed-in session.

API credentials (api_id and api_hash from my.telegram.org) are stored in:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (TGMEDIA_API_ID, TGMEDIA_API_HASH)

The session file grants full access to your account. Never share it!`,
}

var loginCmd = &cobra.Command{
	Use:   "login [profile]",
	Short: "Store API credentials and sign in with a login code",
	Long: `Store Telegram API credentials under a profile name and sign in.

Telegram sends a login code to your other devices or by SMS. Accounts with
two-step verification are asked for their password as well.`,
	Example: `  # Interactive login into the default profile
  tgmedia auth login

  # Login into a named profile with a known phone number
  tgmedia auth login work --phone +15550100`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var qrCmd = &cobra.Command{
	Use:   "qr [profile]",
	Short: "Sign in by scanning a QR code",
	Long: `Sign in by scanning a QR code with the Telegram app on a device that is
already logged in (Settings > Devices > Link Desktop Device).

The code is written as a PNG into the data directory and its tg:// link is
printed, so it also works over SSH.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQRLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout [profile]",
	Short: "Remove the local session",
	Long: `Remove the local session file. With --forget the stored API credentials
of the profile are deleted too.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogout,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored credential profiles",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(qrCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)

	loginCmd.Flags().StringVar(&loginPhone, "phone", "", "phone number in international format")
	logoutCmd.Flags().BoolVar(&forgetLogout, "forget", false, "also delete the stored API credentials")
}

// authContext loads configuration and credentials for the auth commands
func authContext(args []string) (*config.Config, *auth.Manager, string, error) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}
	if !verbose && cfg.Logging.File == "" {
		cfg.Logging.Level = "error"
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, nil, "", fmt.Errorf("failed to initialize logger: %w", err)
	}

	manager, err := auth.NewManager()
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := profileName
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		name = auth.DefaultProfile
	}
	return cfg, manager, name, nil
}

// ensureProfile makes sure cfg carries credentials for the named profile,
// asking for them when nothing is stored yet
func ensureProfile(cfg *config.Config, manager *auth.Manager, name string, p *prompter) error {
	if stored, err := manager.Retrieve(name); err == nil {
		applyProfile(cfg, stored)
		fmt.Fprintf(p.out, "Using saved credentials from profile %s.\n", ui.Yellow(stored.Name))
		return nil
	}

	if !cfg.HasCredentials() {
		auth.ShowAPICredentialsGuide(p.out)
		apiID, apiHash, err := askCredentials(p)
		if err != nil {
			return err
		}
		cfg.Telegram.APIID = apiID
		cfg.Telegram.APIHash = apiHash
	}

	if err := saveCredentials(manager, name, cfg); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	ui.PrintSuccess("Credentials saved as profile " + name)
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, manager, name, err := authContext(args)
	if err != nil {
		return err
	}
	if loginPhone != "" {
		cfg.Telegram.Phone = loginPhone
	}

	p := newPrompter()
	if err := ensureProfile(cfg, manager, name, p); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := newTelegramClient(cfg)
	if err != nil {
		return err
	}
	who, err := client.Login(ctx, &telegram.Authenticator{PhoneNumber: cfg.Telegram.Phone, Prompt: p.telegramPrompt()})
	if err != nil {
		return err
	}

	ui.PrintSuccess("Signed in as " + who)
	fmt.Fprintln(p.out, "\nDownload media from a chat:")
	fmt.Fprintln(p.out, "  $ tgmedia download @channelname")
	return nil
}

func runQRLogin(cmd *cobra.Command, args []string) error {
	cfg, manager, name, err := authContext(args)
	if err != nil {
		return err
	}

	p := newPrompter()
	if err := ensureProfile(cfg, manager, name, p); err != nil {
		return err
	}

	dataDir, err := config.DataDirectory()
	if err != nil {
		return err
	}
	pngPath := filepath.Join(dataDir, "login-qr.png")
	defer os.Remove(pngPath)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := newTelegramClient(cfg)
	if err != nil {
		return err
	}

	show := func(token telegram.QRToken) error {
		if err := os.WriteFile(pngPath, token.PNG, 0o600); err != nil {
			return fmt.Errorf("failed to write QR code: %w", err)
		}
		fmt.Fprintln(p.out)
		ui.PrintInfo("QR code", pngPath)
		ui.PrintInfo("Login link", token.URL)
		fmt.Fprintf(p.out, "Scan it in Telegram under Settings > Devices > Link Desktop Device (expires in %s)\n",
			time.Until(token.Expires).Round(time.Second))
		return nil
	}
	password := func(ctx context.Context) (string, error) {
		return p.Secret("Two-step verification password")
	}

	who, err := client.QRLogin(ctx, show, password)
	if err != nil {
		return err
	}
	ui.PrintSuccess("Signed in as " + who)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, manager, name, err := authContext(args)
	if err != nil {
		return err
	}

	sessionPath, err := cfg.SessionPath()
	if err != nil {
		return err
	}
	storage := &telegram.SafeFileSessionStorage{Path: sessionPath}
	if err := storage.Remove(); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	ui.PrintSuccess("Session removed: " + sessionPath)

	if forgetLogout {
		if err := manager.Delete(name); err != nil && !errors.Is(err, auth.ErrCredentialsNotFound) {
			return err
		}
		ui.PrintSuccess("Credentials removed: " + name)
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	_, manager, _, err := authContext(nil)
	if err != nil {
		return err
	}

	profiles, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}
	if len(profiles) == 0 {
		ui.PrintInfo("No stored profiles", "Use 'tgmedia auth login' to add one")
		return nil
	}

	ui.PrintHighlight("Stored Profiles")
	fmt.Println()
	for i, profile := range profiles {
		sanitized := auth.SanitizeProfile(profile)
		fmt.Printf("%d. Profile: %s\n", i+1, sanitized.Name)
		fmt.Printf("   API ID: %d\n", sanitized.APIID)
		fmt.Printf("   API Hash: %s\n", sanitized.APIHash)
		if sanitized.Phone != "" {
			fmt.Printf("   Phone: %s\n", sanitized.Phone)
		}
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
	return nil
}
