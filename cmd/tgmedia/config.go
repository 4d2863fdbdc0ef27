package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tgmedia/pkg/auth"
	"tgmedia/pkg/config"
	"tgmedia/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage tgmedia configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (TGMEDIA_*, also read from .env)
  - Configuration file
  - config.json with api_id and api_hash
  - Default values (lowest priority)`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.tgmedia.yaml'
unless a different path is specified with the --config flag.`,
	RunE: runConfigInit,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.

The API hash is masked.`,
	RunE: runConfigShow,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# tgmedia configuration file
#
# Every option can also be set with an environment variable prefixed with
# TGMEDIA_, for example TGMEDIA_API_ID, TGMEDIA_API_HASH or TGMEDIA_OUTPUT_DIR.

# Telegram API credentials from https://my.telegram.org
telegram:
  api_id: 0
  api_hash: ""
  # Phone number in international format, asked on first login when empty
  phone: ""
  # Session file. Default: the tgmedia data directory
  session_file: ""

download:
  # Chat folders are created below this directory
  base_directory: "downloads"
  # photos, videos or both
  media_type: "both"
  # How many recent messages to scan
  limit: 500
  # newest or oldest
  order: "oldest"
  # Persist the ledger after this many downloads. 0 saves only at the end
  flush_every: 25
  # Extension for documents without a usable name or MIME type
  default_extension: ".bin"

# Request pacing towards Telegram
rate_limit:
  requests_per_second: 5
  burst: 5

# Retries of transient network errors. Flood waits are always waited out.
retry:
  max_attempts: 3
  base_delay: 1s
  max_delay: 60s
  multiplier: 2.0 # 1 retries at a constant base_delay
  jitter_factor: 0.1

notifications:
  enabled: true
  on_complete: true
  on_error: true

logging:
  # debug, info, warn, error
  level: "info"
  # JSON log file. Leave empty to log to the console
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = ".tgmedia.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		return fmt.Errorf("%s already exists", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o600); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Add your api_id and api_hash, or run 'tgmedia auth login'")
	fmt.Println("2. Run 'tgmedia config validate' to check the configuration")
	fmt.Println("3. Start downloading with 'tgmedia download @channelname'")
	return nil
}

// maskedConfig returns a copy of cfg that is safe to print
func maskedConfig(cfg *config.Config) config.Config {
	display := *cfg
	if display.Telegram.APIHash != "" {
		display.Telegram.APIHash = auth.SanitizeProfile(&auth.Profile{APIHash: display.Telegram.APIHash}).APIHash
	}
	return display
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	display := maskedConfig(cfg)
	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (TGMEDIA_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (searched in default locations)")
	}
	fmt.Printf("4. %s\n", config.LegacyConfigFile)
	fmt.Println("5. Default values")
	return nil
}

// configWarnings lists settings that are valid but probably not intended
func configWarnings(cfg *config.Config) []string {
	var warnings []string
	if !cfg.HasCredentials() {
		warnings = append(warnings, "Telegram API credentials not configured (run 'tgmedia auth login')")
	}
	if cfg.Download.FlushEvery == 0 {
		warnings = append(warnings, "flush_every is 0, progress is only saved at the end of a pass")
	}
	if cfg.RateLimit.RequestsPerSecond > 20 {
		warnings = append(warnings, "requests_per_second above 20 often triggers flood waits")
	}
	return warnings
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		for _, candidate := range []string{
			".tgmedia.yaml",
			".tgmedia.yml",
			filepath.Join(os.Getenv("HOME"), ".config", "tgmedia", "config.yaml"),
			filepath.Join(os.Getenv("HOME"), ".tgmedia.yaml"),
		} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return fmt.Errorf("no configuration file found, specify one with --config")
		}
	}

	ui.PrintInfo("Validating configuration", path)

	cfg, err := config.Load(path, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		return err
	}

	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0o755); err != nil {
			return fmt.Errorf("cannot create log directory: %w", err)
		}
	}

	if warnings := configWarnings(cfg); len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Output directory: %s\n", cfg.Download.BaseDirectory)
	fmt.Printf("  Media type: %s, limit %d, order %s\n", cfg.Download.MediaType, cfg.Download.Limit, cfg.Download.Order)
	fmt.Printf("  Rate limit: %.1f requests/second (burst %d)\n", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	fmt.Printf("  Max retries: %d\n", cfg.Retry.MaxAttempts)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}
