package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LegacyConfigFile is the credentials file written by earlier versions of the tool
const LegacyConfigFile = "config.json"

// Config holds all configuration options for the media downloader
type Config struct {
	// Telegram API credentials and session
	Telegram TelegramConfig `yaml:"telegram" json:"telegram"`

	// Download pass settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Request pacing
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry behaviour for transient transport errors
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TelegramConfig holds Telegram-specific configuration
type TelegramConfig struct {
	APIID       int    `yaml:"api_id" json:"api_id"`
	APIHash     string `yaml:"api_hash" json:"api_hash"`
	Phone       string `yaml:"phone" json:"phone"`
	SessionFile string `yaml:"session_file" json:"session_file"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	BaseDirectory    string `yaml:"base_directory" json:"base_directory"`
	MediaType        string `yaml:"media_type" json:"media_type"`
	Limit            int    `yaml:"limit" json:"limit"`
	Order            string `yaml:"order" json:"order"`
	FlushEvery       int    `yaml:"flush_every" json:"flush_every"`
	DefaultExtension string `yaml:"default_extension" json:"default_extension"`
}

// RateLimitConfig holds request pacing configuration
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// RetryConfig holds retry configuration for transient errors
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay    time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay     time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier   float64       `yaml:"multiplier" json:"multiplier"`
	JitterFactor float64       `yaml:"jitter_factor" json:"jitter_factor"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	OnComplete bool `yaml:"on_complete" json:"on_complete"`
	OnError    bool `yaml:"on_error" json:"on_error"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			SessionFile: "",
		},
		Download: DownloadConfig{
			BaseDirectory:    "downloads",
			MediaType:        "both",
			Limit:            500,
			Order:            "oldest",
			FlushEvery:       25,
			DefaultExtension: ".bin",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			BaseDelay:    1 * time.Second,
			MaxDelay:     60 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		Notifications: NotificationConfig{
			Enabled:    true,
			OnComplete: true,
			OnError:    true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	// Telegram credentials
	if apiID := os.Getenv("TGMEDIA_API_ID"); apiID != "" {
		val, err := strconv.Atoi(strings.TrimSpace(apiID))
		if err != nil {
			errs = append(errs, fmt.Errorf("TGMEDIA_API_ID: %w", err))
		} else {
			c.Telegram.APIID = val
		}
	}
	if apiHash := os.Getenv("TGMEDIA_API_HASH"); apiHash != "" {
		c.Telegram.APIHash = apiHash
	}
	if phone := os.Getenv("TGMEDIA_PHONE"); phone != "" {
		c.Telegram.Phone = phone
	}
	if session := os.Getenv("TGMEDIA_SESSION_FILE"); session != "" {
		c.Telegram.SessionFile = session
	}

	// Download pass
	if outputDir := os.Getenv("TGMEDIA_OUTPUT_DIR"); outputDir != "" {
		c.Download.BaseDirectory = outputDir
	}
	if mediaType := os.Getenv("TGMEDIA_MEDIA_TYPE"); mediaType != "" {
		c.Download.MediaType = strings.ToLower(mediaType)
	}
	if order := os.Getenv("TGMEDIA_ORDER"); order != "" {
		c.Download.Order = strings.ToLower(order)
	}
	if limit := os.Getenv("TGMEDIA_LIMIT"); limit != "" {
		var val int
		fmt.Sscanf(limit, "%d", &val)
		if val > 0 {
			c.Download.Limit = val
		}
	}
	if flush := os.Getenv("TGMEDIA_FLUSH_EVERY"); flush != "" {
		var val int
		if _, err := fmt.Sscanf(flush, "%d", &val); err == nil && val >= 0 {
			c.Download.FlushEvery = val
		}
	}

	// Rate limiting
	if rps := os.Getenv("TGMEDIA_REQUESTS_PER_SECOND"); rps != "" {
		val, err := strconv.ParseFloat(rps, 64)
		if err == nil && val > 0 {
			c.RateLimit.RequestsPerSecond = val
		}
	}

	// Notifications
	if notifEnabled := os.Getenv("TGMEDIA_NOTIFICATIONS_ENABLED"); notifEnabled != "" {
		c.Notifications.Enabled = strings.ToLower(notifEnabled) == "true"
	}

	// Logging level
	if logLevel := os.Getenv("TGMEDIA_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("TGMEDIA_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// legacyCredentials mirrors the config.json format of earlier versions
type legacyCredentials struct {
	APIID   int    `json:"api_id"`
	APIHash string `json:"api_hash"`
}

// LoadLegacy fills missing API credentials from a config.json file.
// A missing file is not an error.
func (c *Config) LoadLegacy(path string) error {
	if c.Telegram.APIID != 0 && c.Telegram.APIHash != "" {
		return nil
	}
	if path == "" {
		path = LegacyConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var legacy legacyCredentials
	if err := json.Unmarshal(data, &legacy); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if c.Telegram.APIID == 0 {
		c.Telegram.APIID = legacy.APIID
	}
	if c.Telegram.APIHash == "" {
		c.Telegram.APIHash = legacy.APIHash
	}
	return nil
}

// SaveLegacy writes the API credentials in the config.json format
func SaveLegacy(path string, apiID int, apiHash string) error {
	if path == "" {
		path = LegacyConfigFile
	}
	data, err := json.MarshalIndent(legacyCredentials{APIID: apiID, APIHash: apiHash}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".tgmedia.yaml",
		".tgmedia.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "tgmedia", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "tgmedia", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".tgmedia.yaml"),
		filepath.Join(os.Getenv("HOME"), ".tgmedia.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// HasCredentials reports whether both API id and hash are set
func (c *Config) HasCredentials() bool {
	return c.Telegram.APIID != 0 && c.Telegram.APIHash != ""
}

// Validate checks if the configuration is valid. Credentials are checked
// separately by the commands that need them.
func (c *Config) Validate() error {
	var errs []error

	if c.Telegram.APIID < 0 {
		errs = append(errs, errors.New("telegram api_id cannot be negative"))
	}

	// Validate download settings
	if c.Download.BaseDirectory == "" {
		errs = append(errs, errors.New("download base directory is required"))
	}
	validMediaTypes := map[string]bool{
		"photos": true, "videos": true, "both": true,
	}
	if !validMediaTypes[strings.ToLower(c.Download.MediaType)] {
		errs = append(errs, fmt.Errorf("invalid media type %q (photos, videos, both)", c.Download.MediaType))
	}
	validOrders := map[string]bool{
		"newest": true, "oldest": true,
	}
	if !validOrders[strings.ToLower(c.Download.Order)] {
		errs = append(errs, fmt.Errorf("invalid order %q (newest, oldest)", c.Download.Order))
	}
	if c.Download.Limit <= 0 {
		errs = append(errs, errors.New("download limit must be positive"))
	}
	if c.Download.FlushEvery < 0 {
		errs = append(errs, errors.New("flush_every cannot be negative"))
	}
	if c.Download.DefaultExtension != "" && !strings.HasPrefix(c.Download.DefaultExtension, ".") {
		errs = append(errs, errors.New("default extension must start with a dot"))
	}

	// Validate rate limiting
	if c.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("requests per second must be positive"))
	}
	if c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("burst must be positive"))
	}
	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, errors.New("max retry attempts cannot be negative"))
	}

	// Validate logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if apiID, ok := flags["api-id"].(int); ok && apiID > 0 {
		c.Telegram.APIID = apiID
	}
	if apiHash, ok := flags["api-hash"].(string); ok && apiHash != "" {
		c.Telegram.APIHash = apiHash
	}
	if session, ok := flags["session"].(string); ok && session != "" {
		c.Telegram.SessionFile = session
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Download.BaseDirectory = outputDir
	}
	if mediaType, ok := flags["type"].(string); ok && mediaType != "" {
		c.Download.MediaType = strings.ToLower(mediaType)
	}
	if order, ok := flags["order"].(string); ok && order != "" {
		c.Download.Order = strings.ToLower(order)
	}
	if limit, ok := flags["limit"].(int); ok && limit > 0 {
		c.Download.Limit = limit
	}
	if flush, ok := flags["flush-every"].(int); ok && flush >= 0 {
		c.Download.FlushEvery = flush
	}
	if notify, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = notify
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// SessionPath returns the session file location, defaulting to the data directory
func (c *Config) SessionPath() (string, error) {
	if c.Telegram.SessionFile != "" {
		return c.Telegram.SessionFile, nil
	}
	dataDir, err := DataDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "session.json"), nil
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".tgmedia.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Fill credentials from the legacy file when nothing else provided them
	if err := config.LoadLegacy(""); err != nil {
		return nil, fmt.Errorf("failed to load legacy credentials: %w", err)
	}

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// DataDirectory returns the per-user data directory, creating it if needed
func DataDirectory() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, "Library", "Application Support", "tgmedia")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		dataDir = filepath.Join(appData, "tgmedia")
	default:
		// Use XDG_DATA_HOME if set, otherwise ~/.local/share
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, "tgmedia")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, ".local", "share", "tgmedia")
		}
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}
