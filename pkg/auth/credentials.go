package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"
)

// DefaultProfile is the profile name used when none is given
const DefaultProfile = "default"

// Profile holds the Telegram API credentials of one application
// registered at my.telegram.org
type Profile struct {
	Name         string    `json:"name"`
	APIID        int       `json:"api_id"`
	APIHash      string    `json:"api_hash"`
	Phone        string    `json:"phone,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving credentials
type CredentialStore interface {
	// Store saves a profile, replacing one with the same name
	Store(profile *Profile) error

	// Retrieve gets the profile with the given name
	Retrieve(name string) (*Profile, error)

	// List returns all stored profiles
	List() ([]*Profile, error)

	// Delete removes the profile with the given name
	Delete(name string) error

	// Exists checks if a profile is stored under name
	Exists(name string) bool
}

// Manager handles credential storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a credential manager backed by the system keychain
// when available, an encrypted file, and the environment
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if IsKeyringAvailable() {
		if keyringStore, err := NewKeyringStore(); err == nil {
			stores = append(stores, keyringStore)
		}
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a Manager over the given stores, tried in order
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Validate checks that a profile carries usable credentials
func (p *Profile) Validate() error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, errors.New("profile name is required"))
	}
	if p.APIID <= 0 {
		errs = append(errs, errors.New("api id must be a positive number"))
	}
	if p.APIHash == "" {
		errs = append(errs, errors.New("api hash is required"))
	}
	return errors.Join(errs...)
}

// Store saves the profile in the first store that accepts it
func (m *Manager) Store(profile *Profile) error {
	if profile == nil {
		return ErrInvalidCredentials
	}
	if profile.Name == "" {
		profile.Name = DefaultProfile
	}
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	profile.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(profile)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Retrieve gets the named profile from the first store that has it
func (m *Manager) Retrieve(name string) (*Profile, error) {
	for _, store := range m.stores {
		if profile, err := store.Retrieve(name); err == nil && profile != nil {
			return profile, nil
		}
	}
	return nil, fmt.Errorf("%w for profile %q", ErrCredentialsNotFound, name)
}

// RetrieveDefault prefers credentials from the environment, then the
// default profile, then the first stored profile by name
func (m *Manager) RetrieveDefault() (*Profile, error) {
	for _, store := range m.stores {
		if envStore, ok := store.(*EnvironmentStore); ok {
			if profile, err := envStore.Retrieve(""); err == nil {
				return profile, nil
			}
		}
	}

	if profile, err := m.Retrieve(DefaultProfile); err == nil {
		return profile, nil
	}

	profiles, err := m.List()
	if err == nil && len(profiles) > 0 {
		return profiles[0], nil
	}

	return nil, ErrCredentialsNotFound
}

// List returns all stored profiles sorted by name. When a profile exists in
// several stores the most recently modified copy wins.
func (m *Manager) List() ([]*Profile, error) {
	byName := make(map[string]*Profile)

	for _, store := range m.stores {
		profiles, err := store.List()
		if err != nil {
			continue
		}
		for _, profile := range profiles {
			if existing, ok := byName[profile.Name]; !ok || profile.LastModified.After(existing.LastModified) {
				byName[profile.Name] = profile
			}
		}
	}

	result := make([]*Profile, 0, len(byName))
	for _, profile := range byName {
		result = append(result, profile)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result, nil
}

// Delete removes the profile from every store that has it
func (m *Manager) Delete(name string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		err := store.Delete(name)
		switch {
		case err == nil:
			deleted = true
		case errors.Is(err, ErrCredentialsNotFound), errors.Is(err, ErrStoreUnavailable):
		default:
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("%w for profile %q", ErrCredentialsNotFound, name)
	}
	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "tgmedia")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "tgmedia")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "tgmedia")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "tgmedia")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// SanitizeProfile returns a copy of the profile with the API hash masked
func SanitizeProfile(profile *Profile) *Profile {
	if profile == nil {
		return nil
	}

	masked := *profile
	masked.APIHash = maskString(profile.APIHash)
	return &masked
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
