package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"sort"

	"github.com/zalando/go-keyring"
)

const (
	keyringService  = "tgmedia"
	keyringPrefix   = "profile_"
	keyringIndexKey = "profiles"
)

// KeyringStore implements CredentialStore using the system keychain. The
// keychain cannot enumerate entries, so profile names are kept in an index
// entry next to them.
type KeyringStore struct{}

// NewKeyringStore creates a new keyring-based credential store
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	err := keyring.Set(keyringService, testKey, "test")
	if err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves a profile to the system keychain
func (k *KeyringStore) Store(profile *Profile) error {
	if profile == nil || profile.Name == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := keyring.Set(keyringService, keyringPrefix+profile.Name, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	names := k.names()
	if !slices.Contains(names, profile.Name) {
		names = append(names, profile.Name)
		if err := k.saveNames(names); err != nil {
			return err
		}
	}
	return nil
}

// Retrieve gets a profile from the system keychain
func (k *KeyringStore) Retrieve(name string) (*Profile, error) {
	if name == "" {
		return nil, ErrInvalidCredentials
	}

	data, err := keyring.Get(keyringService, keyringPrefix+name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return &profile, nil
}

// List returns the profiles named in the index
func (k *KeyringStore) List() ([]*Profile, error) {
	var profiles []*Profile
	for _, name := range k.names() {
		profile, err := k.Retrieve(name)
		if err != nil {
			continue
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// Delete removes a profile from the system keychain
func (k *KeyringStore) Delete(name string) error {
	if name == "" {
		return ErrInvalidCredentials
	}

	err := keyring.Delete(keyringService, keyringPrefix+name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	names := k.names()
	kept := names[:0]
	for _, n := range names {
		if n != name {
			kept = append(kept, n)
		}
	}
	return k.saveNames(kept)
}

// Exists checks if a profile is stored in the keychain
func (k *KeyringStore) Exists(name string) bool {
	if name == "" {
		return false
	}
	_, err := keyring.Get(keyringService, keyringPrefix+name)
	return err == nil
}

func (k *KeyringStore) names() []string {
	data, err := keyring.Get(keyringService, keyringIndexKey)
	if err != nil {
		return nil
	}
	var names []string
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil
	}
	return names
}

func (k *KeyringStore) saveNames(names []string) error {
	sort.Strings(names)
	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to marshal profile index: %w", err)
	}
	if err := keyring.Set(keyringService, keyringIndexKey, string(data)); err != nil {
		return fmt.Errorf("failed to store profile index: %w", err)
	}
	return nil
}

// IsKeyringAvailable reports whether a system keychain is likely present.
// On Linux the Secret Service needs a D-Bus session.
func IsKeyringAvailable() bool {
	switch runtime.GOOS {
	case "darwin", "windows":
		return true
	case "linux", "freebsd", "openbsd":
		return os.Getenv("DBUS_SESSION_BUS_ADDRESS") != ""
	default:
		return false
	}
}
