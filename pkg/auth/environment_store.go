package auth

import (
	"os"
	"strconv"
	"time"
)

// Environment variables read by EnvironmentStore
const (
	EnvAPIID   = "TGMEDIA_API_ID"
	EnvAPIHash = "TGMEDIA_API_HASH"
	EnvPhone   = "TGMEDIA_PHONE"
)

// EnvironmentStore implements CredentialStore using environment variables.
// It is read-only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(profile *Profile) error {
	return ErrStoreUnavailable
}

// Retrieve builds a profile from the environment. The name defaults to "env".
func (e *EnvironmentStore) Retrieve(name string) (*Profile, error) {
	apiID, err := strconv.Atoi(os.Getenv(EnvAPIID))
	apiHash := os.Getenv(EnvAPIHash)
	if err != nil || apiID <= 0 || apiHash == "" {
		return nil, ErrCredentialsNotFound
	}

	if name == "" {
		name = "env"
	}

	return &Profile{
		Name:         name,
		APIID:        apiID,
		APIHash:      apiHash,
		Phone:        os.Getenv(EnvPhone),
		LastModified: time.Now(),
	}, nil
}

// List returns a single profile if the environment carries credentials
func (e *EnvironmentStore) List() ([]*Profile, error) {
	profile, err := e.Retrieve("")
	if err != nil {
		return []*Profile{}, nil
	}
	return []*Profile{profile}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(name string) bool {
	_, err := e.Retrieve(name)
	return err == nil
}
