package auth

import (
	"sync"
)

// MockStore implements CredentialStore in memory for tests
type MockStore struct {
	profiles map[string]*Profile
	mu       sync.RWMutex

	// Error injection for testing
	StoreError    error
	RetrieveError error
	ListError     error
	DeleteError   error
}

// NewMockStore creates a new mock credential store
func NewMockStore() *MockStore {
	return &MockStore{
		profiles: make(map[string]*Profile),
	}
}

// Store saves a copy of the profile
func (m *MockStore) Store(profile *Profile) error {
	if m.StoreError != nil {
		return m.StoreError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if profile == nil || profile.Name == "" {
		return ErrInvalidCredentials
	}

	p := *profile
	m.profiles[profile.Name] = &p
	return nil
}

// Retrieve returns a copy of the named profile
func (m *MockStore) Retrieve(name string) (*Profile, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if name == "" {
		return nil, ErrInvalidCredentials
	}

	profile, exists := m.profiles[name]
	if !exists {
		return nil, ErrCredentialsNotFound
	}

	p := *profile
	return &p, nil
}

// List returns copies of all profiles
func (m *MockStore) List() ([]*Profile, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	profiles := make([]*Profile, 0, len(m.profiles))
	for _, profile := range m.profiles {
		p := *profile
		profiles = append(profiles, &p)
	}
	return profiles, nil
}

// Delete removes the named profile
func (m *MockStore) Delete(name string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if name == "" {
		return ErrInvalidCredentials
	}
	if _, exists := m.profiles[name]; !exists {
		return ErrCredentialsNotFound
	}

	delete(m.profiles, name)
	return nil
}

// Exists checks if a profile is stored under name
func (m *MockStore) Exists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.profiles[name]
	return exists
}

// Count returns the number of stored profiles
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.profiles)
}

// NewMockManager creates a Manager with a single mock store
func NewMockManager() (*Manager, *MockStore) {
	mockStore := NewMockStore()
	return NewManagerWithStores(mockStore), mockStore
}
