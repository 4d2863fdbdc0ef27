package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func testProfile(name string) *Profile {
	return &Profile{
		Name:    name,
		APIID:   123456,
		APIHash: "0123456789abcdef0123456789abcdef",
	}
}

func TestManager(t *testing.T) {
	manager, mockStore := NewMockManager()

	require.NoError(t, manager.Store(testProfile("work")))

	retrieved, err := manager.Retrieve("work")
	require.NoError(t, err)
	assert.Equal(t, 123456, retrieved.APIID)
	assert.False(t, retrieved.LastModified.IsZero())

	profiles, err := manager.List()
	require.NoError(t, err)
	assert.Len(t, profiles, 1)

	require.NoError(t, manager.Delete("work"))
	_, err = manager.Retrieve("work")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
	assert.Equal(t, 0, mockStore.Count())

	err = manager.Delete("work")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestManagerStoreValidation(t *testing.T) {
	manager, _ := NewMockManager()

	tests := []struct {
		name    string
		profile *Profile
	}{
		{"nil", nil},
		{"missing id", &Profile{Name: "a", APIHash: "hash"}},
		{"negative id", &Profile{Name: "a", APIID: -1, APIHash: "hash"}},
		{"missing hash", &Profile{Name: "a", APIID: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := manager.Store(tt.profile)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}

	t.Run("empty name becomes default", func(t *testing.T) {
		p := testProfile("")
		require.NoError(t, manager.Store(p))
		assert.Equal(t, DefaultProfile, p.Name)
	})
}

func TestManagerFallback(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("keychain locked")
	backup := NewMockStore()
	manager := NewManagerWithStores(broken, backup)

	require.NoError(t, manager.Store(testProfile("default")))
	assert.Equal(t, 0, broken.Count())
	assert.Equal(t, 1, backup.Count())

	backup.StoreError = errors.New("disk full")
	err := manager.Store(testProfile("other"))
	assert.ErrorContains(t, err, "disk full")
}

func TestManagerListPrefersNewest(t *testing.T) {
	first := NewMockStore()
	second := NewMockStore()

	old := testProfile("shared")
	old.APIID = 1
	old.LastModified = time.Now().Add(-time.Hour)
	newer := testProfile("shared")
	newer.APIID = 2
	newer.LastModified = time.Now()

	require.NoError(t, first.Store(old))
	require.NoError(t, second.Store(newer))
	require.NoError(t, second.Store(testProfile("alpha")))

	profiles, err := NewManagerWithStores(first, second).List()
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "alpha", profiles[0].Name)
	assert.Equal(t, 2, profiles[1].APIID)
}

func TestRetrieveDefault(t *testing.T) {
	t.Run("environment wins", func(t *testing.T) {
		t.Setenv(EnvAPIID, "42")
		t.Setenv(EnvAPIHash, "envhash")
		store := NewMockStore()
		require.NoError(t, store.Store(testProfile(DefaultProfile)))

		profile, err := NewManagerWithStores(store, NewEnvironmentStore()).RetrieveDefault()
		require.NoError(t, err)
		assert.Equal(t, 42, profile.APIID)
	})

	t.Run("default profile", func(t *testing.T) {
		t.Setenv(EnvAPIID, "")
		store := NewMockStore()
		require.NoError(t, store.Store(testProfile("aaa")))
		require.NoError(t, store.Store(testProfile(DefaultProfile)))

		profile, err := NewManagerWithStores(store, NewEnvironmentStore()).RetrieveDefault()
		require.NoError(t, err)
		assert.Equal(t, DefaultProfile, profile.Name)
	})

	t.Run("first by name", func(t *testing.T) {
		t.Setenv(EnvAPIID, "")
		store := NewMockStore()
		require.NoError(t, store.Store(testProfile("zeta")))
		require.NoError(t, store.Store(testProfile("beta")))

		profile, err := NewManagerWithStores(store).RetrieveDefault()
		require.NoError(t, err)
		assert.Equal(t, "beta", profile.Name)
	})

	t.Run("nothing stored", func(t *testing.T) {
		t.Setenv(EnvAPIID, "")
		_, err := NewManagerWithStores(NewMockStore(), NewEnvironmentStore()).RetrieveDefault()
		assert.ErrorIs(t, err, ErrCredentialsNotFound)
	})
}

func TestEncryptedFileStore(t *testing.T) {
	t.Setenv(PassphraseEnv, "test_passphrase_123")
	path := filepath.Join(t.TempDir(), "creds", "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	_, err = store.Retrieve("default")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	profile := testProfile("default")
	profile.Phone = "+15550100"
	require.NoError(t, store.Store(profile))
	require.NoError(t, store.Store(testProfile("second")))

	retrieved, err := store.Retrieve("default")
	require.NoError(t, err)
	assert.Equal(t, profile.APIHash, retrieved.APIHash)
	assert.Equal(t, "+15550100", retrieved.Phone)
	assert.True(t, store.Exists("second"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), profile.APIHash)
	assert.NotContains(t, string(content), "+15550100")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	t.Run("wrong passphrase cannot read", func(t *testing.T) {
		t.Setenv(PassphraseEnv, "another_passphrase")
		other, err := NewEncryptedFileStore(path)
		require.NoError(t, err)
		_, err = other.Retrieve("default")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrCredentialsNotFound)
	})

	require.NoError(t, store.Delete("second"))
	require.NoError(t, store.Delete("default"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "file is removed with the last profile")
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv(EnvAPIID, "777")
	t.Setenv(EnvAPIHash, "envhash")
	t.Setenv(EnvPhone, "+15550101")

	store := NewEnvironmentStore()
	profile, err := store.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, "env", profile.Name)
	assert.Equal(t, 777, profile.APIID)
	assert.Equal(t, "+15550101", profile.Phone)

	assert.ErrorIs(t, store.Store(profile), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("env"), ErrStoreUnavailable)

	t.Setenv(EnvAPIID, "not-a-number")
	_, err = store.Retrieve("")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
	profiles, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	require.NoError(t, err)

	require.NoError(t, store.Store(testProfile("work")))
	require.NoError(t, store.Store(testProfile("home")))
	require.NoError(t, store.Store(testProfile("work")))

	profiles, err := store.List()
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "home", profiles[0].Name)
	assert.Equal(t, "work", profiles[1].Name)

	require.NoError(t, store.Delete("work"))
	assert.False(t, store.Exists("work"))
	assert.ErrorIs(t, store.Delete("work"), ErrCredentialsNotFound)

	profiles, err = store.List()
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}

func TestSanitizeProfile(t *testing.T) {
	profile := testProfile("default")
	masked := SanitizeProfile(profile)
	assert.Equal(t, "0123...cdef", masked.APIHash)
	assert.Equal(t, profile.APIID, masked.APIID)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", profile.APIHash, "original is untouched")
	assert.Equal(t, "********", maskString("short"))
	assert.Nil(t, SanitizeProfile(nil))
}

func TestGuides(t *testing.T) {
	var buf bytes.Buffer
	ShowAPICredentialsGuide(&buf)
	assert.Contains(t, buf.String(), "https://my.telegram.org")

	buf.Reset()
	ShowQuickGuide(&buf)
	assert.True(t, strings.Contains(buf.String(), "api_hash"))
}
