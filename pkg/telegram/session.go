package telegram

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/gotd/td/session"
)

// SafeFileSessionStorage implements session.Storage with atomic writes.
// A missing, empty or corrupted file loads as session.ErrNotFound so the
// client starts a fresh sign-in instead of failing.
type SafeFileSessionStorage struct {
	Path string
	mux  sync.Mutex
}

func (s *SafeFileSessionStorage) LoadSession(_ context.Context) ([]byte, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || !json.Valid(data) {
		return nil, session.ErrNotFound
	}
	return data, nil
}

func (s *SafeFileSessionStorage) StoreSession(_ context.Context, data []byte) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, s.Path)
}

// Remove deletes the stored session, signing the tool out locally
func (s *SafeFileSessionStorage) Remove() error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
