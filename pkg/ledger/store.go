package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"tgmedia/pkg/logger"
)

// writers serializes saves to the same ledger path within the process
var writers sync.Map // path -> *sync.Mutex

// renameFile replaces the ledger with the fully written temp file
var renameFile = os.Rename

func lockFor(path string) *sync.Mutex {
	mu, _ := writers.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Store reads and writes the ledger file of one chat folder
type Store struct {
	path   string
	logger logger.Logger
}

// NewStore creates a store for the ledger inside chatDir
func NewStore(chatDir string, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNopLogger()
	}
	path := filepath.Join(chatDir, FileName)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &Store{path: path, logger: log}
}

// Path returns the ledger file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the ledger. A missing or malformed file yields an empty ledger.
func (s *Store) Load() *Ledger {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WarnWithFields("Ledger unreadable, starting empty", map[string]interface{}{
				"path":  s.path,
				"error": err.Error(),
			})
		}
		return New()
	}

	l := New()
	if err := json.Unmarshal(data, l); err != nil {
		s.logger.WarnWithFields("Ledger malformed, starting empty", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
		return New()
	}

	s.logger.DebugWithFields("Ledger loaded", map[string]interface{}{
		"path":      s.path,
		"chat_name": l.ChatName,
		"count":     l.Len(),
	})
	return l
}

// Save writes the ledger atomically: a temp file in the same directory is
// synced and then renamed over the previous ledger.
func (s *Store) Save(l *Ledger) error {
	mu := lockFor(s.path)
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	file, err := os.CreateTemp(filepath.Dir(s.path), FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary ledger file: %w", err)
	}
	tempPath := file.Name()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(l); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync ledger file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close ledger file: %w", err)
	}

	if err := renameFile(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}

	s.logger.DebugWithFields("Ledger saved", map[string]interface{}{
		"path":  s.path,
		"count": l.Len(),
	})
	return nil
}
