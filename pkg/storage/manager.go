package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"tgmedia/pkg/naming"
)

// Manager handles file placement under one chat folder
type Manager struct {
	root string
}

// NewManager creates a storage manager rooted at the chat folder,
// creating it if needed
func NewManager(root string) (*Manager, error) {
	m := &Manager{root: root}
	if err := m.EnsureDir(root); err != nil {
		return nil, err
	}
	return m, nil
}

// Root returns the chat folder
func (m *Manager) Root() string {
	return m.root
}

// EnsureDir creates dir and any missing parents
func (m *Manager) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// GroupDir returns the album folder for groupID, creating it if absent
func (m *Manager) GroupDir(groupID int64) (string, error) {
	dir := filepath.Join(m.root, naming.GroupDirName(groupID))
	if err := m.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// Exists reports whether a regular file is present at path
func (m *Manager) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// WriteFile creates path with the bytes produced by fill. Content goes to a
// temporary file first and is renamed into place only when fill succeeds,
// so a failed download never leaves a file behind.
func (m *Manager) WriteFile(path string, fill func(w io.Writer) error) (int64, error) {
	out, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := out.Name()

	counter := &countingWriter{w: out}
	fillErr := fill(counter)
	closeErr := out.Close()

	if fillErr != nil {
		os.Remove(tempFile)
		return 0, fillErr
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return 0, fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return 0, fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return counter.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
