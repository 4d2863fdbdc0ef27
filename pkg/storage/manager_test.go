package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "downloads", "@chan")
	m, err := NewManager(root)
	require.NoError(t, err)
	assert.Equal(t, root, m.Root())

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestGroupDir(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	dir, err := m.GroupDir(777)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(m.Root(), "group_777"), dir)

	again, err := m.GroupDir(777)
	require.NoError(t, err, "existing group folder is reused")
	assert.Equal(t, dir, again)
}

func TestWriteFile(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	path := filepath.Join(m.Root(), "msg_1_file.jpg")

	n, err := m.WriteFile(path, func(w io.Writer) error {
		_, err := io.Copy(w, strings.NewReader("jpeg-bytes"))
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	assert.True(t, m.Exists(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestWriteFileFailureLeavesNothing(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	path := filepath.Join(m.Root(), "msg_2_file.mp4")
	boom := errors.New("connection reset")

	_, err = m.WriteFile(path, func(w io.Writer) error {
		w.Write([]byte("partial"))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, m.Exists(path))

	entries, err := os.ReadDir(m.Root())
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary file must be removed")
}

func TestExists(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	assert.False(t, m.Exists(filepath.Join(m.Root(), "missing")))

	dir, err := m.GroupDir(1)
	require.NoError(t, err)
	assert.False(t, m.Exists(dir), "directories are not files")
}
