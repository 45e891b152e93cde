package file_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/asfe/pkg/adapters/file"
	"github.com/aretw0/asfe/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "network.json")

	err := file.WriteAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "first")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	// Overwrite
	require.NoError(t, file.WriteAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "second")
		return err
	}))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestWriteAtomic_FailedWriteLeavesPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "network.json")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))

	boom := errors.New("boom")
	err := file.WriteAtomic(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteAtomic_FailedWriteCreatesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "network.json")
	err := file.WriteAtomic(path, func(w io.Writer) error { return errors.New("boom") })
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestHistoryStore_Contract(t *testing.T) {
	store := file.NewHistoryStore(t.TempDir())
	ports.RunHistoryStoreContract(t, store)
}
