package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFileStorage_Save(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(tempDir, zap.NewNop())

	t.Run("saves file successfully", func(t *testing.T) {
		content := []byte("PK workbook bytes")

		path, err := fs.Save("leave_balances.xlsx", content)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tempDir, "leave_balances.xlsx"), path)
		saved, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, content, saved)
	})

	t.Run("creates parent directories", func(t *testing.T) {
		path, err := fs.Save(filepath.Join("2025", "10", "snapshot.xlsx"), []byte("content"))

		require.NoError(t, err)
		assert.FileExists(t, path)
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		_, err := fs.Save("overwrite.txt", []byte("original"))
		require.NoError(t, err)
		path, err := fs.Save("overwrite.txt", []byte("updated"))
		require.NoError(t, err)

		content, _ := os.ReadFile(path)
		assert.Equal(t, []byte("updated"), content)
	})

	t.Run("leaves no temporary files", func(t *testing.T) {
		entries, err := os.ReadDir(tempDir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotEqual(t, '.', e.Name()[0], e.Name())
		}
	})

	t.Run("saves empty file", func(t *testing.T) {
		path, err := fs.Save("empty.txt", []byte{})
		require.NoError(t, err)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, int64(0), info.Size())
	})

	t.Run("rejects traversal", func(t *testing.T) {
		_, err := fs.Save(filepath.Join("..", "escape.xlsx"), []byte("x"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "escapes base directory")
		assert.NoFileExists(t, filepath.Join(filepath.Dir(tempDir), "escape.xlsx"))
	})
}

func TestLocalFileStorage_ValidatePath(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(tempDir, zap.NewNop())

	t.Run("accepts valid path within base", func(t *testing.T) {
		assert.NoError(t, fs.ValidatePath(filepath.Join(tempDir, "exports", "file.xlsx")))
	})

	t.Run("rejects path outside base directory", func(t *testing.T) {
		err := fs.ValidatePath("/etc/passwd")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "escapes base directory")
	})

	t.Run("rejects path traversal attempt", func(t *testing.T) {
		assert.Error(t, fs.ValidatePath(filepath.Join(tempDir, "..", "..", "etc", "passwd")))
	})

	t.Run("rejects path with similar prefix", func(t *testing.T) {
		err := fs.ValidatePath(tempDir + "_malicious/file.txt")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "escapes base directory")
	})

	t.Run("rejects the base directory itself", func(t *testing.T) {
		assert.Error(t, fs.ValidatePath(tempDir))
	})
}
