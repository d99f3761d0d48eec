package loaders

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
)

func writeTestFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestPlaintextLoader_Load(t *testing.T) {
	loader := NewPlaintext()
	ctx := context.Background()

	t.Run("loads text file", func(t *testing.T) {
		path := writeTestFile(t, t.TempDir(), "notes.txt", []byte("Some plain notes.\nSecond line."))

		doc, err := loader.Load(ctx, path)
		require.NoError(t, err)
		require.NotNil(t, doc)

		assert.Equal(t, "Some plain notes.\nSecond line.", doc.RawText)
		assert.Equal(t, "txt", doc.Format)
		assert.True(t, filepath.IsAbs(doc.Path))
		assert.Equal(t, doc.Path, doc.SourceID)
		assert.Len(t, doc.ContentHash, 64)
	})

	t.Run("hash is stable across loads", func(t *testing.T) {
		path := writeTestFile(t, t.TempDir(), "stable.txt", []byte("unchanged content"))

		first, err := loader.Load(ctx, path)
		require.NoError(t, err)
		second, err := loader.Load(ctx, path)
		require.NoError(t, err)

		assert.Equal(t, first.ContentHash, second.ContentHash)
		assert.Equal(t, first.SourceID, second.SourceID)
	})

	t.Run("hash changes with content", func(t *testing.T) {
		dir := t.TempDir()
		path := writeTestFile(t, dir, "changing.txt", []byte("version one"))

		first, err := loader.Load(ctx, path)
		require.NoError(t, err)

		writeTestFile(t, dir, "changing.txt", []byte("version two"))
		second, err := loader.Load(ctx, path)
		require.NoError(t, err)

		assert.NotEqual(t, first.ContentHash, second.ContentHash)
	})

	t.Run("missing file fails with ErrLoad", func(t *testing.T) {
		doc, err := loader.Load(ctx, filepath.Join(t.TempDir(), "missing.txt"))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrLoad)
		assert.Nil(t, doc)
	})

	t.Run("invalid UTF-8 fails with ErrLoad", func(t *testing.T) {
		path := writeTestFile(t, t.TempDir(), "binary.txt", []byte{0xff, 0xfe, 0x00, 0x81})

		doc, err := loader.Load(ctx, path)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrLoad)
		assert.Nil(t, doc)
	})

	t.Run("empty file loads with empty text", func(t *testing.T) {
		path := writeTestFile(t, t.TempDir(), "empty.txt", nil)

		doc, err := loader.Load(ctx, path)
		require.NoError(t, err)
		assert.Empty(t, doc.RawText)
		assert.NotEmpty(t, doc.ContentHash)
	})
}

func TestPlaintextLoader_Extensions(t *testing.T) {
	loader := NewPlaintext()
	assert.Contains(t, loader.Extensions(), "txt")
	assert.Contains(t, loader.Extensions(), "log")
	assert.Equal(t, "txt", loader.Format())
}
