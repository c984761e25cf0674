package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveWritesFileAndReturnsURL(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(filepath.Join(dir, "uploads"), "https://api.hidaaya.store/")

	url, err := l.Save("Scarf Photo.JPG", strings.NewReader("image-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "https://api.hidaaya.store/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	name := strings.TrimPrefix(url, "https://api.hidaaya.store/uploads/")
	data, err := os.ReadFile(filepath.Join(dir, "uploads", name))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestSaveRejectsNonImages(t *testing.T) {
	l := NewLocal(t.TempDir(), "http://localhost:8080")
	_, err := l.Save("payload.exe", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSaveRejectsOversizedUpload(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(dir, "http://localhost:8080")

	_, err := l.Save("big.png", bytes.NewReader(make([]byte, MaxUploadBytes+1)))
	assert.Error(t, err)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}
