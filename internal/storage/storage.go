// Package storage saves uploaded files and hands back their public URL.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedType is returned for files whose extension is not an allowed image type.
var ErrUnsupportedType = errors.New("storage: unsupported file type")

// MaxUploadBytes caps a single upload.
const MaxUploadBytes = 8 << 20

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".svg":  true,
}

// Local stores files in Dir and serves them under BaseURL + "/uploads/".
type Local struct {
	Dir     string
	BaseURL string
}

func NewLocal(dir, baseURL string) *Local {
	return &Local{Dir: dir, BaseURL: strings.TrimSuffix(baseURL, "/")}
}

// Save copies r into a new file named with a random uuid and the original
// extension, and returns its public URL.
func (l *Local) Save(originalName string, r io.Reader) (string, error) {
	// 1. Check the extension
	ext := strings.ToLower(filepath.Ext(originalName))
	if !imageExtensions[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	// 2. Create the upload directory if it doesn't exist
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	// 3. Generate a safe unique filename (uuid + extension)
	name := uuid.NewString() + ext
	f, err := os.OpenFile(filepath.Join(l.Dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}

	// 4. Copy the content, refusing anything over the limit
	n, err := io.Copy(f, io.LimitReader(r, MaxUploadBytes+1))
	closeErr := f.Close()
	if err == nil && n > MaxUploadBytes {
		err = fmt.Errorf("upload exceeds %d bytes", MaxUploadBytes)
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(filepath.Join(l.Dir, name))
		return "", fmt.Errorf("write upload: %w", err)
	}

	// 5. Return the public URL
	return l.URL(name), nil
}

// URL is the public address of a stored file.
func (l *Local) URL(name string) string {
	return fmt.Sprintf("%s/uploads/%s", l.BaseURL, name)
}
