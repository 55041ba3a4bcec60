// Package files implements the binary file storage contract consumed by the
// import engine and the file-serving handler: store(name, mime, bytes) returns
// a stored name, and Open resolves a stored name back to a readable path.
package files

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks schedulemanager/internal/files Store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrEmptyFile is returned when a zero-length payload is stored.
	ErrEmptyFile = errors.New("empty file")
	// ErrDisallowedType is returned for MIME types or extensions outside the allowlist.
	ErrDisallowedType = errors.New("disallowed file type")
	// ErrInvalidName is returned when a stored name escapes the base directory.
	ErrInvalidName = errors.New("invalid stored name")
)

// Store defines the storage contract for binary files.
type Store interface {
	// Store persists the payload and returns the generated stored name.
	Store(originalName, mimeType string, data []byte) (string, error)
	// Open resolves a stored name to an absolute path of the stored file.
	Open(storedName string) (string, error)
}

// allowedMIME lists every MIME type the import pipeline can produce. Anything
// else is rejected rather than written to disk.
var allowedMIME = map[string]bool{
	"image/png":      true,
	"image/jpeg":     true,
	"image/webp":     true,
	"image/gif":      true,
	"application/pdf": true,
	"text/plain":     true,
	"text/csv":       true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-powerpoint": true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
}

// LocalStore keeps files on the local filesystem under a base directory.
// It implements the Store interface.
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates a LocalStore rooted at baseDir, creating it if needed.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base dir: %w", err)
	}
	return &LocalStore{baseDir: abs}, nil
}

// Store validates the payload and writes it under a fresh UUID-based name,
// keeping the original extension so served files get a sensible suffix.
func (s *LocalStore) Store(originalName, mimeType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if !allowedMIME[mimeType] {
		return "", fmt.Errorf("%w: %s", ErrDisallowedType, mimeType)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if ext == "" {
		return "", fmt.Errorf("%w: missing extension on %q", ErrDisallowedType, originalName)
	}

	storedName := uuid.New().String() + "." + ext
	target := filepath.Join(s.baseDir, storedName)
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return storedName, nil
}

// Open resolves a stored name to an absolute path. Stored names are always
// flat UUID-based names, so anything with path separators is rejected.
func (s *LocalStore) Open(storedName string) (string, error) {
	if storedName == "" || strings.ContainsAny(storedName, "/\\") || strings.Contains(storedName, "..") {
		return "", ErrInvalidName
	}
	target := filepath.Join(s.baseDir, storedName)
	if _, err := os.Stat(target); err != nil {
		return "", fmt.Errorf("failed to stat stored file: %w", err)
	}
	return target, nil
}
