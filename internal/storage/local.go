package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultPublicBase is the URL prefix the API serves the local blob directory under.
const DefaultPublicBase = "/media"

var ErrInvalidKey = errors.New("storage: object key escapes the storage root")

// LocalStorage writes objects below a directory on disk. It is the primary
// store in local-only mode and the fallback when a remote backend fails.
type LocalStorage struct {
	root       string
	publicBase string
}

// NewLocalStorage creates the root directory if needed.
func NewLocalStorage(root, publicBase string) (*LocalStorage, error) {
	if publicBase == "" {
		publicBase = DefaultPublicBase
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory %s: %w", root, err)
	}
	return &LocalStorage{root: root, publicBase: strings.TrimRight(publicBase, "/")}, nil
}

// Root is the directory objects are written to.
func (s *LocalStorage) Root() string { return s.root }

// Path returns the file path an object key maps to.
func (s *LocalStorage) Path(objectKey string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(objectKey))
	if clean == string(filepath.Separator) {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.root, clean), nil
}

// PutObject writes data under the root and returns its public URL.
func (s *LocalStorage) PutObject(ctx context.Context, objectKey string, data []byte, contentType string) (string, error) {
	p, err := s.Path(objectKey)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", objectKey, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		log.Printf("ERROR: Failed to write object '%s' to %s: %v", objectKey, s.root, err)
		return "", err
	}
	return s.URL(objectKey), nil
}

// URL is the path the object is served under.
func (s *LocalStorage) URL(objectKey string) string {
	parts := strings.Split(strings.TrimLeft(filepath.ToSlash(objectKey), "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.publicBase + "/" + strings.Join(parts, "/")
}

// GeneratePresignedDownloadURL returns the public URL of an existing file.
// Local files need no signature, so expires is ignored.
func (s *LocalStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	p, err := s.Path(objectKey)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err != nil {
		return "", err
	}
	return s.URL(objectKey), nil
}

// DeleteObject removes the file. A missing file is not an error.
func (s *LocalStorage) DeleteObject(ctx context.Context, objectKey string) error {
	p, err := s.Path(objectKey)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
