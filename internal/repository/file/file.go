// Package file stores documents as plain files under a root directory. The
// revision of a document is the hex SHA-256 of its content.
package file

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gamesense/app/internal/repository"
)

type fileDocumentStore struct {
	root string
	mu   sync.Mutex
}

// NewFileDocumentStore creates a document store rooted at dir. The directory is
// created if it does not exist.
func NewFileDocumentStore(dir string) (repository.DocumentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create document root %s: %w", dir, err)
	}
	return &fileDocumentStore{root: dir}, nil
}

// Revision returns the revision token for content.
func Revision(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func (s *fileDocumentStore) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + strings.TrimPrefix(path, "/"))
	if clean == "/" {
		return "", fmt.Errorf("invalid document path %q", path)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func (s *fileDocumentStore) Get(ctx context.Context, path string) ([]byte, string, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(full)
}

func (s *fileDocumentStore) read(full string) ([]byte, string, error) {
	content, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", repository.ErrNotFound
		}
		return nil, "", err
	}
	return content, Revision(content), nil
}

// Put writes content atomically when expectedRevision matches the current
// file. An empty expectedRevision only creates a missing file.
func (s *fileDocumentStore) Put(ctx context.Context, path string, content []byte, expectedRevision, message string) (string, error) {
	full, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, current, err := s.read(full)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if expectedRevision != "" {
			return "", repository.ErrConflict
		}
	case err != nil:
		return "", err
	case current != expectedRevision:
		return "", repository.ErrConflict
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".tmp-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return "", err
	}
	return Revision(content), nil
}
