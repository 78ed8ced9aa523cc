package storage

import (
	"context"
	"fmt"
	"log"
	"path"
	"time"

	"gamesense/app/internal/github"
)

// githubStorage keeps clips as binary files in the same repository as the
// document and serves them through raw.githubusercontent.com.
type githubStorage struct {
	client *github.Client
}

// NewGitHubStorage creates a blob store over the contents API.
func NewGitHubStorage(client *github.Client) FileStorage {
	return &githubStorage{client: client}
}

// PutObject commits the clip to the repository and returns its raw URL.
func (s *githubStorage) PutObject(ctx context.Context, objectKey string, data []byte, contentType string) (string, error) {
	msg := fmt.Sprintf("feat: add video %s", path.Base(objectKey))
	if _, err := s.client.PutFile(ctx, objectKey, data, msg, ""); err != nil {
		log.Printf("ERROR: Failed to upload '%s' to GitHub: %v", objectKey, err)
		return "", err
	}
	return s.client.RawURL(objectKey), nil
}

// GeneratePresignedDownloadURL returns the raw URL; repository files do not expire.
func (s *githubStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return s.client.RawURL(objectKey), nil
}

func (s *githubStorage) DeleteObject(ctx context.Context, objectKey string) error {
	msg := fmt.Sprintf("chore: remove video %s", path.Base(objectKey))
	if err := s.client.DeleteFile(ctx, objectKey, msg); err != nil {
		log.Printf("ERROR: Failed to delete '%s' from GitHub: %v", objectKey, err)
		return err
	}
	log.Printf("INFO: Deleted object '%s' from GitHub", objectKey)
	return nil
}
