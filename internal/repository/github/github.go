package github

import (
	"context"
	"errors"

	gh "gamesense/app/internal/github"
	"gamesense/app/internal/repository"
)

// githubDocumentStore keeps documents as files in a GitHub repository; the
// blob sha is the revision token.
type githubDocumentStore struct {
	client *gh.Client
}

// NewGitHubDocumentStore wraps a contents API client as a DocumentStore.
func NewGitHubDocumentStore(client *gh.Client) repository.DocumentStore {
	return &githubDocumentStore{client: client}
}

func (s *githubDocumentStore) Get(ctx context.Context, path string) ([]byte, string, error) {
	content, sha, err := s.client.GetFile(ctx, path)
	if errors.Is(err, gh.ErrNotFound) {
		return nil, "", repository.ErrNotFound
	}
	return content, sha, err
}

func (s *githubDocumentStore) Put(ctx context.Context, path string, content []byte, expectedRevision, message string) (string, error) {
	sha, err := s.client.PutFile(ctx, path, content, message, expectedRevision)
	if errors.Is(err, gh.ErrConflict) {
		return "", repository.ErrConflict
	}
	return sha, err
}
